package model

const (
	// Negative is the label assigned to samples of the negative category.
	Negative = 0
	// Positive is the label assigned to samples of the positive category.
	Positive = 1
)

// Sample is a single labeled text.
type Sample struct {
	Text  string `json:"text"`
	Label int    `json:"label"`
}

// Split is an ordered sequence of samples.
type Split []Sample

// Texts returns the texts of the split in order.
func (s Split) Texts() []string {
	texts := make([]string, len(s))
	for i, sample := range s {
		texts[i] = sample.Text
	}
	return texts
}

// Labels returns the labels of the split in order.
func (s Split) Labels() []int {
	labels := make([]int, len(s))
	for i, sample := range s {
		labels[i] = sample.Label
	}
	return labels
}
