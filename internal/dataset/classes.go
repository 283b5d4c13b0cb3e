package dataset

import (
	"fmt"

	"github.com/drakos74/free-text/internal/model"
)

// NumClasses returns the number of classes of the given training labels.
// Labels must cover every value in [0, max(label)] and at least two classes.
func NumClasses(labels []int) (int, error) {
	if len(labels) == 0 {
		return 0, fmt.Errorf("no labels given: %w", model.ErrInvalidClassCount)
	}
	top := labels[0]
	for _, l := range labels {
		if l < 0 {
			return 0, fmt.Errorf("negative label %d: %w", l, model.ErrMissingClass)
		}
		if l > top {
			top = l
		}
	}
	n := top + 1

	count := make([]int, n)
	for _, l := range labels {
		count[l]++
	}
	missing := make([]int, 0)
	for c, k := range count {
		if k == 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("classes %v have no samples, labels should be in range [0, %d]: %w", missing, n-1, model.ErrMissingClass)
	}
	if n <= 1 {
		return 0, fmt.Errorf("only %d class found, at least 2 are needed: %w", n, model.ErrInvalidClassCount)
	}
	return n, nil
}

// ValidateLabels checks the training labels and makes sure every validation label
// is within the range of the training classes.
func ValidateLabels(train, val []int) (int, error) {
	n, err := NumClasses(train)
	if err != nil {
		return 0, err
	}
	unseen := make(map[int]bool)
	for _, l := range val {
		if l < 0 || l >= n {
			unseen[l] = true
		}
	}
	if len(unseen) > 0 {
		values := make([]int, 0, len(unseen))
		for l := range unseen {
			values = append(values, l)
		}
		return 0, fmt.Errorf("validation labels %v outside of the training range [0, %d]: %w", sorted(values), n-1, model.ErrUnseenValidationLabel)
	}
	return n, nil
}
