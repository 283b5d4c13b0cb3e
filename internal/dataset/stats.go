package dataset

import (
	"sort"

	"github.com/drakos74/free-text/internal/model"
	"github.com/drakos74/free-text/internal/text"
	"github.com/montanaflynn/stats"
)

// Stats describes a split.
type Stats struct {
	Samples         int         `json:"samples"`
	Classes         int         `json:"classes"`
	PerClass        map[int]int `json:"per_class"`
	MedianWords     float64     `json:"median_words"`
	SamplesPerWords float64     `json:"samples_per_words"`
}

// Describe computes the statistics of the given split.
// Words are counted with the given tokenizer.
func Describe(split model.Split, tokenizer *text.Tokenizer) Stats {
	perClass := make(map[int]int)
	words := make([]float64, len(split))
	classes := 0
	for i, s := range split {
		perClass[s.Label]++
		if s.Label+1 > classes {
			classes = s.Label + 1
		}
		words[i] = float64(len(tokenizer.Words(s.Text)))
	}
	st := Stats{
		Samples:  len(split),
		Classes:  classes,
		PerClass: perClass,
	}
	if median, err := stats.Median(words); err == nil {
		st.MedianWords = median
	}
	if st.MedianWords > 0 {
		st.SamplesPerWords = float64(st.Samples) / st.MedianWords
	}
	return st
}

// NGramCount is the number of occurrences of an n-gram in a split.
type NGramCount struct {
	NGram string `json:"ngram"`
	Count int    `json:"count"`
}

// TopNGrams returns the n most frequent features of the split, most frequent first.
// Equal counts are ordered lexicographically.
func TopNGrams(split model.Split, tokenizer *text.Tokenizer, n int) []NGramCount {
	counts := make(map[string]int)
	for _, s := range split {
		for _, f := range tokenizer.Features(s.Text) {
			counts[f]++
		}
	}
	ngrams := make([]NGramCount, 0, len(counts))
	for f, c := range counts {
		ngrams = append(ngrams, NGramCount{NGram: f, Count: c})
	}
	sort.Slice(ngrams, func(i, j int) bool {
		if ngrams[i].Count != ngrams[j].Count {
			return ngrams[i].Count > ngrams[j].Count
		}
		return ngrams[i].NGram < ngrams[j].NGram
	})
	if n < len(ngrams) {
		ngrams = ngrams[:n]
	}
	return ngrams
}

func sorted(ii []int) []int {
	sort.Ints(ii)
	return ii
}
