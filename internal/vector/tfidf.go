package vector

import (
	"math"
	"sort"
)

// vocabulary maps every kept n-gram to its column and inverse document frequency.
type vocabulary struct {
	terms []string
	index map[string]int
	idf   []float64
}

// fitVocabulary builds the vocabulary out of the tokenized training documents.
// Terms are sorted lexicographically so that column assignment does not depend on map iteration.
func fitVocabulary(docs [][]string, minDF int) vocabulary {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range doc {
			if !seen[term] {
				df[term]++
				seen[term] = true
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count >= minDF {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	n := float64(len(docs))
	index := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		index[term] = i
		// smoothed idf, as if an extra document contained every term once
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return vocabulary{
		terms: terms,
		index: index,
		idf:   idf,
	}
}

// weigh computes the l2 normalised tf-idf weights of a tokenized document.
// Returned indices are in ascending order.
func (v vocabulary) weigh(doc []string) ([]int, []float64) {
	counts := make(map[int]float64)
	for _, term := range doc {
		if i, ok := v.index[term]; ok {
			counts[i]++
		}
	}
	indices := make([]int, 0, len(counts))
	for i := range counts {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var norm float64
	for k, i := range indices {
		w := counts[i] * v.idf[i]
		values[k] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range values {
			values[k] /= norm
		}
	}
	return indices, values
}
