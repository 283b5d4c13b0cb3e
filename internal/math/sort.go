package math

import "sort"

// byScore orders indices by descending score and ascending index.
type byScore struct {
	index []int
	score []float64
}

func (s byScore) Len() int { return len(s.index) }
func (s byScore) Less(i, j int) bool {
	a, b := s.score[s.index[i]], s.score[s.index[j]]
	if a != b {
		return a > b
	}
	return s.index[i] < s.index[j]
}
func (s byScore) Swap(i, j int) { s.index[i], s.index[j] = s.index[j], s.index[i] }

func sortByScore(index []int, score []float64) {
	sort.Sort(byScore{index: index, score: score})
}

func sortInts(ii []int) {
	sort.Ints(ii)
}
