package ml

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Clip bounds the probabilities before taking their logarithm.
const Clip = 1e-7

// Targets encodes the labels in the layout of the network output.
// Two classes produce a single column of 0/1, more classes a one-hot row per label.
func Targets(labels []int, classes int) *mat.Dense {
	if classes == 2 {
		y := mat.NewDense(len(labels), 1, nil)
		for i, l := range labels {
			y.Set(i, 0, float64(l))
		}
		return y
	}
	y := mat.NewDense(len(labels), classes, nil)
	for i, l := range labels {
		y.Set(i, l, 1)
	}
	return y
}

// CrossEntropy returns the mean cross entropy of the probabilities against the targets.
// A single column is evaluated as binary cross entropy.
func CrossEntropy(p, y *mat.Dense) float64 {
	r, c := p.Dims()
	var loss float64
	for i := 0; i < r; i++ {
		pi := p.RawRowView(i)
		yi := y.RawRowView(i)
		if c == 1 {
			q := clip(pi[0])
			loss -= yi[0]*math.Log(q) + (1-yi[0])*math.Log(1-q)
			continue
		}
		for j := range pi {
			if yi[j] != 0 {
				loss -= yi[j] * math.Log(clip(pi[j]))
			}
		}
	}
	return loss / float64(r)
}

// Gradient returns the gradient of the mean cross entropy with respect to the logits.
// For both sigmoid and softmax outputs this is (P - Y) / batch.
func Gradient(p, y *mat.Dense) *mat.Dense {
	r, _ := p.Dims()
	var g mat.Dense
	g.Sub(p, y)
	g.Scale(1/float64(r), &g)
	return &g
}

func clip(x float64) float64 {
	return math.Max(Clip, math.Min(1-Clip, x))
}
