package ml

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultBeta1 is the decay of the first moment estimate.
	DefaultBeta1 = 0.9
	// DefaultBeta2 is the decay of the second moment estimate.
	DefaultBeta2 = 0.999
	// DefaultEpsilon guards the update against division by zero.
	DefaultEpsilon = 1e-7
)

// Parameter is a trainable matrix together with its gradient.
type Parameter struct {
	Value *mat.Dense
	Grad  *mat.Dense
}

type moments struct {
	m, v []float64
}

// Adam is the adaptive moment estimation optimizer.
type Adam struct {
	rate    float64
	beta1   float64
	beta2   float64
	epsilon float64
	t       int
	moments map[*mat.Dense]*moments
}

// NewAdam creates a new optimizer with the given learning rate.
func NewAdam(rate float64) *Adam {
	return &Adam{
		rate:    rate,
		beta1:   DefaultBeta1,
		beta2:   DefaultBeta2,
		epsilon: DefaultEpsilon,
		moments: make(map[*mat.Dense]*moments),
	}
}

// Steps returns the number of updates applied so far.
func (a *Adam) Steps() int {
	return a.t
}

// Step applies one update to all the given parameters.
func (a *Adam) Step(params []Parameter) {
	a.t++
	t := float64(a.t)
	rate := a.rate * math.Sqrt(1-math.Pow(a.beta2, t)) / (1 - math.Pow(a.beta1, t))
	for _, p := range params {
		value := p.Value.RawMatrix().Data
		grad := p.Grad.RawMatrix().Data
		mm, ok := a.moments[p.Value]
		if !ok {
			mm = &moments{
				m: make([]float64, len(value)),
				v: make([]float64, len(value)),
			}
			a.moments[p.Value] = mm
		}
		for i, g := range grad {
			mm.m[i] = a.beta1*mm.m[i] + (1-a.beta1)*g
			mm.v[i] = a.beta2*mm.v[i] + (1-a.beta2)*g*g
			value[i] -= rate * mm.m[i] / (math.Sqrt(mm.v[i]) + a.epsilon)
		}
	}
}
