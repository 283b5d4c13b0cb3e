package ml

import (
	"math"

	xml "github.com/drakos74/go-ex-machina/xmachina/ml"
	"github.com/drakos74/go-ex-machina/xmath"
	"gonum.org/v1/gonum/mat"
)

// ReLU is the rectified linear activation.
// The derivative is expressed on the output of the activation.
var ReLU = relu{}

type relu struct {
}

// F applies the activation function.
func (r relu) F(x float64) float64 {
	return xml.ReLU.F(x)
}

// D returns the derivative of the activation function.
func (r relu) D(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}

// Head turns the logits of the output layer into class probabilities.
type Head interface {
	Name() string
	Apply(z *mat.Dense) *mat.Dense
}

// SigmoidHead is the single unit head for binary classification.
type SigmoidHead struct {
}

// Name returns the name of the activation.
func (s SigmoidHead) Name() string {
	return "sigmoid"
}

// Apply applies the sigmoid to every logit.
func (s SigmoidHead) Apply(z *mat.Dense) *mat.Dense {
	var p mat.Dense
	p.Apply(func(i, j int, v float64) float64 {
		return xml.Sigmoid.F(v)
	}, z)
	return &p
}

// SoftMaxHead is the head for more than 2 classes.
type SoftMaxHead struct {
}

// Name returns the name of the activation.
func (s SoftMaxHead) Name() string {
	return "softmax"
}

// Apply applies the softmax to every row of logits.
func (s SoftMaxHead) Apply(z *mat.Dense) *mat.Dense {
	r, c := z.Dims()
	p := mat.NewDense(r, c, nil)
	sm := xml.SoftMax{}
	for i := 0; i < r; i++ {
		row := z.RawRowView(i)
		top := math.Inf(-1)
		for _, v := range row {
			top = math.Max(top, v)
		}
		// shift so that the largest logit is 0
		shifted := xmath.Vec(c)
		for j, v := range row {
			shifted[j] = v - top
		}
		p.SetRow(i, sm.F(shifted))
	}
	return p
}

func newHead(classes int) Head {
	if classes == 2 {
		return SigmoidHead{}
	}
	return SoftMaxHead{}
}
