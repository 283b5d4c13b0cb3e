package ml

import (
	"math"
	"math/rand"
	"testing"

	"github.com/drakos74/free-text/internal/model"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestAdam_Step(t *testing.T) {
	type test struct {
		grad  float64
		value float64
	}

	tests := map[string]test{
		"positive-gradient": {
			grad:  0.5,
			value: 1 - 0.001,
		},
		"negative-gradient": {
			grad:  -2,
			value: 1 + 0.001,
		},
		"zero-gradient": {
			grad:  0,
			value: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			adam := NewAdam(0.001)
			value := mat.NewDense(1, 1, []float64{1})
			grad := mat.NewDense(1, 1, []float64{tt.grad})
			adam.Step([]Parameter{{Value: value, Grad: grad}})
			assert.InDelta(t, tt.value, value.At(0, 0), 1e-6)
			assert.Equal(t, 1, adam.Steps())
		})
	}
}

func TestAdam_Converges(t *testing.T) {
	adam := NewAdam(0.1)
	value := mat.NewDense(1, 2, []float64{3, -4})
	grad := mat.NewDense(1, 2, nil)
	for i := 0; i < 500; i++ {
		// gradient of x^2
		grad.Scale(2, value)
		adam.Step([]Parameter{{Value: value, Grad: grad}})
	}
	assert.InDelta(t, 0, value.At(0, 0), 0.5)
	assert.InDelta(t, 0, value.At(0, 1), 0.5)
}

func TestCrossEntropy(t *testing.T) {
	type test struct {
		p    *mat.Dense
		y    *mat.Dense
		loss float64
	}

	tests := map[string]test{
		"binary-uncertain": {
			p:    mat.NewDense(2, 1, []float64{0.5, 0.5}),
			y:    Targets([]int{0, 1}, 2),
			loss: math.Ln2,
		},
		"binary-clipped": {
			p:    mat.NewDense(1, 1, []float64{0}),
			y:    Targets([]int{1}, 2),
			loss: -math.Log(Clip),
		},
		"categorical": {
			p:    mat.NewDense(2, 3, []float64{0.25, 0.5, 0.25, 0.1, 0.1, 0.8}),
			y:    Targets([]int{1, 2}, 3),
			loss: -(math.Log(0.5) + math.Log(0.8)) / 2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tt.loss, CrossEntropy(tt.p, tt.y), 1e-9)
		})
	}
}

func TestDropout(t *testing.T) {
	rows := make([]model.Row, 100)
	for i := range rows {
		rows[i] = model.Row{Indices: []int{0, 1, 2, 3}, Values: []float32{1, 1, 1, 1}}
	}
	d := newDropout(0.5, 4, rand.New(rand.NewSource(1)))

	assert.Equal(t, rows, d.forwardSparse(rows, false))

	dropped := d.forwardSparse(rows, true)
	var kept int
	for i, row := range dropped {
		assert.Equal(t, float32(1), rows[i].Values[0])
		for _, v := range row.Values {
			assert.Equal(t, float32(2), v)
		}
		kept += row.Len()
	}
	assert.Greater(t, kept, 100)
	assert.Less(t, kept, 300)

	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	assert.Equal(t, x, d.forward(x, false))
	assert.Equal(t, x, d.backward(x))
}
