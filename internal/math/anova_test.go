package math

import (
	"errors"
	"math"
	"testing"

	"github.com/drakos74/free-text/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(values ...float32) model.Matrix {
	x := model.NewMatrix(len(values), 3)
	for i, v := range values {
		row := model.Row{}
		if v != 0 {
			row.Indices = append(row.Indices, 0)
			row.Values = append(row.Values, v)
		}
		// constant second column is all zeros, third column equals the label
		if i >= 2 {
			row.Indices = append(row.Indices, 2)
			row.Values = append(row.Values, 1)
		}
		x.Rows[i] = row
	}
	return x
}

func TestFClassif(t *testing.T) {
	x := column(1, 2, 4, 5)
	y := []int{0, 0, 1, 1}

	f, p, err := FClassif(x, y, 2)
	require.NoError(t, err)
	require.Equal(t, 3, len(f))
	require.Equal(t, 3, len(p))

	assert.InDelta(t, 18.0, f[0], 1e-9)
	assert.InDelta(t, 0.0513, p[0], 1e-3)

	assert.True(t, math.IsNaN(f[1]))
	assert.True(t, math.IsInf(f[2], 1))
	assert.Equal(t, 0.0, p[2])
}

func TestFClassif_Errors(t *testing.T) {
	x := column(1, 2, 4, 5)

	_, _, err := FClassif(x, []int{0, 1}, 2)
	assert.True(t, errors.Is(err, model.ErrDimensionMismatch))

	_, _, err = FClassif(x, []int{0, 0, 0, 0}, 1)
	assert.True(t, errors.Is(err, model.ErrInvalidClassCount))

	_, _, err = FClassif(x, []int{0, 0, 1, 3}, 2)
	assert.True(t, errors.Is(err, model.ErrMissingClass))
}

func TestFClassif_NoWithinClassFreedom(t *testing.T) {
	type test struct {
		x       model.Matrix
		y       []int
		classes int
	}

	tests := map[string]test{
		"one-sample-per-class": {
			x:       column(1, 2),
			y:       []int{0, 1},
			classes: 2,
		},
		"three-classes": {
			x:       column(0, 3, 7),
			y:       []int{2, 0, 1},
			classes: 3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f, p, err := FClassif(tt.x, tt.y, tt.classes)
			require.NoError(t, err)
			require.Equal(t, 3, len(f))
			for j := range f {
				assert.True(t, math.IsNaN(f[j]))
				assert.True(t, math.IsNaN(p[j]))
			}
			assert.Equal(t, []int{0, 1}, TopK(f, 2))
		})
	}
}

func TestTopK(t *testing.T) {

	type test struct {
		scores   []float64
		k        int
		selected []int
	}

	tests := map[string]test{
		"ties-by-index": {
			scores:   []float64{1, 3, 3, 3, 2},
			k:        2,
			selected: []int{1, 2},
		},
		"ascending-output": {
			scores:   []float64{1, 2, 3, 4, 5},
			k:        3,
			selected: []int{2, 3, 4},
		},
		"nan-last": {
			scores:   []float64{math.NaN(), 0, -1},
			k:        2,
			selected: []int{1, 2},
		},
		"inf-first": {
			scores:   []float64{10, math.Inf(1), 100},
			k:        1,
			selected: []int{1},
		},
		"k-larger-than-scores": {
			scores:   []float64{0.5, 0.1},
			k:        10,
			selected: []int{0, 1},
		},
		"empty": {
			scores:   []float64{},
			k:        5,
			selected: []int{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.selected, TopK(tt.scores, tt.k))
		})
	}
}
