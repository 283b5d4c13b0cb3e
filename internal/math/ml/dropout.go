package ml

import (
	"math/rand"

	"github.com/drakos74/free-text/internal/model"
	"gonum.org/v1/gonum/mat"
)

// Dropout zeroes a random fraction of its input while training
// and scales the rest by 1/(1-rate).
// At inference it is the identity.
type Dropout struct {
	rate float64
	dim  int
	rnd  *rand.Rand
	mask *mat.Dense
}

func newDropout(rate float64, dim int, rnd *rand.Rand) *Dropout {
	return &Dropout{
		rate: rate,
		dim:  dim,
		rnd:  rnd,
	}
}

func (d *Dropout) active(training bool) bool {
	return training && d.rate > 0
}

func (d *Dropout) forward(x *mat.Dense, training bool) *mat.Dense {
	if !d.active(training) {
		d.mask = nil
		return x
	}
	r, c := x.Dims()
	scale := 1 / (1 - d.rate)
	mask := mat.NewDense(r, c, nil)
	mask.Apply(func(i, j int, v float64) float64 {
		if d.rnd.Float64() < d.rate {
			return 0
		}
		return scale
	}, mask)
	var y mat.Dense
	y.MulElem(x, mask)
	d.mask = mask
	return &y
}

// forwardSparse applies the dropout to the non-zero entries of the rows.
// The input rows are left untouched.
func (d *Dropout) forwardSparse(rows []model.Row, training bool) []model.Row {
	if !d.active(training) {
		return rows
	}
	scale := float32(1 / (1 - d.rate))
	out := make([]model.Row, len(rows))
	for i, row := range rows {
		kept := model.Row{
			Indices: make([]int, 0, row.Len()),
			Values:  make([]float32, 0, row.Len()),
		}
		for k, j := range row.Indices {
			if d.rnd.Float64() < d.rate {
				continue
			}
			kept.Indices = append(kept.Indices, j)
			kept.Values = append(kept.Values, row.Values[k]*scale)
		}
		out[i] = kept
	}
	return out
}

func (d *Dropout) backward(grad *mat.Dense) *mat.Dense {
	if d.mask == nil {
		return grad
	}
	var g mat.Dense
	g.MulElem(grad, d.mask)
	return &g
}
