package ml

import (
	"math"
	"math/rand"

	"github.com/drakos74/free-text/internal/model"
	xml "github.com/drakos74/go-ex-machina/xmachina/ml"
	"github.com/drakos74/go-ex-machina/xmachina/net"
	"github.com/drakos74/go-ex-machina/xmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer.
// Weights are kept as an in x out matrix and the bias as a 1 x out row.
type Dense struct {
	meta       net.Meta
	in, out    int
	activation xml.Activation

	w, b   *mat.Dense
	dw, db *mat.Dense

	// forward state, kept for the backward pass
	x      *mat.Dense
	rows   []model.Row
	output *mat.Dense
}

func newDense(meta net.Meta, in, out int, activation xml.Activation, rnd *rand.Rand) *Dense {
	weights := net.NewWeights(in, out, glorot(rnd, in, out), xmath.VoidVector)
	d := &Dense{
		meta:       meta,
		in:         in,
		out:        out,
		activation: activation,
		w:          mat.NewDense(in, out, nil),
		b:          mat.NewDense(1, out, nil),
		dw:         mat.NewDense(in, out, nil),
		db:         mat.NewDense(1, out, nil),
	}
	d.setWeights(*weights)
	return d
}

// glorot generates uniform weights in [-limit, limit] with limit = sqrt(6/(in+out)).
func glorot(rnd *rand.Rand, in, out int) xmath.VectorGenerator {
	limit := math.Sqrt(6 / float64(in+out))
	return func(s, index int) xmath.Vector {
		v := xmath.Vec(s)
		for i := range v {
			v[i] = (2*rnd.Float64() - 1) * limit
		}
		return v
	}
}

// Params returns the number of trainable parameters.
func (d *Dense) Params() int {
	return d.in*d.out + d.out
}

// forward computes the output of the layer for a dense batch.
func (d *Dense) forward(x *mat.Dense) *mat.Dense {
	r, _ := x.Dims()
	z := mat.NewDense(r, d.out, nil)
	z.Mul(x, d.w)
	d.x = x
	d.rows = nil
	return d.activate(z)
}

// forwardSparse computes the output of the layer for a batch of sparse rows.
func (d *Dense) forwardSparse(rows []model.Row) *mat.Dense {
	z := mat.NewDense(len(rows), d.out, nil)
	for i, row := range rows {
		zi := z.RawRowView(i)
		for k, j := range row.Indices {
			floats.AddScaled(zi, float64(row.Values[k]), d.w.RawRowView(j))
		}
	}
	d.x = nil
	d.rows = rows
	return d.activate(z)
}

func (d *Dense) activate(z *mat.Dense) *mat.Dense {
	r, _ := z.Dims()
	bias := d.b.RawRowView(0)
	for i := 0; i < r; i++ {
		floats.Add(z.RawRowView(i), bias)
	}
	if d.activation != nil {
		z.Apply(func(i, j int, v float64) float64 {
			return d.activation.F(v)
		}, z)
	}
	d.output = z
	return z
}

// backward accumulates the gradients of the last forward pass
// and returns the gradient with respect to the input.
// Sparse inputs get no input gradient.
func (d *Dense) backward(grad *mat.Dense) *mat.Dense {
	dz := grad
	if d.activation != nil {
		var g mat.Dense
		g.Apply(func(i, j int, v float64) float64 {
			return v * d.activation.D(d.output.At(i, j))
		}, grad)
		dz = &g
	}

	r, _ := dz.Dims()
	db := d.db.RawRowView(0)
	for j := range db {
		db[j] = 0
	}
	for i := 0; i < r; i++ {
		floats.Add(db, dz.RawRowView(i))
	}

	if d.rows != nil {
		d.dw.Zero()
		for i, row := range d.rows {
			dzi := dz.RawRowView(i)
			for k, j := range row.Indices {
				floats.AddScaled(d.dw.RawRowView(j), float64(row.Values[k]), dzi)
			}
		}
		return nil
	}

	d.dw.Mul(d.x.T(), dz)
	dx := mat.NewDense(r, d.in, nil)
	dx.Mul(dz, d.w.T())
	return dx
}

// weights exports the parameters with one row of W per output unit.
func (d *Dense) weights() net.Weights {
	w := xmath.Mat(d.out)
	for j := 0; j < d.out; j++ {
		w[j] = xmath.Vec(d.in)
		for i := 0; i < d.in; i++ {
			w[j][i] = d.w.At(i, j)
		}
	}
	return net.Weights{
		W: w,
		B: xmath.Vec(d.out).With(d.b.RawRowView(0)...),
	}
}

func (d *Dense) setWeights(weights net.Weights) {
	for j, row := range weights.W {
		for i, v := range row {
			d.w.Set(i, j, v)
		}
	}
	d.b.SetRow(0, weights.B)
}

func (d *Dense) activationName() string {
	if d.activation == nil {
		return "linear"
	}
	return "relu"
}
