package ml

import (
	"fmt"
	"math/rand"

	"github.com/drakos74/free-text/internal/model"
	"github.com/drakos74/go-ex-machina/xmachina/net"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Network is a feed forward classifier over sparse feature rows.
// It is made of a dropout on the input, followed by (layers-1) hidden blocks of
// dense relu units with dropout, and the dense output layer.
// A network is not safe for concurrent use.
type Network struct {
	cfg      Config
	dense    []*Dense
	dropouts []*Dropout
	head     Head
}

// Build creates a new network for the given config.
func Build(cfg Config) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rnd := rand.New(rand.NewSource(cfg.Seed))

	n := &Network{
		cfg:      cfg,
		dense:    make([]*Dense, 0, cfg.Layers),
		dropouts: make([]*Dropout, 0, cfg.Layers),
		head:     newHead(cfg.Classes),
	}
	in := cfg.InputDim
	for l := 0; l < cfg.Layers-1; l++ {
		n.dropouts = append(n.dropouts, newDropout(cfg.DropoutRate, in, rnd))
		n.dense = append(n.dense, newDense(net.Meta{Layer: l, Index: l, ID: fmt.Sprintf("dense_%d", l)}, in, cfg.Units, ReLU, rnd))
		in = cfg.Units
	}
	n.dropouts = append(n.dropouts, newDropout(cfg.DropoutRate, in, rnd))
	n.dense = append(n.dense, newDense(net.Meta{Layer: cfg.Layers - 1, Index: cfg.Layers - 1, ID: "output"}, in, cfg.outputs(), nil, rnd))

	log.Debug().
		Int("input", cfg.InputDim).
		Int("layers", cfg.Layers).
		Int("units", cfg.Units).
		Float64("dropout", cfg.DropoutRate).
		Str("output", n.head.Name()).
		Int("params", n.Params()).
		Msg("build network")
	return n, nil
}

// Config returns the config of the network.
func (n *Network) Config() Config {
	return n.cfg
}

// Head returns the output activation of the network.
func (n *Network) Head() Head {
	return n.head
}

// Params returns the total number of trainable parameters.
func (n *Network) Params() int {
	var p int
	for _, d := range n.dense {
		p += d.Params()
	}
	return p
}

// Forward runs the batch through the network and returns the class probabilities,
// one row per sample. Dropout is only active while training.
func (n *Network) Forward(x model.Matrix, training bool) (*mat.Dense, error) {
	r, c := x.Dims()
	if c != n.cfg.InputDim {
		return nil, fmt.Errorf("input has %d features but network expects %d: %w", c, n.cfg.InputDim, model.ErrDimensionMismatch)
	}
	if r == 0 {
		return nil, fmt.Errorf("empty batch: %w", model.ErrDimensionMismatch)
	}
	rows := n.dropouts[0].forwardSparse(x.Rows, training)
	y := n.dense[0].forwardSparse(rows)
	for l := 1; l < len(n.dense); l++ {
		y = n.dropouts[l].forward(y, training)
		y = n.dense[l].forward(y)
	}
	return n.head.Apply(y), nil
}

// Backward propagates the gradient of the loss with respect to the logits
// of the output layer, as produced by the last Forward call.
func (n *Network) Backward(grad *mat.Dense) {
	for l := len(n.dense) - 1; l >= 0; l-- {
		grad = n.dense[l].backward(grad)
		if l > 0 {
			grad = n.dropouts[l].backward(grad)
		}
	}
}

// Parameters returns the trainable parameters with their gradients.
func (n *Network) Parameters() []Parameter {
	params := make([]Parameter, 0, 2*len(n.dense))
	for _, d := range n.dense {
		params = append(params,
			Parameter{Value: d.w, Grad: d.dw},
			Parameter{Value: d.b, Grad: d.db},
		)
	}
	return params
}

// Predict returns the class probabilities of every sample, with dropout disabled.
func (n *Network) Predict(x model.Matrix) ([]xmath.Vector, error) {
	if len(x.Rows) == 0 {
		return []xmath.Vector{}, nil
	}
	p, err := n.Forward(x, false)
	if err != nil {
		return nil, err
	}
	r, _ := p.Dims()
	predictions := make([]xmath.Vector, r)
	for i := 0; i < r; i++ {
		predictions[i] = xmath.Vector(mat.Row(nil, i, p))
	}
	return predictions, nil
}

// Classify returns the predicted class of every row of probabilities.
// A single column is thresholded at 0.5, otherwise the arg-max is taken.
func Classify(p *mat.Dense) []int {
	r, c := p.Dims()
	classes := make([]int, r)
	for i := 0; i < r; i++ {
		row := p.RawRowView(i)
		if c == 1 {
			if row[0] > 0.5 {
				classes[i] = 1
			}
			continue
		}
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		classes[i] = best
	}
	return classes
}
