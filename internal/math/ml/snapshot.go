package ml

import (
	"fmt"

	"github.com/drakos74/free-text/internal/model"
	"github.com/drakos74/go-ex-machina/xmachina/net"
)

// Snapshot is the persisted state of a dense layer.
type Snapshot struct {
	Meta       net.Meta    `json:"meta"`
	Activation string      `json:"activation"`
	Weights    net.Weights `json:"weights"`
}

// Snapshot exports the weights of all dense layers.
func (n *Network) Snapshot() []Snapshot {
	snapshots := make([]Snapshot, len(n.dense))
	for i, d := range n.dense {
		snapshots[i] = Snapshot{
			Meta:       d.meta,
			Activation: d.activationName(),
			Weights:    d.weights(),
		}
	}
	return snapshots
}

// Restore loads the weights of a snapshot into a network of the same shape.
func (n *Network) Restore(snapshots []Snapshot) error {
	if len(snapshots) != len(n.dense) {
		return fmt.Errorf("snapshot has %d layers but network has %d: %w", len(snapshots), len(n.dense), model.ErrDimensionMismatch)
	}
	for i, s := range snapshots {
		d := n.dense[i]
		if len(s.Weights.W) != d.out || len(s.Weights.B) != d.out {
			return fmt.Errorf("layer %s expects %d units: %w", d.meta.ID, d.out, model.ErrDimensionMismatch)
		}
		for _, row := range s.Weights.W {
			if len(row) != d.in {
				return fmt.Errorf("layer %s expects %d inputs: %w", d.meta.ID, d.in, model.ErrDimensionMismatch)
			}
		}
	}
	for i, s := range snapshots {
		n.dense[i].setWeights(s.Weights)
	}
	return nil
}
