package train

import (
	"math"
	"time"

	textmath "github.com/drakos74/free-text/internal/math"
	"github.com/drakos74/free-text/internal/math/ml"
	"github.com/drakos74/free-text/internal/vector"
)

// Epoch is the outcome of a single pass over the training split.
type Epoch struct {
	Index       int           `json:"index"`
	Loss        float64       `json:"loss"`
	Accuracy    float64       `json:"accuracy"`
	ValLoss     float64       `json:"val_loss"`
	ValAccuracy float64       `json:"val_accuracy"`
	Duration    time.Duration `json:"duration"`
}

// History holds the epochs of a run in order.
type History []Epoch

// Last returns the last completed epoch.
func (h History) Last() (Epoch, bool) {
	if len(h) == 0 {
		return Epoch{}, false
	}
	return h[len(h)-1], true
}

// Best returns the epoch with the lowest validation loss.
func (h History) Best() (Epoch, bool) {
	if len(h) == 0 {
		return Epoch{}, false
	}
	best := h[0]
	for _, e := range h[1:] {
		if e.ValLoss < best.ValLoss {
			best = e
		}
	}
	return best, true
}

// Trend returns the slope of the validation loss over the last epochs of the window.
func (h History) Trend(window int) (float64, error) {
	if window > len(h) {
		window = len(h)
	}
	losses := make([]float64, window)
	for i, e := range h[len(h)-window:] {
		losses[i] = e.ValLoss
	}
	return textmath.Slope(losses)
}

// Result is the outcome of a training run.
// Accuracy and Loss are the validation metrics of the last completed epoch.
type Result struct {
	RunID    string  `json:"run_id"`
	Accuracy float64 `json:"accuracy"`
	Loss     float64 `json:"loss"`
	Classes  int     `json:"classes"`
	Features int     `json:"features"`
	Stopped  bool    `json:"stopped"`
	// Trend is the slope of the validation loss over the last epochs.
	Trend   float64 `json:"trend"`
	History History `json:"history"`
	// Summary is the per class precision, recall and f1 on the validation split.
	Summary string `json:"summary"`
}

// Artifact is the saved state of a trained model.
type Artifact struct {
	RunID    string         `json:"run_id"`
	Config   Config         `json:"config"`
	Network  ml.Config      `json:"network"`
	Layers   []ml.Snapshot  `json:"layers"`
	Features []vector.Score `json:"features"`
	Accuracy float64        `json:"accuracy"`
	Loss     float64        `json:"loss"`
}

// Restore builds the network of the artifact with its trained weights.
func (a Artifact) Restore() (*ml.Network, error) {
	net, err := ml.Build(a.Network)
	if err != nil {
		return nil, err
	}
	if err := net.Restore(a.Layers); err != nil {
		return nil, err
	}
	return net, nil
}

// finite replaces the undefined scores so that they can be encoded as json.
// Undefined f-scores become 0 with a p-value of 1, infinite ones the largest float.
func finite(scores []vector.Score) []vector.Score {
	out := make([]vector.Score, len(scores))
	for i, s := range scores {
		switch {
		case math.IsNaN(s.F):
			s.F = 0
			s.P = 1
		case math.IsInf(s.F, 1):
			s.F = math.MaxFloat64
			s.P = 0
		}
		if math.IsNaN(s.P) {
			s.P = 1
		}
		out[i] = s
	}
	return out
}
