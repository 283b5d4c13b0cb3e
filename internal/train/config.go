package train

import (
	"fmt"

	"github.com/drakos74/free-text/internal/model"
	"github.com/drakos74/free-text/internal/vector"
)

const (
	DefaultLearningRate = 1e-3
	DefaultEpochs       = 1000
	DefaultBatchSize    = 128
	DefaultLayers       = 2
	DefaultUnits        = 64
	DefaultDropoutRate  = 0.2
	DefaultPatience     = 2
	DefaultSeed         = 123
)

// Config defines the parameters of a training run.
type Config struct {
	LearningRate float64       `json:"learning_rate"`
	Epochs       int           `json:"epochs"`
	BatchSize    int           `json:"batch_size"`
	Layers       int           `json:"layers"`
	Units        int           `json:"units"`
	DropoutRate  float64       `json:"dropout_rate"`
	Patience     int           `json:"patience"`
	Seed         int64         `json:"seed"`
	Vectorizer   vector.Config `json:"vectorizer"`
	// SavePath is the root directory of the saved model, nothing is saved if empty.
	SavePath string `json:"save_path"`
}

// DefaultConfig returns the default training config.
func DefaultConfig() Config {
	return Config{
		LearningRate: DefaultLearningRate,
		Epochs:       DefaultEpochs,
		BatchSize:    DefaultBatchSize,
		Layers:       DefaultLayers,
		Units:        DefaultUnits,
		DropoutRate:  DefaultDropoutRate,
		Patience:     DefaultPatience,
		Seed:         DefaultSeed,
		Vectorizer:   vector.DefaultConfig(),
	}
}

// Validate checks the config values.
func (c Config) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive but was %f: %w", c.LearningRate, model.ErrInvalidConfig)
	}
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be positive but was %d: %w", c.Epochs, model.ErrInvalidConfig)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive but was %d: %w", c.BatchSize, model.ErrInvalidConfig)
	}
	if c.Layers < 1 {
		return fmt.Errorf("layers must be positive but was %d: %w", c.Layers, model.ErrInvalidConfig)
	}
	if c.Units < 1 {
		return fmt.Errorf("units must be positive but was %d: %w", c.Units, model.ErrInvalidConfig)
	}
	if c.DropoutRate < 0 || c.DropoutRate >= 1 {
		return fmt.Errorf("dropout rate must be in [0,1) but was %f: %w", c.DropoutRate, model.ErrInvalidConfig)
	}
	if c.Patience < 1 {
		return fmt.Errorf("patience must be positive but was %d: %w", c.Patience, model.ErrInvalidConfig)
	}
	return c.Vectorizer.Validate()
}
