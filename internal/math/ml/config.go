package ml

import (
	"fmt"

	"github.com/drakos74/free-text/internal/model"
)

// Config defines the shape of a network.
type Config struct {
	// InputDim is the number of input features.
	InputDim int `json:"input_dim"`
	// Classes is the number of output classes.
	Classes int `json:"classes"`
	// Layers is the number of dense layers, including the output one.
	Layers int `json:"layers"`
	// Units is the width of the hidden layers.
	Units int `json:"units"`
	// DropoutRate is the fraction of inputs dropped before every dense layer while training.
	DropoutRate float64 `json:"dropout_rate"`
	// Seed drives the weight initialisation and the dropout masks.
	Seed int64 `json:"seed"`
}

// Validate checks that the config can produce a network.
func (c Config) Validate() error {
	if c.Layers < 1 {
		return fmt.Errorf("layers must be at least 1 but was %d: %w", c.Layers, model.ErrInvalidConfig)
	}
	if c.Units < 1 {
		return fmt.Errorf("units must be at least 1 but was %d: %w", c.Units, model.ErrInvalidConfig)
	}
	if c.DropoutRate < 0 || c.DropoutRate >= 1 {
		return fmt.Errorf("dropout rate must be in [0,1) but was %f: %w", c.DropoutRate, model.ErrInvalidConfig)
	}
	if c.InputDim < 1 {
		return fmt.Errorf("input dimension must be at least 1 but was %d: %w", c.InputDim, model.ErrInvalidConfig)
	}
	if c.Classes < 2 {
		return fmt.Errorf("at least 2 classes are needed but got %d: %w", c.Classes, model.ErrInvalidConfig)
	}
	return nil
}

// outputs returns the number of units of the last layer.
func (c Config) outputs() int {
	if c.Classes == 2 {
		return 1
	}
	return c.Classes
}
