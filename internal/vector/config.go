package vector

import (
	"fmt"

	"github.com/drakos74/free-text/internal/model"
	"github.com/drakos74/free-text/internal/text"
)

const (
	// DefaultTopK is the default number of features kept after selection.
	DefaultTopK = 20000
	// DefaultMinDocumentFrequency is the default minimum number of training documents an n-gram must appear in.
	DefaultMinDocumentFrequency = 2
)

// Config defines the vectorization parameters.
// NGramRange defines the smallest and largest n-gram order
// TopK defines how many of the most discriminative features to keep
// TokenMode defines whether features are word or character n-grams
// MinDocumentFrequency defines the number of training documents below which an n-gram is discarded
type Config struct {
	NGramRange           [2]int    `json:"ngram_range"`
	TopK                 int       `json:"top_k"`
	TokenMode            text.Mode `json:"token_mode"`
	MinDocumentFrequency int       `json:"min_document_frequency"`
}

// DefaultConfig returns the default vectorization config, unigrams and bigrams with the top 20k features.
func DefaultConfig() Config {
	return Config{
		NGramRange:           [2]int{1, 2},
		TopK:                 DefaultTopK,
		TokenMode:            text.Word,
		MinDocumentFrequency: DefaultMinDocumentFrequency,
	}
}

// Validate checks the config values.
func (c Config) Validate() error {
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be positive but was %d: %w", c.TopK, model.ErrInvalidConfig)
	}
	if c.MinDocumentFrequency < 1 {
		return fmt.Errorf("min_document_frequency must be positive but was %d: %w", c.MinDocumentFrequency, model.ErrInvalidConfig)
	}
	_, err := text.NewTokenizer(c.TokenMode, c.NGramRange[0], c.NGramRange[1])
	return err
}
