package text

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/drakos74/free-text/internal/model"
	"golang.org/x/text/transform"
)

// Mode defines how documents are split into features.
type Mode string

const (
	// Word extracts word n-grams.
	Word Mode = "word"
	// CharWB extracts character n-grams within word boundaries.
	CharWB Mode = "char_wb"
)

// wordRegexp matches words of at least 2 letters, digits or underscores.
var wordRegexp = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokens represents a slice of strings
type Tokens []string

// Tokenizer turns raw documents into n-gram features.
// It is not safe for concurrent use.
type Tokenizer struct {
	mode       Mode
	min, max   int
	normalizer transform.Transformer
}

// NewTokenizer creates a new tokenizer for the given mode and n-gram range.
func NewTokenizer(mode Mode, min, max int) (*Tokenizer, error) {
	switch mode {
	case Word, CharWB:
	default:
		return nil, fmt.Errorf("unknown token mode '%s': %w", mode, model.ErrInvalidConfig)
	}
	if min < 1 || max < min {
		return nil, fmt.Errorf("invalid n-gram range [%d,%d]: %w", min, max, model.ErrInvalidConfig)
	}
	return &Tokenizer{
		mode:       mode,
		min:        min,
		max:        max,
		normalizer: newNormalizer(),
	}, nil
}

// Normalize applies lenient decoding, accent stripping and lower-casing to the document.
func (t *Tokenizer) Normalize(doc string) string {
	out, _, err := transform.String(t.normalizer, doc)
	if err != nil {
		out = doc
	}
	return strings.ToLower(out)
}

// Words splits the normalized document into word tokens.
func (t *Tokenizer) Words(doc string) Tokens {
	return wordRegexp.FindAllString(t.Normalize(doc), -1)
}

// Features returns all the n-gram features of the document in order of appearance.
func (t *Tokenizer) Features(doc string) Tokens {
	if t.mode == CharWB {
		return CharNGrams(strings.Fields(t.Normalize(doc)), t.min, t.max)
	}
	return NGrams(t.Words(doc), t.min, t.max)
}
