package vector

import (
	"fmt"

	textmath "github.com/drakos74/free-text/internal/math"
	"github.com/drakos74/free-text/internal/model"
	"github.com/drakos74/free-text/internal/text"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/rs/zerolog/log"
)

// Score is the f-test result for a selected feature.
type Score struct {
	Feature string  `json:"feature"`
	F       float64 `json:"f"`
	P       float64 `json:"p"`
}

// Vectorizer turns documents into tf-idf weighted n-gram vectors
// restricted to the most class discriminative features of the training corpus.
type Vectorizer struct {
	cfg       Config
	tokenizer *text.Tokenizer
	vocab     vocabulary
	// selected holds the vocabulary columns kept after selection in ascending order
	selected []int
	// column maps a vocabulary column to its position in the projected matrix
	column map[int]int
	f, p   xmath.Vector
	fitted bool
}

// New creates a new vectorizer for the given config.
func New(cfg Config) (*Vectorizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tokenizer, err := text.NewTokenizer(cfg.TokenMode, cfg.NGramRange[0], cfg.NGramRange[1])
	if err != nil {
		return nil, err
	}
	return &Vectorizer{
		cfg:       cfg,
		tokenizer: tokenizer,
	}, nil
}

// Fit learns the vocabulary, idf weights and selected features from the training texts
// and returns the projected training matrix.
func (v *Vectorizer) Fit(texts []string, labels []int) (model.Matrix, error) {
	if len(texts) != len(labels) {
		return model.Matrix{}, fmt.Errorf("texts %d vs labels %d: %w", len(texts), len(labels), model.ErrDimensionMismatch)
	}

	docs := v.tokenize(texts)
	v.vocab = fitVocabulary(docs, v.cfg.MinDocumentFrequency)
	if len(v.vocab.terms) == 0 {
		return model.Matrix{}, fmt.Errorf("no n-gram appears in at least %d documents: %w", v.cfg.MinDocumentFrequency, model.ErrEmptyVocabulary)
	}

	full := model.NewMatrix(len(docs), len(v.vocab.terms))
	for i, doc := range docs {
		indices, values := v.vocab.weigh(doc)
		full.Rows[i] = toRow(indices, values, nil)
	}

	classes := 0
	for _, l := range labels {
		if l+1 > classes {
			classes = l + 1
		}
	}
	f, p, err := textmath.FClassif(full, labels, classes)
	if err != nil {
		return model.Matrix{}, fmt.Errorf("could not score features: %w", err)
	}

	v.selected = textmath.TopK(f, v.cfg.TopK)
	v.column = make(map[int]int, len(v.selected))
	v.f = xmath.Vec(len(v.selected))
	v.p = xmath.Vec(len(v.selected))
	for c, j := range v.selected {
		v.column[j] = c
		v.f[c] = f[j]
		v.p[c] = p[j]
	}
	v.fitted = true

	log.Info().
		Int("documents", len(docs)).
		Int("vocabulary", len(v.vocab.terms)).
		Int("selected", len(v.selected)).
		Int("top-k", v.cfg.TopK).
		Int("min-df", v.cfg.MinDocumentFrequency).
		Msg("fit vectorizer")

	x := model.NewMatrix(len(docs), len(v.selected))
	for i, row := range full.Rows {
		x.Rows[i] = v.project(row)
	}
	return x, nil
}

// Transform vectorizes the given texts with the fitted vocabulary, idf weights and selected features.
func (v *Vectorizer) Transform(texts []string) (model.Matrix, error) {
	if !v.fitted {
		return model.Matrix{}, fmt.Errorf("vectorizer has not been fit")
	}
	x := model.NewMatrix(len(texts), len(v.selected))
	for i, doc := range v.tokenize(texts) {
		indices, values := v.vocab.weigh(doc)
		x.Rows[i] = toRow(indices, values, v.column)
	}
	return x, nil
}

// VocabularySize returns the number of n-grams that survived the document frequency filter.
func (v *Vectorizer) VocabularySize() int {
	return len(v.vocab.terms)
}

// Features returns the selected n-grams in column order.
func (v *Vectorizer) Features() []string {
	features := make([]string, len(v.selected))
	for c, j := range v.selected {
		features[c] = v.vocab.terms[j]
	}
	return features
}

// Scores returns the f-test score of the selected features in column order.
func (v *Vectorizer) Scores() []Score {
	scores := make([]Score, len(v.selected))
	for c, j := range v.selected {
		scores[c] = Score{
			Feature: v.vocab.terms[j],
			F:       v.f[c],
			P:       v.p[c],
		}
	}
	return scores
}

func (v *Vectorizer) tokenize(texts []string) [][]string {
	docs := make([][]string, len(texts))
	for i, t := range texts {
		docs[i] = v.tokenizer.Features(t)
	}
	return docs
}

func (v *Vectorizer) project(row model.Row) model.Row {
	projected := model.Row{
		Indices: make([]int, 0, row.Len()),
		Values:  make([]float32, 0, row.Len()),
	}
	for k, j := range row.Indices {
		if c, ok := v.column[j]; ok {
			projected.Indices = append(projected.Indices, c)
			projected.Values = append(projected.Values, row.Values[k])
		}
	}
	return projected
}

// toRow casts the weights to a fixed width row, optionally re-mapping the columns.
// Columns missing from the mapping are dropped.
func toRow(indices []int, values []float64, column map[int]int) model.Row {
	row := model.Row{
		Indices: make([]int, 0, len(indices)),
		Values:  make([]float32, 0, len(indices)),
	}
	for k, j := range indices {
		if column != nil {
			c, ok := column[j]
			if !ok {
				continue
			}
			j = c
		}
		row.Indices = append(row.Indices, j)
		row.Values = append(row.Values, float32(values[k]))
	}
	return row
}

// NgramVectorize fits a vectorizer on the training texts and returns the training and validation matrices.
// Both matrices share the same, index aligned, columns.
func NgramVectorize(trainTexts []string, trainLabels []int, valTexts []string, cfg Config) (model.Matrix, model.Matrix, *Vectorizer, error) {
	v, err := New(cfg)
	if err != nil {
		return model.Matrix{}, model.Matrix{}, nil, err
	}
	x, err := v.Fit(trainTexts, trainLabels)
	if err != nil {
		return model.Matrix{}, model.Matrix{}, nil, err
	}
	vx, err := v.Transform(valTexts)
	if err != nil {
		return model.Matrix{}, model.Matrix{}, nil, err
	}
	return x, vx, v, nil
}
