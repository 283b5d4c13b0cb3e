package train

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drakos74/free-text/internal/dataset"
	"github.com/drakos74/free-text/internal/math/ml"
	"github.com/drakos74/free-text/internal/metrics"
	"github.com/drakos74/free-text/internal/model"
	"github.com/drakos74/free-text/internal/storage"
	"github.com/drakos74/free-text/internal/storage/file/json"
	"github.com/drakos74/free-text/internal/vector"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// patterns creates n samples where every class activates its own feature.
func patterns(n, classes int, flip bool) (model.Matrix, []int) {
	x := model.NewMatrix(n, classes)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		c := i % classes
		x.Rows[i] = model.Row{Indices: []int{c}, Values: []float32{1}}
		if flip {
			c = classes - 1 - c
		}
		y[i] = c
	}
	return x, y
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.LearningRate = 0.05
	cfg.Epochs = 50
	cfg.BatchSize = 16
	cfg.Units = 8
	cfg.DropoutRate = 0
	cfg.Seed = 1
	return cfg
}

func build(t *testing.T, cfg Config, dim, classes int) *ml.Network {
	net, err := ml.Build(ml.Config{
		InputDim:    dim,
		Classes:     classes,
		Layers:      cfg.Layers,
		Units:       cfg.Units,
		DropoutRate: cfg.DropoutRate,
		Seed:        cfg.Seed,
	})
	require.NoError(t, err)
	return net
}

func TestFit_Separable(t *testing.T) {
	type test struct {
		classes int
	}

	tests := map[string]test{
		"binary":      {classes: 2},
		"multi-class": {classes: 3},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			x, y := patterns(200, tt.classes, false)
			vx, vy := patterns(50, tt.classes, false)

			history, err := Fit(build(t, cfg, tt.classes, tt.classes), x, y, vx, vy, cfg)
			require.NoError(t, err)

			last, ok := history.Last()
			require.True(t, ok)
			assert.GreaterOrEqual(t, last.ValAccuracy, 0.95)
			assert.GreaterOrEqual(t, last.Accuracy, 0.95)
			assert.Less(t, last.ValLoss, history[0].ValLoss)
			for i, e := range history {
				assert.Equal(t, i+1, e.Index)
			}
		})
	}
}

func TestFit_EarlyStopping(t *testing.T) {
	cfg := testConfig()
	x, y := patterns(200, 2, false)
	// the validation split contradicts the training one, so its loss only grows
	vx, vy := patterns(50, 2, true)

	m := metrics.New("early")
	history, err := New(cfg).WithMetrics(m).Fit(build(t, cfg, 2, 2), x, y, vx, vy)
	require.NoError(t, err)

	require.Equal(t, 1+cfg.Patience, len(history))
	best, _ := history.Best()
	assert.Equal(t, history[0], best)
	last, _ := history.Last()
	assert.Greater(t, last.ValLoss, best.ValLoss)
}

func TestFit_Divergence(t *testing.T) {
	cfg := testConfig()
	x, y := patterns(20, 2, false)
	x.Rows[3].Values[0] = float32(math.NaN())
	vx, vy := patterns(10, 2, false)

	m := metrics.New("diverged")
	history, err := New(cfg).WithMetrics(m).Fit(build(t, cfg, 2, 2), x, y, vx, vy)
	assert.ErrorIs(t, err, model.ErrDivergence)
	assert.Contains(t, err.Error(), "epoch 1")
	assert.Equal(t, 0, len(history))

	expected := `
# HELP text_train_early_stopped 1 if training was stopped early.
# TYPE text_train_early_stopped gauge
text_train_early_stopped{run="diverged"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "text_train_early_stopped"))
}

func TestFit_Mismatch(t *testing.T) {
	cfg := testConfig()
	x, y := patterns(20, 2, false)
	vx, vy := patterns(10, 2, false)

	_, err := Fit(build(t, cfg, 2, 2), x, y[:10], vx, vy, cfg)
	assert.ErrorIs(t, err, model.ErrDimensionMismatch)

	_, err = Fit(build(t, cfg, 3, 2), x, y, vx, vy, cfg)
	assert.ErrorIs(t, err, model.ErrDimensionMismatch)
}

func TestFit_InvalidConfig(t *testing.T) {
	type test struct {
		cfg func(c Config) Config
	}

	tests := map[string]test{
		"zero-batch": {
			cfg: func(c Config) Config { c.BatchSize = 0; return c },
		},
		"zero-patience": {
			cfg: func(c Config) Config { c.Patience = 0; return c },
		},
		"zero-epochs": {
			cfg: func(c Config) Config { c.Epochs = 0; return c },
		},
	}

	x, y := patterns(20, 2, false)
	vx, vy := patterns(10, 2, false)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := tt.cfg(testConfig())
			history, err := Fit(build(t, testConfig(), 2, 2), x, y, vx, vy, cfg)
			assert.ErrorIs(t, err, model.ErrInvalidConfig)
			assert.Nil(t, history)
		})
	}
}

func TestNew_Storage(t *testing.T) {
	cfg := testConfig()
	store, err := New(cfg).shard("run")
	require.NoError(t, err)
	assert.IsType(t, &storage.VoidStorage{}, store)
	assert.ErrorIs(t, store.Load(ModelKey("run", cfg.Seed), &Artifact{}), storage.NotFoundErr)

	cfg.SavePath = t.TempDir()
	store, err = New(cfg).shard("run")
	require.NoError(t, err)
	assert.IsType(t, &json.BlobStorage{}, store)
}

func writeDataset(t *testing.T, train, val int) string {
	root := t.TempDir()
	for split, n := range map[string]int{dataset.TrainDir: train, dataset.ValidationDir: val} {
		for category, txt := range map[string]string{
			dataset.PositiveDir: "a great and wonderful movie, number %d",
			dataset.NegativeDir: "an awful and boring movie, number %d",
		} {
			dir := filepath.Join(root, split, category)
			require.NoError(t, os.MkdirAll(dir, 0755))
			for i := 0; i < n; i++ {
				file := filepath.Join(dir, fmt.Sprintf("%d_%d.txt", i, 10+i))
				require.NoError(t, os.WriteFile(file, []byte(fmt.Sprintf(txt, 10+i)), 0644))
			}
		}
	}
	return root
}

func TestRun(t *testing.T) {
	train, val, err := dataset.Load(writeDataset(t, 20, 5), 42)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.BatchSize = 8
	cfg.DropoutRate = 0.2

	var out bytes.Buffer
	store := storage.NewMockStorage()
	registry := storage.NewMockRegistry()
	trainer := New(cfg).
		WithOutput(&out).
		WithMetrics(metrics.New("test")).
		WithStorage(store).
		WithRegistry(registry)

	result, err := trainer.Run(train, val)
	require.NoError(t, err)

	assert.Equal(t, trainer.RunID(), result.RunID)
	assert.Equal(t, 2, result.Classes)
	assert.GreaterOrEqual(t, result.Accuracy, 0.9)
	last, _ := result.History.Last()
	assert.Equal(t, last.ValAccuracy, result.Accuracy)
	assert.Equal(t, last.ValLoss, result.Loss)
	assert.NotEmpty(t, result.Summary)
	assert.Contains(t, out.String(), "Total params")

	events := registry.Events[storage.K{Name: storage.HistoryPath, Label: result.RunID}]
	assert.Equal(t, len(result.History), len(events))

	var artifact Artifact
	require.NoError(t, store.Load(ModelKey(result.RunID, cfg.Seed), &artifact))
	assert.Equal(t, result.Features, len(artifact.Features))
	assert.Equal(t, result.Accuracy, artifact.Accuracy)

	net, err := artifact.Restore()
	require.NoError(t, err)
	assert.Equal(t, result.Features, net.Config().InputDim)
}

func TestRun_SavePath(t *testing.T) {
	train, val, err := dataset.Load(writeDataset(t, 10, 2), 42)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Epochs = 2
	cfg.SavePath = t.TempDir()

	result, err := New(cfg).WithRunID("run").Run(train, val)
	require.NoError(t, err)
	assert.Equal(t, "run", result.RunID)

	var artifact Artifact
	err = json.NewJsonBlob(cfg.SavePath, storage.ModelDir, "run", false).Load(ModelKey("run", cfg.Seed), &artifact)
	require.NoError(t, err)
	assert.Equal(t, "run", artifact.RunID)
	assert.Equal(t, cfg.Epochs, artifact.Config.Epochs)
	assert.Equal(t, cfg.Layers, len(artifact.Layers))
}

func TestRun_Errors(t *testing.T) {
	type test struct {
		train model.Split
		val   model.Split
		cfg   func(c Config) Config
		err   error
	}

	same := func(c Config) Config { return c }
	split := model.Split{
		{Text: "good movie", Label: 1},
		{Text: "good film", Label: 1},
		{Text: "bad movie", Label: 0},
		{Text: "bad film", Label: 0},
	}

	tests := map[string]test{
		"missing-class": {
			train: model.Split{{Text: "good movie", Label: 0}, {Text: "bad movie", Label: 2}},
			val:   split,
			cfg:   same,
			err:   model.ErrMissingClass,
		},
		"single-class": {
			train: model.Split{{Text: "good movie", Label: 0}, {Text: "bad movie", Label: 0}},
			val:   split,
			cfg:   same,
			err:   model.ErrInvalidClassCount,
		},
		"unseen-label": {
			train: split,
			val:   model.Split{{Text: "good movie", Label: 2}},
			cfg:   same,
			err:   model.ErrUnseenValidationLabel,
		},
		"empty-validation": {
			train: split,
			val:   model.Split{},
			cfg:   same,
			err:   model.ErrDimensionMismatch,
		},
		"invalid-config": {
			train: split,
			val:   split,
			cfg:   func(c Config) Config { c.BatchSize = 0; return c },
			err:   model.ErrInvalidConfig,
		},
		"one-sample-per-class": {
			train: model.Split{{Text: "good movie", Label: 1}, {Text: "bad movie", Label: 0}},
			val:   split,
			cfg:   func(c Config) Config { c.Vectorizer.MinDocumentFrequency = 1; return c },
		},
		"empty-vocabulary": {
			train: model.Split{{Text: "a b", Label: 0}, {Text: "c d", Label: 1}},
			val:   split,
			cfg:   same,
			err:   model.ErrEmptyVocabulary,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Run(tt.train, tt.val, tt.cfg(testConfig()))
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFinite(t *testing.T) {
	scores := finite([]vector.Score{
		{Feature: "a", F: math.NaN(), P: math.NaN()},
		{Feature: "b", F: math.Inf(1), P: 0},
		{Feature: "c", F: 2, P: 0.1},
	})
	assert.Equal(t, 0.0, scores[0].F)
	assert.Equal(t, 1.0, scores[0].P)
	assert.Equal(t, math.MaxFloat64, scores[1].F)
	assert.Equal(t, 2.0, scores[2].F)
	assert.Equal(t, 0.1, scores[2].P)
}
