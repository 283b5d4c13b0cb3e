package train

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/drakos74/free-text/internal/dataset"
	"github.com/drakos74/free-text/internal/math/ml"
	"github.com/drakos74/free-text/internal/metrics"
	"github.com/drakos74/free-text/internal/model"
	"github.com/drakos74/free-text/internal/storage"
	"github.com/drakos74/free-text/internal/storage/file/json"
	"github.com/drakos74/free-text/internal/text"
	"github.com/drakos74/free-text/internal/vector"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/evaluation"
	"gonum.org/v1/gonum/stat"
)

const (
	topNGrams   = 10
	trendWindow = 5
)

// Trainer runs the full pipeline, from the loaded splits to the trained network.
type Trainer struct {
	cfg      Config
	runID    string
	output   io.Writer
	metrics  *metrics.Metrics
	shard    storage.Shard
	registry storage.Registry
}

// New creates a new trainer for the given config.
// The model is saved as json under the save path of the config, or nowhere if there is none.
func New(cfg Config) *Trainer {
	shard := storage.VoidShard()
	if cfg.SavePath != "" {
		shard = json.BlobShard(cfg.SavePath, storage.ModelDir)
	}
	return &Trainer{
		cfg:      cfg,
		runID:    uuid.New().String(),
		output:   io.Discard,
		shard:    shard,
		registry: storage.NewVoidRegistry(),
	}
}

// WithRunID overrides the generated id of the run.
func (t *Trainer) WithRunID(id string) *Trainer {
	t.runID = id
	return t
}

// WithOutput sets the writer for the model summary.
func (t *Trainer) WithOutput(w io.Writer) *Trainer {
	t.output = w
	return t
}

// WithMetrics records the training progress in the given metrics.
func (t *Trainer) WithMetrics(m *metrics.Metrics) *Trainer {
	t.metrics = m
	return t
}

// WithStorage saves the trained model in the given storage,
// regardless of the save path of the config.
func (t *Trainer) WithStorage(s storage.Persistence) *Trainer {
	t.shard = func(shard string) (storage.Persistence, error) {
		return s, nil
	}
	return t
}

// WithRegistry logs every epoch to the given registry.
func (t *Trainer) WithRegistry(r storage.Registry) *Trainer {
	t.registry = r
	return t
}

// RunID returns the id of the run.
func (t *Trainer) RunID() string {
	return t.runID
}

// Run trains a classifier with the default trainer.
func Run(train, val model.Split, cfg Config) (Result, error) {
	return New(cfg).Run(train, val)
}

// Fit trains the network with the default trainer.
func Fit(net *ml.Network, x model.Matrix, y []int, vx model.Matrix, vy []int, cfg Config) (History, error) {
	return New(cfg).Fit(net, x, y, vx, vy)
}

// ModelKey returns the storage key of the saved model of a run.
func ModelKey(runID string, seed int64) storage.Key {
	return storage.Key{
		Hash:  seed,
		Name:  "network",
		Label: runID,
	}
}

// Run validates the classes, vectorizes the texts, builds the network and trains it.
func (t *Trainer) Run(train, val model.Split) (Result, error) {
	if err := t.cfg.Validate(); err != nil {
		return Result{}, err
	}
	classes, err := dataset.ValidateLabels(train.Labels(), val.Labels())
	if err != nil {
		return Result{}, err
	}
	if len(val) == 0 {
		return Result{}, fmt.Errorf("empty validation split: %w", model.ErrDimensionMismatch)
	}
	t.describe(train, val)

	x, vx, vectorizer, err := vector.NgramVectorize(train.Texts(), train.Labels(), val.Texts(), t.cfg.Vectorizer)
	if err != nil {
		return Result{}, err
	}

	netCfg := ml.Config{
		InputDim:    x.Cols,
		Classes:     classes,
		Layers:      t.cfg.Layers,
		Units:       t.cfg.Units,
		DropoutRate: t.cfg.DropoutRate,
		Seed:        t.cfg.Seed,
	}
	net, err := ml.Build(netCfg)
	if err != nil {
		return Result{}, err
	}
	net.Summary(t.output)
	if t.metrics != nil {
		t.metrics.Data(len(train), len(val), x.Cols, net.Params())
	}

	history, err := t.Fit(net, x, train.Labels(), vx, val.Labels())
	if err != nil {
		return Result{}, err
	}

	last, _ := history.Last()
	result := Result{
		RunID:    t.runID,
		Accuracy: last.ValAccuracy,
		Loss:     last.ValLoss,
		Classes:  classes,
		Features: x.Cols,
		Stopped:  len(history) < t.cfg.Epochs,
		History:  history,
	}

	if trend, err := history.Trend(trendWindow); err == nil {
		result.Trend = trend
	}

	_, _, predicted, err := evaluate(net, vx, val.Labels(), t.cfg.BatchSize)
	if err != nil {
		return Result{}, err
	}
	result.Summary = evaluation.GetSummary(confusion(val.Labels(), predicted, classes))

	if err := t.save(net, vectorizer, result); err != nil {
		return Result{}, err
	}

	log.Info().
		Str("run", t.runID).
		Int("epochs", len(history)).
		Bool("stopped", result.Stopped).
		Float64("trend", result.Trend).
		Float64("accuracy", result.Accuracy).
		Float64("loss", result.Loss).
		Msg("training complete")
	return result, nil
}

// Fit trains the network with adam on shuffled mini-batches,
// until the epochs run out or the validation loss stops improving for the configured patience.
func (t *Trainer) Fit(net *ml.Network, x model.Matrix, y []int, vx model.Matrix, vy []int) (history History, err error) {
	if err := t.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x.Rows) != len(y) || len(vx.Rows) != len(vy) {
		return nil, fmt.Errorf("samples and labels do not line up: %w", model.ErrDimensionMismatch)
	}
	if len(x.Rows) == 0 || len(vx.Rows) == 0 {
		return nil, fmt.Errorf("empty training or validation split: %w", model.ErrDimensionMismatch)
	}
	classes := net.Config().Classes
	adam := ml.NewAdam(t.cfg.LearningRate)
	rnd := rand.New(rand.NewSource(t.cfg.Seed))

	n := len(x.Rows)
	order := indices(0, n)
	history = make(History, 0)
	defer func() {
		if t.metrics != nil {
			t.metrics.Stop(len(history) < t.cfg.Epochs)
		}
	}()
	best := math.Inf(1)
	var wait int

	for e := 1; e <= t.cfg.Epochs; e++ {
		start := time.Now()
		rnd.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		losses := make([]float64, 0, n/t.cfg.BatchSize+1)
		weights := make([]float64, 0, n/t.cfg.BatchSize+1)
		var correct int
		for b := 0; b < n; b += t.cfg.BatchSize {
			end := b + t.cfg.BatchSize
			if end > n {
				end = n
			}
			batch := order[b:end]
			labels := make([]int, len(batch))
			for i, s := range batch {
				labels[i] = y[s]
			}

			p, err := net.Forward(x.Select(batch), true)
			if err != nil {
				return history, err
			}
			target := ml.Targets(labels, classes)
			loss := ml.CrossEntropy(p, target)
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				return history, fmt.Errorf("epoch %d: training loss is %v: %w", e, loss, model.ErrDivergence)
			}
			net.Backward(ml.Gradient(p, target))
			adam.Step(net.Parameters())

			losses = append(losses, loss)
			weights = append(weights, float64(len(batch)))
			correct += correctRows(p, labels)
			log.Trace().Int("epoch", e).Int("batch", b/t.cfg.BatchSize).Float64("loss", loss).Msg("batch")
		}

		valLoss, valAccuracy, _, err := evaluate(net, vx, vy, t.cfg.BatchSize)
		if err != nil {
			return history, err
		}
		if math.IsNaN(valLoss) || math.IsInf(valLoss, 0) {
			return history, fmt.Errorf("epoch %d: validation loss is %v: %w", e, valLoss, model.ErrDivergence)
		}

		epoch := Epoch{
			Index:       e,
			Loss:        stat.Mean(losses, weights),
			Accuracy:    float64(correct) / float64(n),
			ValLoss:     valLoss,
			ValAccuracy: valAccuracy,
			Duration:    time.Since(start),
		}
		history = append(history, epoch)
		t.record(epoch)

		if valLoss < best {
			best = valLoss
			wait = 0
		} else {
			wait++
			if wait >= t.cfg.Patience {
				log.Info().Int("epoch", e).Float64("best", best).Int("patience", t.cfg.Patience).Msg("early stopping")
				break
			}
		}
	}
	return history, nil
}

func (t *Trainer) record(epoch Epoch) {
	log.Info().
		Int("epoch", epoch.Index).
		Float64("loss", epoch.Loss).
		Float64("accuracy", epoch.Accuracy).
		Float64("val_loss", epoch.ValLoss).
		Float64("val_accuracy", epoch.ValAccuracy).
		Dur("duration", epoch.Duration).
		Msg("epoch")
	if t.metrics != nil {
		t.metrics.Epoch(epoch.Loss, epoch.Accuracy, epoch.ValLoss, epoch.ValAccuracy, epoch.Duration)
	}
	if err := t.registry.Add(storage.K{Name: storage.HistoryPath, Label: t.runID}, epoch); err != nil {
		log.Warn().Err(err).Str("run", t.runID).Msg("could not log epoch")
	}
}

func (t *Trainer) describe(train, val model.Split) {
	tokenizer, err := text.NewTokenizer(t.cfg.Vectorizer.TokenMode, t.cfg.Vectorizer.NGramRange[0], t.cfg.Vectorizer.NGramRange[1])
	if err != nil {
		log.Warn().Err(err).Msg("could not describe dataset")
		return
	}
	for name, split := range map[string]model.Split{"train": train, "validation": val} {
		st := dataset.Describe(split, tokenizer)
		log.Info().
			Str("split", name).
			Int("samples", st.Samples).
			Int("classes", st.Classes).
			Interface("per_class", st.PerClass).
			Float64("median_words", st.MedianWords).
			Float64("samples_per_words", st.SamplesPerWords).
			Msg("dataset")
	}
	for _, ng := range dataset.TopNGrams(train, tokenizer, topNGrams) {
		log.Debug().Str("ngram", ng.NGram).Int("count", ng.Count).Msg("frequent")
	}
}

func (t *Trainer) save(net *ml.Network, vectorizer *vector.Vectorizer, result Result) error {
	store, err := t.shard(t.runID)
	if err != nil {
		return fmt.Errorf("could not open storage for run '%s': %w", t.runID, err)
	}
	artifact := Artifact{
		RunID:    t.runID,
		Config:   t.cfg,
		Network:  net.Config(),
		Layers:   net.Snapshot(),
		Features: finite(vectorizer.Scores()),
		Accuracy: result.Accuracy,
		Loss:     result.Loss,
	}
	k := ModelKey(t.runID, t.cfg.Seed)
	if err := store.Store(k, artifact); err != nil {
		return fmt.Errorf("could not save model '%s': %w", k.Path(), err)
	}
	log.Info().Str("run", t.runID).Str("key", k.Path()).Str("path", t.cfg.SavePath).Msg("saved model")
	return nil
}
