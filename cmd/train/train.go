package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/drakos74/free-text/infra/config"
	"github.com/drakos74/free-text/internal/dataset"
	"github.com/drakos74/free-text/internal/metrics"
	"github.com/drakos74/free-text/internal/storage/file/json"
	"github.com/drakos74/free-text/internal/train"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const configKey = "train"

type args struct {
	Data         string   `arg:"--data,required" help:"root directory of the dataset, containing the train and test splits"`
	Config       string   `arg:"--config" help:"json config file, defaults to infra/config/train.json if present"`
	LearningRate *float64 `arg:"--learning-rate" help:"learning rate of the optimizer"`
	Epochs       *int     `arg:"--epochs" help:"maximum number of training epochs"`
	BatchSize    *int     `arg:"--batch-size" help:"number of samples per gradient update"`
	Layers       *int     `arg:"--layers" help:"number of dense layers"`
	Units        *int     `arg:"--units" help:"width of the hidden layers"`
	DropoutRate  *float64 `arg:"--dropout-rate" help:"fraction of inputs dropped before every dense layer"`
	TopK         *int     `arg:"--top-k" help:"number of n-gram features to keep"`
	MinDF        *int     `arg:"--min-df" help:"minimum document frequency of an n-gram"`
	Seed         *int64   `arg:"--seed" help:"seed for shuffling, initialisation and dropout"`
	Save         string   `arg:"--save" help:"directory to save the trained model to"`
	Metrics      string   `arg:"--metrics" help:"file to write the prometheus metrics to"`
	LogLevel     string   `arg:"--log-level" help:"log level, one of trace, debug, info, warn, error"`
}

func (args) Description() string {
	return "trains an n-gram sentiment classifier on a directory of labeled reviews"
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func main() {
	a := args{
		LogLevel: zerolog.InfoLevel.String(),
	}
	arg.MustParse(&a)

	if err := run(a); err != nil {
		log.Error().Err(err).Msg("training failed")
		os.Exit(1)
	}
}

func run(a args) error {
	level, err := zerolog.ParseLevel(a.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", a.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	cfg, err := newConfig(a)
	if err != nil {
		return err
	}

	trainSplit, valSplit, err := dataset.Load(a.Data, cfg.Seed)
	if err != nil {
		return err
	}

	trainer := train.New(cfg).WithOutput(os.Stdout)
	m := metrics.New(trainer.RunID())
	trainer.WithMetrics(m)
	if cfg.SavePath != "" {
		trainer.WithRegistry(json.NewEventRegistry(cfg.SavePath, trainer.RunID()))
	}

	result, err := trainer.Run(trainSplit, valSplit)
	if err != nil {
		return err
	}

	if a.Metrics != "" {
		if err := m.WriteTo(a.Metrics); err != nil {
			return err
		}
	}

	fmt.Println(result.Summary)
	fmt.Printf("validation accuracy: %.4f, validation loss: %.4f\n", result.Accuracy, result.Loss)
	log.Info().
		Str("run", result.RunID).
		Float64("accuracy", result.Accuracy).
		Float64("loss", result.Loss).
		Msg("validation")
	return nil
}

// newConfig resolves the config from the defaults, then the json file and finally the flags.
func newConfig(a args) (train.Config, error) {
	cfg := train.DefaultConfig()

	file := a.Config
	if file == "" {
		if _, err := os.Stat(config.File(configKey)); err == nil {
			file = config.File(configKey)
		}
	}
	if file != "" {
		if err := config.Load(file, &cfg); err != nil {
			return train.Config{}, err
		}
	}

	a.apply(&cfg)
	return cfg, cfg.Validate()
}

func (a args) apply(cfg *train.Config) {
	if a.LearningRate != nil {
		cfg.LearningRate = *a.LearningRate
	}
	if a.Epochs != nil {
		cfg.Epochs = *a.Epochs
	}
	if a.BatchSize != nil {
		cfg.BatchSize = *a.BatchSize
	}
	if a.Layers != nil {
		cfg.Layers = *a.Layers
	}
	if a.Units != nil {
		cfg.Units = *a.Units
	}
	if a.DropoutRate != nil {
		cfg.DropoutRate = *a.DropoutRate
	}
	if a.TopK != nil {
		cfg.Vectorizer.TopK = *a.TopK
	}
	if a.MinDF != nil {
		cfg.Vectorizer.MinDocumentFrequency = *a.MinDF
	}
	if a.Seed != nil {
		cfg.Seed = *a.Seed
	}
	if a.Save != "" {
		cfg.SavePath = a.Save
	}
}
