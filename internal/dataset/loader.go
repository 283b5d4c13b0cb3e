package dataset

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/drakos74/free-text/internal/model"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	// TrainDir is the directory of the training split under the dataset root.
	TrainDir = "train"
	// ValidationDir is the directory of the validation split under the dataset root.
	ValidationDir = "test"
	// PositiveDir holds the samples labeled as positive.
	PositiveDir = "pos"
	// NegativeDir holds the samples labeled as negative.
	NegativeDir = "neg"

	sampleExt = ".txt"
)

// categories lists the category directories in read order with their label.
var categories = []struct {
	dir   string
	label int
}{
	{dir: PositiveDir, label: model.Positive},
	{dir: NegativeDir, label: model.Negative},
}

// Load reads the training and validation splits from the given root.
// The training split is shuffled with the given seed, the validation split keeps the read order.
func Load(root string, seed int64) (train, val model.Split, err error) {
	train, err = readSplit(filepath.Join(root, TrainDir))
	if err != nil {
		return nil, nil, err
	}
	val, err = readSplit(filepath.Join(root, ValidationDir))
	if err != nil {
		return nil, nil, err
	}
	Shuffle(train, seed)
	log.Info().
		Str("root", root).
		Int64("seed", seed).
		Int("train", len(train)).
		Int("validation", len(val)).
		Msg("loaded dataset")
	return train, val, nil
}

// Shuffle permutes the samples in place.
// Texts and labels move together as one record, so they can never get out of line.
func Shuffle(split model.Split, seed int64) {
	rnd := rand.New(rand.NewSource(seed))
	rnd.Shuffle(len(split), func(i, j int) {
		split[i], split[j] = split[j], split[i]
	})
}

func readSplit(path string) (model.Split, error) {
	split := make(model.Split, 0)
	for _, category := range categories {
		dir := filepath.Join(path, category.dir)
		files, err := listSamples(dir)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			txt, err := readSample(file)
			if err != nil {
				return nil, err
			}
			split = append(split, model.Sample{
				Text:  txt,
				Label: category.label,
			})
		}
	}
	return split, nil
}

// listSamples returns the sample files of the directory in lexicographic order.
func listSamples(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("could not access '%s': %v: %w", dir, err, model.ErrDatasetPath)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory: %w", dir, model.ErrDatasetPath)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read '%s': %v: %w", dir, err, model.ErrDatasetPath)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sampleExt) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// readSample reads the full text of a sample, replacing invalid utf-8 sequences.
func readSample(file string) (string, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("could not read sample '%s': %v: %w", file, err, model.ErrDatasetPath)
	}
	txt, _, err := transform.Bytes(runes.ReplaceIllFormed(), b)
	if err != nil {
		return string(b), nil
	}
	return string(txt), nil
}
