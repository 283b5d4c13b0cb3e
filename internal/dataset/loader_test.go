package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/free-text/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSamples(t *testing.T, root string, split, category string, texts map[string]string) {
	dir := filepath.Join(root, split, category)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, txt := range texts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(txt), 0644))
	}
}

func newDataset(t *testing.T) string {
	root := t.TempDir()
	writeSamples(t, root, TrainDir, PositiveDir, map[string]string{
		"0_9.txt": "a great movie",
		"1_8.txt": "loved it",
		"2_7.txt": "wonderful acting",
	})
	writeSamples(t, root, TrainDir, NegativeDir, map[string]string{
		"0_1.txt": "a terrible movie",
		"1_2.txt": "hated it",
		"notes.md": "not a sample",
	})
	writeSamples(t, root, ValidationDir, PositiveDir, map[string]string{
		"b.txt": "good film",
		"a.txt": "great film",
	})
	writeSamples(t, root, ValidationDir, NegativeDir, map[string]string{
		"a.txt": "bad film",
	})
	return root
}

func TestLoad(t *testing.T) {
	root := newDataset(t)

	train, val, err := Load(root, 123)
	require.NoError(t, err)

	assert.Equal(t, 5, len(train))
	assert.Equal(t, 3, len(val))

	// validation keeps the read order, pos first and files sorted
	assert.Equal(t, model.Split{
		{Text: "great film", Label: model.Positive},
		{Text: "good film", Label: model.Positive},
		{Text: "bad film", Label: model.Negative},
	}, val)

	// texts and labels stay paired after the shuffle
	labels := map[string]int{
		"a great movie":    model.Positive,
		"loved it":         model.Positive,
		"wonderful acting": model.Positive,
		"a terrible movie": model.Negative,
		"hated it":         model.Negative,
	}
	for _, s := range train {
		l, ok := labels[s.Text]
		require.True(t, ok, s.Text)
		assert.Equal(t, l, s.Label, s.Text)
	}
}

func TestLoad_Deterministic(t *testing.T) {
	root := newDataset(t)

	train1, val1, err := Load(root, 42)
	require.NoError(t, err)
	train2, val2, err := Load(root, 42)
	require.NoError(t, err)

	assert.Equal(t, train1, train2)
	assert.Equal(t, val1, val2)
}

func TestLoad_Lenient(t *testing.T) {
	root := newDataset(t)
	dir := filepath.Join(root, TrainDir, PositiveDir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "3_9.txt"), []byte{'o', 'k', 0xff, '!'}, 0644))

	train, _, err := Load(root, 1)
	require.NoError(t, err)

	found := false
	for _, s := range train {
		if s.Text == "ok�!" {
			found = true
			assert.Equal(t, model.Positive, s.Label)
		}
	}
	assert.True(t, found)
}

func TestLoad_Errors(t *testing.T) {
	type test struct {
		setup func(t *testing.T) string
	}

	tests := map[string]test{
		"missing-root": {
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
		},
		"missing-validation": {
			setup: func(t *testing.T) string {
				root := t.TempDir()
				writeSamples(t, root, TrainDir, PositiveDir, map[string]string{"a.txt": "good"})
				writeSamples(t, root, TrainDir, NegativeDir, map[string]string{"a.txt": "bad"})
				return root
			},
		},
		"missing-category": {
			setup: func(t *testing.T) string {
				root := t.TempDir()
				writeSamples(t, root, TrainDir, PositiveDir, map[string]string{"a.txt": "good"})
				return root
			},
		},
		"file-for-directory": {
			setup: func(t *testing.T) string {
				root := t.TempDir()
				writeSamples(t, root, TrainDir, PositiveDir, map[string]string{"a.txt": "good"})
				require.NoError(t, os.WriteFile(filepath.Join(root, TrainDir, NegativeDir), []byte("x"), 0644))
				return root
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := Load(tt.setup(t), 1)
			assert.ErrorIs(t, err, model.ErrDatasetPath)
		})
	}
}

func TestShuffle(t *testing.T) {
	split := make(model.Split, 100)
	for i := range split {
		split[i] = model.Sample{Text: string(rune('a' + i%26)), Label: i % 2}
	}
	shuffled := make(model.Split, len(split))
	copy(shuffled, split)

	Shuffle(shuffled, 7)

	assert.NotEqual(t, split, shuffled)
	assert.ElementsMatch(t, split, shuffled)
}
