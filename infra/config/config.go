package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Path is the directory of the default configs.
const Path = "infra/config"

// File returns the default config file for the given key.
func File(key string) string {
	return filepath.Join(Path, fmt.Sprintf("%s.json", key))
}

// Load decodes the json config file into v.
// Fields missing from the file keep their current value.
func Load(file string, v interface{}) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("could not load config '%s': %w", file, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("could not unmarshal the config '%s': %w", file, err)
	}
	log.Info().Str("file", file).Msg("loaded config")
	return nil
}

// MustLoad loads the default config for the given key
func MustLoad(key string, v interface{}) {
	if err := Load(File(key), v); err != nil {
		panic(err.Error())
	}
}
