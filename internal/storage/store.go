package storage

import (
	"errors"
	"fmt"
)

const (
	// ModelDir is the table of the trained model artifacts.
	ModelDir = "model"
	// RegistryDir is the root of the event logs.
	RegistryDir = "registry"
	// HistoryPath is the event log of the training epochs.
	HistoryPath = "history"
)

var (
	// DefaultDir is the root of the file storage, when no other location is given.
	DefaultDir = "file-storage"
)

// Shard creates a new storage implementation for the given shard.
type Shard func(shard string) (Persistence, error)

// EventRegistry creates a new registry for the given path.
type EventRegistry func(path string) (Registry, error)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key for a general implementation
type Key struct {
	Hash  int64  `json:"hash"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// K is a simplified key for storage
type K struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func (k Key) Path() string {
	return fmt.Sprintf("%s_%v_%s", k.Name, k.Hash, k.Label)
}

// Registry is an append only log of events.
type Registry interface {
	Add(key K, value interface{}) error
	GetAll(key K, values interface{}) error
}

type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}
