package json

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"reflect"

	"github.com/drakos74/free-text/internal/storage"
)

const (
	filename = "%d.events.log"
)

// Logger appends json lines to a file per key.
type Logger struct {
	root string
	path string
}

func NewLogger(root, folder string) *Logger {
	if root == "" {
		root = storage.DefaultDir
	}
	return &Logger{root: root, path: folder}
}

func (l *Logger) filePath(k storage.K) string {
	return path.Join(l.root, storage.RegistryDir, l.path, k.Name, k.Label)
}

func (l *Logger) fileName(k storage.Key) string {
	return path.Join(l.filePath(storage.K{
		Name:  k.Name,
		Label: k.Label,
	}), fmt.Sprintf(filename, k.Hash))
}

// Store appends the value as a single line to the log of the key.
func (l *Logger) Store(k storage.Key, value interface{}) error {
	if err := mkdir(l.filePath(storage.K{Name: k.Name, Label: k.Label})); err != nil {
		return err
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode value '%+v': %w", value, err)
	}
	f, err := os.OpenFile(l.fileName(k), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer f.Close()

	if _, err = f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("could not write log file for '%+v': %w", k, err)
	}
	return nil
}

// Load decodes every line of the log of the key and appends it to the given slice reference.
func (l *Logger) Load(k storage.Key, values interface{}) error {
	vv := reflect.ValueOf(values)
	if vv.Kind() != reflect.Ptr || vv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("only accepting slice references as placeholder for the results: %T", values)
	}
	slice := vv.Elem()
	t := slice.Type().Elem()

	fileName := l.fileName(k)
	f, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("could not read file '%s': %v: %w", fileName, err, storage.NotFoundErr)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		instance := reflect.New(t)
		if err := json.Unmarshal(line, instance.Interface()); err != nil {
			return fmt.Errorf("could not decode event value '%s': %v: %w", line, err, storage.CouldNotLoadErr)
		}
		slice = reflect.Append(slice, instance.Elem())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not scan '%s': %v: %w", fileName, err, storage.CouldNotLoadErr)
	}
	vv.Elem().Set(slice)
	return nil
}

// Registry is an event registry backed by a json lines file.
type Registry struct {
	hash   int64
	logger *Logger
}

func NewEventRegistry(root, path string) *Registry {
	return &Registry{
		logger: NewLogger(root, path),
	}
}

// EventRegistry creates a new registry generator
func EventRegistry(root, parent string) storage.EventRegistry {
	return func(p string) (storage.Registry, error) {
		if p == "" {
			return NewEventRegistry(root, parent), nil
		}
		return NewEventRegistry(root, path.Join(parent, p)), nil
	}
}

func (e *Registry) WithHash(h int64) *Registry {
	e.hash = h
	return e
}

func (e *Registry) Add(key storage.K, value interface{}) error {
	return e.logger.Store(storage.Key{
		Hash:  e.hash,
		Name:  key.Name,
		Label: key.Label,
	}, value)
}

// GetAll appends all the events of the key to the given slice reference.
func (e *Registry) GetAll(key storage.K, values interface{}) error {
	return e.logger.Load(storage.Key{
		Hash:  e.hash,
		Name:  key.Name,
		Label: key.Label,
	}, values)
}
