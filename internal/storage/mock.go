package storage

import (
	"encoding/json"
	"fmt"
)

// MockStorage keeps the stored values in memory.
type MockStorage struct {
	Elements map[Key]interface{}
}

func NewMockStorage() *MockStorage {
	return &MockStorage{Elements: make(map[Key]interface{})}
}

func (m *MockStorage) Store(k Key, value interface{}) error {
	m.Elements[k] = value
	return nil
}

// Load copies the stored value into the given reference through its json representation.
func (m *MockStorage) Load(k Key, value interface{}) error {
	v, ok := m.Elements[k]
	if !ok {
		return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode '%v': %w", k, CouldNotLoadErr)
	}
	if err := json.Unmarshal(b, value); err != nil {
		return fmt.Errorf("could not decode '%v': %w", k, CouldNotLoadErr)
	}
	return nil
}

// MockRegistry keeps the events in memory.
type MockRegistry struct {
	Events map[K][]interface{}
}

func NewMockRegistry() *MockRegistry {
	return &MockRegistry{
		Events: make(map[K][]interface{}),
	}
}

func (m *MockRegistry) Add(key K, value interface{}) error {
	if _, ok := m.Events[key]; !ok {
		m.Events[key] = make([]interface{}, 0)
	}
	m.Events[key] = append(m.Events[key], value)
	return nil
}

func (m *MockRegistry) GetAll(key K, values interface{}) error {
	b, err := json.Marshal(m.Events[key])
	if err != nil {
		return fmt.Errorf("could not encode events for '%v': %w", key, CouldNotLoadErr)
	}
	if err := json.Unmarshal(b, values); err != nil {
		return fmt.Errorf("could not decode events for '%v': %w", key, CouldNotLoadErr)
	}
	return nil
}
