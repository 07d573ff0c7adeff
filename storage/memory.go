// Package storage provides in-memory key-value storage.
//
// Information Hiding:
// - Map storage structure hidden from users
// - Thread-safe access via RWMutex hidden behind interface
// - Suitable for testing and ephemeral sessions

package storage

import (
	"bytes"
	"context"
	"sync"
)

// InMemoryStorage implements KeyValue using an in-memory map.
// Data is lost when process terminates.
type InMemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewInMemoryStorage creates a new in-memory storage.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key.
func (s *InMemoryStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	// Return a copy to avoid external mutations
	return bytes.Clone(value), true, nil
}

// Set stores a copy of value under key.
func (s *InMemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == nil {
		value = []byte{}
	}
	s.values[key] = bytes.Clone(value)
	return nil
}

// Remove deletes key.
func (s *InMemoryStorage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Keys lists all stored keys.
func (s *InMemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	return keys
}

// Close is a no-op.
func (s *InMemoryStorage) Close() error {
	return nil
}

// Verify InMemoryStorage implements Backend
var _ Backend = (*InMemoryStorage)(nil)
