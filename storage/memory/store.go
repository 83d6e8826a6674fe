// Package memory implements an in-memory storage.Store for tests.
package memory

import (
	"context"
	"sync"

	"github.com/tfkr-ae/raseed/storage"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store backed by process memory.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store { return &Store{values: make(map[string][]byte)} }

// Driver returns the storage driver identifier.
func (s *Store) Driver() storage.Driver { return storage.DriverMemory }

// Get returns a copy of the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put replaces the value stored under key.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	return nil
}

// Delete removes key; deleting a missing key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
