package store

import (
	"context"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store. This is intended
// for testing. Production should use the sqlite store.
type InMemoryStore struct {
	mu    sync.RWMutex
	slots map[Scope]map[string][]byte
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		slots: map[Scope]map[string][]byte{
			ScopePersistent: {},
			ScopeSession:    {},
		},
	}
}

// Get returns the value for key, or ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, scope Scope, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.slots[scope][key]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy
	cpy := make([]byte, len(v))
	copy(cpy, v)
	return cpy, nil
}

// Put overwrites the value for key.
func (s *InMemoryStore) Put(_ context.Context, scope Scope, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpy := make([]byte, len(value))
	copy(cpy, value)
	s.slots[scope][key] = cpy
	return nil
}

// Delete removes key.
func (s *InMemoryStore) Delete(_ context.Context, scope Scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots[scope], key)
	return nil
}

// ClearSession removes every session-scoped value.
func (s *InMemoryStore) ClearSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[ScopeSession] = map[string][]byte{}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
