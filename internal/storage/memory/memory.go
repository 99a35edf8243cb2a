// Package memory is an in-process key/value store. Values survive for the
// lifetime of the process only.
package memory

import (
	"context"
	"sync"
)

type Store struct {
	mu     sync.Mutex
	values map[string][]byte
}

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// NewWithValues returns a store pre-populated with raw values, used to seed
// fixtures and to simulate corrupt persisted data.
func NewWithValues(values map[string]string) *Store {
	s := New()
	for k, v := range values {
		s.values[k] = []byte(v)
	}
	return s
}

func (s *Store) Read(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Write(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
