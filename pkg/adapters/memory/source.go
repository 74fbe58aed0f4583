package memory

import (
	"context"
	"sync"
)

// Source implements ports.ConfigSource over a map.
// Safe for concurrent use; values can be changed between lookups with Set and Unset.
type Source struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSource creates a Source seeded with values (copied).
func NewSource(values map[string]string) *Source {
	s := &Source{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Lookup implements ports.ConfigSource.
func (s *Source) Lookup(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set adds or replaces a value.
func (s *Source) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Unset removes a value.
func (s *Source) Unset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
