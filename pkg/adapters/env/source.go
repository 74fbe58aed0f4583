// Package env provides a ConfigSource backed by environment variables.
package env

import (
	"context"
	"os"
)

// Source implements ports.ConfigSource over the process environment.
// Keys are looked up as Prefix+key. Empty variables count as absent.
type Source struct {
	Prefix string
	lookup func(string) (string, bool)
}

// NewSource creates a Source reading variables named prefix+key.
func NewSource(prefix string) *Source {
	return &Source{Prefix: prefix, lookup: os.LookupEnv}
}

// Lookup implements ports.ConfigSource.
func (s *Source) Lookup(ctx context.Context, key string) (string, bool, error) {
	value, ok := s.lookup(s.Prefix + key)
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}
