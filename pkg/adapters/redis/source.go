package redis

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// DefaultConfigHash is the hash read by Source when none is given.
const DefaultConfigHash = "sparkbridge:config"

// Source implements ports.ConfigSource over the fields of a Redis hash.
// Empty fields count as absent.
type Source struct {
	client *backend.Client
	hash   string
}

// NewSource creates a Source reading fields of hash (DefaultConfigHash when empty).
func NewSource(client *backend.Client, hash string) *Source {
	if hash == "" {
		hash = DefaultConfigHash
	}
	return &Source{client: client, hash: hash}
}

// Lookup implements ports.ConfigSource.
func (s *Source) Lookup(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.hash, key).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s from redis: %w", s.hash, err)
	}
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}
