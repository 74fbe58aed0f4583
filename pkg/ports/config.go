package ports

import "context"

// ConfigSource looks up configuration values by key.
// ok is false when the key is absent; err is reserved for backend failures.
type ConfigSource interface {
	Lookup(ctx context.Context, key string) (value string, ok bool, err error)
}
