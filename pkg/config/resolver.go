package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/sparkbridge/internal/logging"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/ports"
)

// Resolver resolves identity, secret and endpoint from a ConfigSource.
type Resolver struct {
	source   ports.ConfigSource
	notifier ports.ErrorNotifier
	logger   *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithNotifier reports missing configuration to the user before failing.
func WithNotifier(n ports.ErrorNotifier) ResolverOption {
	return func(r *Resolver) {
		r.notifier = n
	}
}

// WithLogger configures a logger for the Resolver.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver reading from source.
func NewResolver(source ports.ConfigSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source: source,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up all three keys. It never returns a partial Configuration:
// if any key is absent the result is a *domain.MissingConfigurationError naming
// every absent key.
func (r *Resolver) Resolve(ctx context.Context, keys domain.ConfigKeys) (domain.Configuration, error) {
	values := make(map[string]string, 3)
	var missing []string

	for _, key := range keys.All() {
		if key == "" {
			missing = append(missing, "<unnamed>")
			continue
		}
		value, ok, err := r.source.Lookup(ctx, key)
		if err != nil {
			return domain.Configuration{}, fmt.Errorf("failed to look up %q: %w", key, err)
		}
		if !ok {
			missing = append(missing, key)
			continue
		}
		values[key] = value
	}

	if len(missing) > 0 {
		r.logger.Warn("Missing session configuration", "keys", missing)
		if r.notifier != nil {
			r.notifier.Notify(ctx, domain.Stderr(MissingMessage(keys)))
		}
		return domain.Configuration{}, &domain.MissingConfigurationError{Keys: missing}
	}

	return domain.Configuration{
		Identity: values[keys.Identity],
		Secret:   values[keys.Secret],
		Endpoint: values[keys.Endpoint],
	}, nil
}

// MissingMessage is the text shown to the user when configuration is incomplete.
func MissingMessage(keys domain.ConfigKeys) string {
	quoted := make([]string, 0, 3)
	for _, k := range keys.All() {
		quoted = append(quoted, "'"+k+"'")
	}
	return fmt.Sprintf("FATAL ERROR: Please set configuration for %s.", strings.Join(quoted, ", "))
}
