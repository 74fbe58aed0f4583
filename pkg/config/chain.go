package config

import (
	"context"

	"github.com/aretw0/sparkbridge/pkg/ports"
)

// Chain is a ConfigSource that asks each source in order; the first hit wins.
type Chain []ports.ConfigSource

// Lookup implements ports.ConfigSource.
func (c Chain) Lookup(ctx context.Context, key string) (string, bool, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		value, ok, err := src.Lookup(ctx, key)
		if err != nil {
			return "", false, err
		}
		if ok {
			return value, true, nil
		}
	}
	return "", false, nil
}
