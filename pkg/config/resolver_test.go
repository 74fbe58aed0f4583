package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/sparkbridge/pkg/adapters/memory"
	"github.com/aretw0/sparkbridge/pkg/config"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKeys = domain.ConfigKeys{Identity: "USER", Secret: "PASS", Endpoint: "URL"}

func TestResolver_Resolve(t *testing.T) {
	src := memory.NewSource(map[string]string{"USER": "u", "PASS": "p", "URL": "url"})
	notifier := memory.NewNotifier()

	cfg, err := config.NewResolver(src, config.WithNotifier(notifier)).Resolve(context.Background(), testKeys)
	require.NoError(t, err)
	assert.Equal(t, domain.Configuration{Identity: "u", Secret: "p", Endpoint: "url"}, cfg)
	assert.Empty(t, notifier.Payloads())
}

func TestResolver_MissingKeys(t *testing.T) {
	src := memory.NewSource(map[string]string{"PASS": "p"})
	notifier := memory.NewNotifier()

	cfg, err := config.NewResolver(src, config.WithNotifier(notifier)).Resolve(context.Background(), testKeys)

	assert.ErrorIs(t, err, domain.ErrMissingConfiguration)
	var missing *domain.MissingConfigurationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"USER", "URL"}, missing.Keys)
	assert.Equal(t, domain.Configuration{}, cfg, "no partial result")

	payloads := notifier.Payloads()
	require.Len(t, payloads, 1)
	assert.Equal(t, domain.StreamStderr, payloads[0].Name)
	assert.Equal(t, "FATAL ERROR: Please set configuration for 'USER', 'PASS', 'URL'.", payloads[0].Text)
}

func TestResolver_MissingWithoutNotifier(t *testing.T) {
	_, err := config.NewResolver(memory.NewSource(nil)).Resolve(context.Background(), testKeys)
	assert.ErrorIs(t, err, domain.ErrMissingConfiguration)
}

func TestResolver_BackendError(t *testing.T) {
	down := errors.New("connection refused")
	src := sourceFunc(func(ctx context.Context, key string) (string, bool, error) {
		return "", false, down
	})
	notifier := memory.NewNotifier()

	_, err := config.NewResolver(src, config.WithNotifier(notifier)).Resolve(context.Background(), testKeys)
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, domain.ErrMissingConfiguration)
	assert.Empty(t, notifier.Payloads())
}

func TestChain_FirstHitWins(t *testing.T) {
	primary := memory.NewSource(map[string]string{"USER": "primary"})
	fallback := memory.NewSource(map[string]string{"USER": "fallback", "PASS": "p", "URL": "url"})
	chain := config.Chain{nil, primary, fallback}

	cfg, err := config.NewResolver(chain).Resolve(context.Background(), testKeys)
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Identity)
	assert.Equal(t, "p", cfg.Secret)

	ports.RunConfigSourceContract(t, chain, map[string]string{"USER": "primary", "URL": "url"})
}

type sourceFunc func(ctx context.Context, key string) (string, bool, error)

func (f sourceFunc) Lookup(ctx context.Context, key string) (string, bool, error) {
	return f(ctx, key)
}
