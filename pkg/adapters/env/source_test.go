package env_test

import (
	"context"
	"testing"

	"github.com/aretw0/sparkbridge/pkg/adapters/env"
	"github.com/aretw0/sparkbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Contract(t *testing.T) {
	t.Setenv("SBTEST_SPARK_USERNAME", "alice")
	t.Setenv("SBTEST_SPARK_URL", "http://livy:8998")

	ports.RunConfigSourceContract(t, env.NewSource("SBTEST_"), map[string]string{
		"SPARK_USERNAME": "alice",
		"SPARK_URL":      "http://livy:8998",
	})
}

func TestSource_EmptyIsAbsent(t *testing.T) {
	t.Setenv("SBTEST_EMPTY", "")

	_, ok, err := env.NewSource("SBTEST_").Lookup(context.Background(), "EMPTY")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSource_NoPrefix(t *testing.T) {
	t.Setenv("SBTEST_PLAIN", "v")

	got, ok, err := env.NewSource("").Lookup(context.Background(), "SBTEST_PLAIN")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}
