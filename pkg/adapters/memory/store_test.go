package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/sparkbridge/pkg/adapters/memory"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemorySource_Contract(t *testing.T) {
	seeded := map[string]string{"USER": "u", "PASS": "p", "URL": "url"}
	ports.RunConfigSourceContract(t, memory.NewSource(seeded), seeded)
}

func TestMemorySource_SetUnset(t *testing.T) {
	src := memory.NewSource(nil)
	ctx := context.Background()

	src.Set("k", "v")
	v, ok, err := src.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	src.Unset("k")
	_, ok, _ = src.Lookup(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryExecutor_Script(t *testing.T) {
	boom := errors.New("boom")
	exec := memory.NewExecutor().
		ReplyTo("%spark cleanup", memory.Reply{Err: boom}).
		Enqueue(memory.Reply{Result: domain.ErrorResult("first")})
	ctx := context.Background()

	res, err := exec.Dispatch(ctx, domain.Directive{Code: "a"})
	require.NoError(t, err)
	assert.True(t, res.Failed())

	res, err = exec.Dispatch(ctx, domain.Directive{Code: "b"})
	require.NoError(t, err)
	assert.False(t, res.Failed())

	_, err = exec.Dispatch(ctx, domain.Directive{Code: "%spark cleanup"})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"a", "b", "%spark cleanup"}, exec.Codes())
	exec.Reset()
	assert.Empty(t, exec.Dispatched())
}
