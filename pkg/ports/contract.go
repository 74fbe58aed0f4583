package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state, err := domain.NewSessionState().Activate()
		require.NoError(t, err)
		snap := &domain.Snapshot{
			SessionID:  sessionID,
			ClientName: "ContractKernel",
			Language:   "python",
			State:      state,
			Dispatched: 3,
			UpdatedAt:  time.Now().UTC().Truncate(time.Second),
		}

		err = store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.PhaseActive, loaded.State.Phase)
		assert.True(t, loaded.State.Initialized())
		assert.Equal(t, "ContractKernel", loaded.ClientName)
		assert.Equal(t, 3, loaded.Dispatched)
		assert.True(t, snap.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Save keeps the fault message", func(t *testing.T) {
		state, err := domain.NewSessionState().Fail(domain.FatalMessage("L", "bad syntax"))
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, sessionID, &domain.Snapshot{SessionID: sessionID, State: state}))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		msg, faulted := loaded.State.FatalError()
		assert.True(t, faulted)
		assert.Equal(t, "L\nException details:\n\t\"bad syntax\"", msg)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, &domain.Snapshot{SessionID: sessionID, State: domain.NewSessionState()})
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, &domain.Snapshot{SessionID: id1, State: domain.NewSessionState()})
		_ = store.Save(ctx, id2, &domain.Snapshot{SessionID: id2, State: domain.NewSessionState()})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunConfigSourceContract verifies a ConfigSource against the values it was seeded with.
// The source must contain every entry of seeded and must not contain the key "contract.absent".
func RunConfigSourceContract(t *testing.T, source ConfigSource, seeded map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Lookup present keys", func(t *testing.T) {
		for key, want := range seeded {
			got, ok, err := source.Lookup(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok, "key %q should be present", key)
			assert.Equal(t, want, got)
		}
	})

	t.Run("Lookup absent key", func(t *testing.T) {
		got, ok, err := source.Lookup(ctx, "contract.absent")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, got)
	})
}
