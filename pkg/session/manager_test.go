package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/sparkbridge"
	"github.com/aretw0/sparkbridge/pkg/adapters/memory"
	"github.com/aretw0/sparkbridge/pkg/config"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/ports"
	"github.com/aretw0/sparkbridge/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowExecutor simulates latency to provoke race conditions if locking is missing.
type SlowExecutor struct {
	inflight int
	maxSeen  int
	mu       sync.Mutex
}

func (s *SlowExecutor) Dispatch(ctx context.Context, directive domain.Directive) (domain.DispatchResult, error) {
	s.mu.Lock()
	s.inflight++
	if s.inflight > s.maxSeen {
		s.maxSeen = s.inflight
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond) // Simulate IO

	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
	return domain.OK(), nil
}

func newManager(exec ports.Executor, store ports.StateStore, opts ...session.Option) *session.Manager {
	source := memory.NewSource(map[string]string{
		config.DefaultIdentityKey: "u",
		config.DefaultSecretKey:   "p",
		config.DefaultEndpointKey: "url",
	})
	factory := session.NewFactory(config.DefaultSettings(), exec, store, sparkbridge.WithConfigSource(source))
	return session.NewManager(store, factory, opts...)
}

func TestManager_Locking(t *testing.T) {
	exec := &SlowExecutor{}
	manager := newManager(exec, memory.NewStore())
	ctx := context.Background()

	_, err := manager.Create(ctx, "race-test")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Execute(ctx, "race-test", "x", false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, exec.maxSeen, "calls on one session must be serialized")
}

func TestManager_Create(t *testing.T) {
	store := memory.NewStore()
	manager := newManager(memory.NewExecutor(), store)
	ctx := context.Background()

	kernel, err := manager.Create(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, kernel.ID(), "an ID is generated")

	snap, err := store.Load(ctx, kernel.ID())
	require.NoError(t, err, "the ID is reserved in the store")
	assert.Equal(t, domain.PhaseFresh, snap.State.Phase)

	_, err = manager.Create(ctx, kernel.ID())
	assert.ErrorIs(t, err, domain.ErrSessionExists)
}

func TestManager_ExecuteUnknownSession(t *testing.T) {
	manager := newManager(memory.NewExecutor(), nil)

	_, err := manager.Execute(context.Background(), "ghost", "x", false)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_ShutdownRestartKeepsSession(t *testing.T) {
	exec := memory.NewExecutor()
	manager := newManager(exec, memory.NewStore())
	ctx := context.Background()

	_, err := manager.Create(ctx, "s")
	require.NoError(t, err)
	_, err = manager.Execute(ctx, "s", "x", false)
	require.NoError(t, err)

	require.NoError(t, manager.Shutdown(ctx, "s", true))
	kernel, err := manager.Get("s")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFresh, kernel.State().Phase)

	require.NoError(t, manager.Shutdown(ctx, "s", false))
	_, err = manager.Get("s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_FatalBootstrapClosesSession(t *testing.T) {
	exec := memory.NewExecutor().
		ReplyTo("%load_ext remotespark", memory.Reply{Result: domain.ErrorResult("no magics")})
	store := memory.NewStore()
	manager := newManager(exec, store)
	ctx := context.Background()

	_, err := manager.Create(ctx, "s")
	require.NoError(t, err)

	_, err = manager.Execute(ctx, "s", "x", false)
	assert.ErrorIs(t, err, domain.ErrDirectiveFailed)

	_, err = manager.Get("s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "host shutdown drops the session")

	snap, err := manager.Inspect(ctx, "s")
	require.NoError(t, err, "the faulted snapshot is still inspectable")
	assert.Equal(t, domain.PhaseFaulted, snap.State.Phase)
}

func TestManager_ListAndDelete(t *testing.T) {
	exec := memory.NewExecutor()
	store := memory.NewStore()
	manager := newManager(exec, store)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "old", &domain.Snapshot{SessionID: "old", State: domain.NewSessionState()}))
	_, err := manager.Create(ctx, "live")
	require.NoError(t, err)
	_, err = manager.Execute(ctx, "live", "x", false)
	require.NoError(t, err)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"live", "old"}, ids)

	exec.Reset()
	require.NoError(t, manager.Delete(ctx, "live"))
	assert.Equal(t, []string{"%spark cleanup"}, exec.Codes())

	ids, err = manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, ids)
}

func TestManager_Close(t *testing.T) {
	manager := newManager(memory.NewExecutor(), nil)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := manager.Create(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, manager.Close(ctx))

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
