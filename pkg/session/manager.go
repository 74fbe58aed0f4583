package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/sparkbridge"
	"github.com/aretw0/sparkbridge/internal/logging"
	"github.com/aretw0/sparkbridge/pkg/config"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a replica may hold the distributed lock of a session.
const DefaultLockTTL = 30 * time.Second

// Factory builds the kernel of a new session. host must be passed to the kernel
// (sparkbridge.WithHost) so the Manager learns when the session's host goes away.
type Factory func(sessionID string, host ports.HostShutdown) (*sparkbridge.Kernel, error)

// NewFactory returns a Factory building kernels from fixed settings and executor.
// Every kernel is named after its session and persists to store when it is not nil.
func NewFactory(settings config.Settings, executor ports.Executor, store ports.StateStore, opts ...sparkbridge.Option) Factory {
	return func(sessionID string, host ports.HostShutdown) (*sparkbridge.Kernel, error) {
		all := append([]sparkbridge.Option{}, opts...)
		all = append(all, sparkbridge.WithSessionID(sessionID), sparkbridge.WithHost(host))
		if store != nil {
			all = append(all, sparkbridge.WithStore(store))
		}
		return sparkbridge.New(settings, executor, all...)
	}
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager keeps the live kernels of a multi-session host and serializes calls per session.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store   ports.StateStore
	factory Factory

	mu      sync.Mutex                     // Global lock for the maps
	locks   map[string]*lockEntry          // Map of active locks
	kernels map[string]*sparkbridge.Kernel // Live sessions

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Session Manager. store may be nil when snapshots are not kept.
func NewManager(store ports.StateStore, factory Factory, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		factory: factory,
		locks:   make(map[string]*lockEntry),
		kernels: make(map[string]*sparkbridge.Kernel),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create starts a Fresh session. An empty sessionID gets a random one.
func (m *Manager) Create(ctx context.Context, sessionID string) (*sparkbridge.Kernel, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var kernel *sparkbridge.Kernel
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := m.kernel(sessionID); err == nil {
			return fmt.Errorf("%w: %s", domain.ErrSessionExists, sessionID)
		}

		var err error
		kernel, err = m.factory(sessionID, m.hostFor(sessionID))
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		if m.store != nil {
			snap := kernel.Snapshot()
			// Persist immediately to reserve the ID
			if err := m.store.Save(ctx, sessionID, &snap); err != nil {
				return fmt.Errorf("failed to initialize session: %w", err)
			}
		}

		m.mu.Lock()
		m.kernels[sessionID] = kernel
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("Session created", "session_id", sessionID)
	return kernel, nil
}

// Get returns the live kernel of a session.
func (m *Manager) Get(sessionID string) (*sparkbridge.Kernel, error) {
	return m.kernel(sessionID)
}

// Execute runs code on a live session.
func (m *Manager) Execute(ctx context.Context, sessionID, code string, silent bool) (domain.DispatchResult, error) {
	var result domain.DispatchResult
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		kernel, err := m.kernel(sessionID)
		if err != nil {
			return err
		}
		result, err = kernel.Execute(ctx, code, silent)
		return err
	})
	return result, err
}

// Shutdown shuts a live session down. Without restart the session is removed
// from the Manager; with restart it stays available in the Fresh phase.
func (m *Manager) Shutdown(ctx context.Context, sessionID string, restart bool) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		kernel, err := m.kernel(sessionID)
		if err != nil {
			return err
		}
		return kernel.Shutdown(ctx, restart)
	})
}

// Inspect returns the snapshot of a session. Live sessions are described from
// memory; others are read from the store.
func (m *Manager) Inspect(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	if kernel, err := m.kernel(sessionID); err == nil {
		snap := kernel.Snapshot()
		return &snap, nil
	}
	if m.store == nil {
		return nil, domain.ErrSessionNotFound
	}
	return m.store.Load(ctx, sessionID)
}

// Delete shuts a live session down and removes its snapshot.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if kernel, err := m.kernel(sessionID); err == nil {
			if err := kernel.Shutdown(ctx, false); err != nil {
				m.logger.Warn("Shutdown before delete failed", "session_id", sessionID, "err", err)
			}
			m.evict(sessionID)
		}
		if m.store == nil {
			return nil
		}
		return m.store.Delete(ctx, sessionID)
	})
}

// List returns the IDs of live and persisted sessions, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	m.mu.Lock()
	for id := range m.kernels {
		seen[id] = struct{}{}
	}
	m.mu.Unlock()

	if m.store != nil {
		stored, err := m.store.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range stored {
			seen[id] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close shuts every live session down without restart.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.kernels))
	for id := range m.kernels {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.Shutdown(ctx, id, false); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) kernel(sessionID string) (*sparkbridge.Kernel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kernel, ok := m.kernels[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return kernel, nil
}

func (m *Manager) evict(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kernels, sessionID)
}

// hostFor stands in for the host process of one session: shutting it down
// without restart drops the session, like a notebook kernel exiting.
func (m *Manager) hostFor(sessionID string) ports.HostShutdown {
	return ports.HostShutdownFunc(func(ctx context.Context, restart bool) error {
		if restart {
			m.logger.Info("Session restarted", "session_id", sessionID)
			return nil
		}
		m.evict(sessionID)
		m.logger.Info("Session closed", "session_id", sessionID)
		return nil
	})
}
