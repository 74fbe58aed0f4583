package sparkbridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/sparkbridge/internal/logging"
	"github.com/aretw0/sparkbridge/internal/runtime"
	"github.com/aretw0/sparkbridge/pkg/adapters/env"
	"github.com/aretw0/sparkbridge/pkg/config"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/magic"
	"github.com/aretw0/sparkbridge/pkg/ports"
	"github.com/google/uuid"
)

// Version is the library version reported by the CLI and the HTTP/MCP servers.
const Version = "0.4.0"

// Kernel is the high-level entry point of the library.
// It wraps the internal session lifecycle and serializes calls to it.
type Kernel struct {
	mu        sync.Mutex
	lifecycle *runtime.Lifecycle
	settings  config.Settings

	source    ports.ConfigSource
	notifier  ports.ErrorNotifier
	host      ports.HostShutdown
	store     ports.StateStore
	sessionID string
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Kernel.
type Option func(*Kernel)

// WithConfigSource sets where credentials are read from.
// Defaults to the process environment.
func WithConfigSource(source ports.ConfigSource) Option {
	return func(k *Kernel) {
		k.source = source
	}
}

// WithNotifier sets the collaborator that shows errors to the user.
func WithNotifier(n ports.ErrorNotifier) Option {
	return func(k *Kernel) {
		k.notifier = n
	}
}

// WithHost sets the collaborator asked to terminate or restart the host.
func WithHost(h ports.HostShutdown) Option {
	return func(k *Kernel) {
		k.host = h
	}
}

// WithStore persists a snapshot of the session after every request.
// Without WithSessionID the kernel names the session with a random UUID.
func WithStore(store ports.StateStore) Option {
	return func(k *Kernel) {
		k.store = store
	}
}

// WithSessionID names the session in logs, events and snapshots.
func WithSessionID(id string) Option {
	return func(k *Kernel) {
		k.sessionID = id
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(k *Kernel) {
		k.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the kernel.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Kernel) {
		k.logger = logger
	}
}

// New initializes a Kernel in the Fresh phase. Nothing is dispatched until the
// first Execute.
func New(settings config.Settings, executor ports.Executor, opts ...Option) (*Kernel, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	k := &Kernel{settings: settings}
	for _, opt := range opts {
		opt(k)
	}

	if k.source == nil {
		k.source = env.NewSource("")
	}
	if k.logger == nil {
		k.logger = logging.NewNop()
	}
	if k.store != nil && k.sessionID == "" {
		k.sessionID = uuid.NewString()
	}

	runtimeOpts := []runtime.Option{
		runtime.WithNotifier(k.notifier),
		runtime.WithHost(k.host),
		runtime.WithLifecycleHooks(k.hooks),
		runtime.WithLogger(k.logger),
		runtime.WithTranslator(magic.NewTranslator(magic.WithSubLanguages(settings.SubLanguages...))),
	}
	if k.store != nil && k.sessionID != "" {
		runtimeOpts = append(runtimeOpts, runtime.WithStore(k.store, k.sessionID))
	} else if k.sessionID != "" {
		runtimeOpts = append(runtimeOpts, runtime.WithSessionID(k.sessionID))
	}

	k.lifecycle = runtime.New(settings, executor, k.source, runtimeOpts...)
	return k, nil
}

// Execute forwards a cell to the remote session, registering the session first
// when needed. See runtime.Lifecycle.Execute for the error contract.
func (k *Kernel) Execute(ctx context.Context, code string, silent bool) (domain.DispatchResult, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lifecycle.Execute(ctx, code, silent)
}

// Shutdown cleans up the remote session and notifies the host.
func (k *Kernel) Shutdown(ctx context.Context, restart bool) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lifecycle.Shutdown(ctx, restart)
}

// State returns the current session state.
func (k *Kernel) State() domain.SessionState {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lifecycle.State()
}

// Snapshot describes the session as it would be persisted.
func (k *Kernel) Snapshot() domain.Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()
	return domain.Snapshot{
		SessionID:  k.sessionID,
		ClientName: k.settings.ClientName,
		Language:   k.settings.SessionLanguage,
		State:      k.lifecycle.State(),
		Dispatched: k.lifecycle.Dispatched(),
		UpdatedAt:  time.Now().UTC(),
	}
}

// ID returns the session id given with WithSessionID. A kernel with a store
// but no explicit id gets a random one.
func (k *Kernel) ID() string {
	return k.sessionID
}

// Settings returns the settings the kernel was built with.
func (k *Kernel) Settings() config.Settings {
	return k.settings
}
