package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/magic"
	"github.com/aretw0/sparkbridge/pkg/ports"
)

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithNotifier sets the collaborator that reports errors to the user.
func WithNotifier(n ports.ErrorNotifier) Option {
	return func(l *Lifecycle) {
		if n != nil {
			l.notifier = n
		}
	}
}

// WithHost sets the collaborator asked to terminate or restart the host.
func WithHost(h ports.HostShutdown) Option {
	return func(l *Lifecycle) {
		if h != nil {
			l.host = h
		}
	}
}

// WithStore persists a snapshot of the session after every request.
func WithStore(store ports.StateStore, sessionID string) Option {
	return func(l *Lifecycle) {
		l.store = store
		l.sessionID = sessionID
	}
}

// WithSessionID labels events and log lines without enabling persistence.
func WithSessionID(sessionID string) Option {
	return func(l *Lifecycle) {
		l.sessionID = sessionID
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(l *Lifecycle) {
		l.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithTranslator replaces the default cell translator.
func WithTranslator(t *magic.Translator) Option {
	return func(l *Lifecycle) {
		if t != nil {
			l.translator = t
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Lifecycle) {
		l.now = now
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.StreamPayload) {}

type nopHost struct{}

func (nopHost) Shutdown(context.Context, bool) error { return nil }
