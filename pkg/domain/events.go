package domain

import (
	"context"
	"time"
)

// DirectiveKind classifies a dispatched directive.
type DirectiveKind string

const (
	KindRegister  DirectiveKind = "register"
	KindExtension DirectiveKind = "extension"
	KindUser      DirectiveKind = "user"
	KindCleanup   DirectiveKind = "cleanup"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
}

// DispatchEvent describes one call to the executor.
type DispatchEvent struct {
	EventBase
	Kind     DirectiveKind  `json:"kind"`
	Code     string         `json:"code"`
	Status   DispatchStatus `json:"status"`
	Duration time.Duration  `json:"duration"`
}

// TransitionEvent describes a phase change.
type TransitionEvent struct {
	EventBase
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

// FaultEvent is emitted when the session enters PhaseFaulted.
type FaultEvent struct {
	EventBase
	Kind    DirectiveKind `json:"kind"`
	Message string        `json:"message"`
	Fatal   bool          `json:"fatal"` // host shutdown was requested
}

// ShutdownEvent is emitted on every shutdown.
type ShutdownEvent struct {
	EventBase
	Restart bool `json:"restart"`
	Cleanup bool `json:"cleanup"` // cleanup directive was dispatched
}

// LifecycleHooks defines callbacks for session observability.
type LifecycleHooks struct {
	OnDispatch   func(context.Context, *DispatchEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnFault      func(context.Context, *FaultEvent)
	OnShutdown   func(context.Context, *ShutdownEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDispatch:   chain(h.OnDispatch, other.OnDispatch),
		OnTransition: chain(h.OnTransition, other.OnTransition),
		OnFault:      chain(h.OnFault, other.OnFault),
		OnShutdown:   chain(h.OnShutdown, other.OnShutdown),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
