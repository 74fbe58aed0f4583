package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/sparkbridge/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that write one structured line per event.
// Directive code is logged at debug level only.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.Info("directive_dispatched",
				"session_id", e.SessionID,
				"kind", e.Kind,
				"status", e.Status,
				"duration", e.Duration,
			)
			logger.Debug("directive_code", "session_id", e.SessionID, "code", e.Code)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.Info("session_transition", "session_id", e.SessionID, "from", e.From, "to", e.To)
		},
		OnFault: func(ctx context.Context, e *domain.FaultEvent) {
			logger.Error("session_fault",
				"session_id", e.SessionID,
				"kind", e.Kind,
				"fatal", e.Fatal,
				"message", e.Message,
			)
		},
		OnShutdown: func(ctx context.Context, e *domain.ShutdownEvent) {
			logger.Info("session_shutdown", "session_id", e.SessionID, "restart", e.Restart, "cleanup", e.Cleanup)
		},
	}
}
