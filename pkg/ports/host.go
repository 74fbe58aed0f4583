package ports

import "context"

// HostShutdown terminates (or restarts) the host process or session.
// It is synchronous from the caller's perspective.
type HostShutdown interface {
	Shutdown(ctx context.Context, restart bool) error
}

// HostShutdownFunc adapts a function to the HostShutdown interface.
type HostShutdownFunc func(ctx context.Context, restart bool) error

// Shutdown calls f.
func (f HostShutdownFunc) Shutdown(ctx context.Context, restart bool) error {
	return f(ctx, restart)
}
