package ports

import (
	"context"

	"github.com/aretw0/sparkbridge/pkg/domain"
)

// Executor dispatches directives to the remote session.
//
// Failures reported by the remote session come back as a DispatchResult with
// Status == domain.StatusError. A non-nil error means the directive could not be
// delivered at all; the lifecycle treats both the same way.
type Executor interface {
	Dispatch(ctx context.Context, directive domain.Directive) (domain.DispatchResult, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, directive domain.Directive) (domain.DispatchResult, error)

// Dispatch calls f.
func (f ExecutorFunc) Dispatch(ctx context.Context, directive domain.Directive) (domain.DispatchResult, error) {
	return f(ctx, directive)
}
