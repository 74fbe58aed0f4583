package ports

import (
	"context"

	"github.com/aretw0/sparkbridge/pkg/domain"
)

// ErrorNotifier reports errors to the user.
// Implementations must not fail visibly to the caller.
type ErrorNotifier interface {
	Notify(ctx context.Context, payload domain.StreamPayload)
}

// NotifierFunc adapts a function to the ErrorNotifier interface.
type NotifierFunc func(ctx context.Context, payload domain.StreamPayload)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, payload domain.StreamPayload) {
	f(ctx, payload)
}
