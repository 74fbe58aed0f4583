package memory

import (
	"context"
	"sync"

	"github.com/aretw0/sparkbridge/pkg/domain"
)

// Notifier implements ports.ErrorNotifier by recording payloads.
type Notifier struct {
	mu       sync.Mutex
	payloads []domain.StreamPayload
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Notify implements ports.ErrorNotifier.
func (n *Notifier) Notify(ctx context.Context, payload domain.StreamPayload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, payload)
}

// Payloads returns a copy of the recorded payloads.
func (n *Notifier) Payloads() []domain.StreamPayload {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.StreamPayload(nil), n.payloads...)
}

// Host implements ports.HostShutdown by recording the restart flags it receives.
type Host struct {
	mu    sync.Mutex
	calls []bool
	err   error
}

// NewHost creates a Host whose Shutdown returns err.
func NewHost(err error) *Host {
	return &Host{err: err}
}

// Shutdown implements ports.HostShutdown.
func (h *Host) Shutdown(ctx context.Context, restart bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, restart)
	return h.err
}

// Calls returns the restart flag of every Shutdown call.
func (h *Host) Calls() []bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]bool(nil), h.calls...)
}
