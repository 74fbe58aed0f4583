package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Notifier writes error notifications to a terminal stream.
// Text is colored only when the stream is a terminal.
type Notifier struct {
	mu      sync.Mutex
	out     io.Writer
	profile termenv.Profile
}

// NewNotifier creates a Notifier writing to w.
func NewNotifier(w io.Writer) *Notifier {
	profile := termenv.Ascii
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.NewOutput(f).ColorProfile()
	}
	return &Notifier{out: w, profile: profile}
}

// NewStderrNotifier creates a Notifier writing to os.Stderr.
func NewStderrNotifier() *Notifier {
	return NewNotifier(os.Stderr)
}

// Notify implements ports.ErrorNotifier.
func (n *Notifier) Notify(ctx context.Context, payload domain.StreamPayload) {
	text := strings.TrimRight(payload.Text, "\n")
	if payload.Name == domain.StreamStderr {
		text = termenv.String(text).Foreground(n.profile.Color("#ef4444")).String()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, text)
}
