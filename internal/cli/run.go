package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/sparkbridge"
	"github.com/aretw0/sparkbridge/internal/presentation/tui"
	"github.com/aretw0/sparkbridge/pkg/ports"
	"github.com/google/uuid"
)

// shutdownTimeout bounds the cleanup directive sent when a session ends.
const shutdownTimeout = 10 * time.Second

// FatalExitError is returned when the session asked the host to exit after a
// fatal error.
type FatalExitError struct {
	Message string
}

func (e *FatalExitError) Error() string {
	return "kernel exited: " + e.Message
}

// RunSession runs an interactive session reading cells from in until EOF,
// "exit" or a signal. The remote session is always cleaned up on the way out.
func RunSession(opts RunOptions, in io.Reader, out, errOut io.Writer) error {
	deps, err := Build(opts.Options, out)
	if err != nil {
		return err
	}
	defer deps.Close()

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	// A fatal bootstrap error asks the host to exit: end the loop.
	runCtx, stop := context.WithCancel(sigCtx)
	defer stop()
	host := ports.HostShutdownFunc(func(ctx context.Context, restart bool) error {
		if !restart {
			stop()
		}
		return nil
	})

	if opts.Fresh && deps.Store != nil {
		if err := deps.Store.Delete(runCtx, sessionID); err != nil {
			deps.Logger.Warn("Failed to reset session snapshot", "session_id", sessionID, "err", err)
		}
	}

	kernelOpts := append(deps.KernelOptions(),
		sparkbridge.WithSessionID(sessionID),
		sparkbridge.WithHost(host),
		sparkbridge.WithNotifier(tui.NewNotifier(errOut)),
	)
	if deps.Store != nil {
		kernelOpts = append(kernelOpts, sparkbridge.WithStore(deps.Store))
	}
	kernel, err := sparkbridge.New(deps.Settings, deps.Executor, kernelOpts...)
	if err != nil {
		return fmt.Errorf("error initializing kernel: %w", err)
	}

	if opts.WatchCreds {
		if err := deps.WatchCredentials(runCtx); err != nil {
			return err
		}
	}

	quiet := opts.Headless
	if !quiet {
		tui.PrintBanner(out)
		printSystemMessage(out, "Session '%s' ready (%s).", sessionID, deps.Settings.SessionLanguage)
	}

	r := sparkbridge.NewRunner()
	r.Input = NewInterruptibleReader(in, runCtx.Done())
	r.Output = out
	r.Headless = opts.Headless
	r.Silent = opts.Silent
	if opts.Markdown && !opts.Headless {
		r.Renderer = tui.NewRenderer()
	}

	runErr := r.Run(runCtx, kernel)
	if runCtx.Err() != nil && sigCtx.Err() == nil {
		if msg, faulted := kernel.State().FatalError(); faulted {
			runErr = &FatalExitError{Message: msg}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := kernel.Shutdown(shutdownCtx, false); err != nil {
		deps.Logger.Warn("Session shutdown failed", "session_id", sessionID, "err", err)
	}

	if runErr == nil && sigCtx.Err() != nil {
		runErr = sigCtx.Err()
	}
	if !quiet {
		logCompletion(out, sessionID, runErr, sigCtx.Signal())
	}
	return handleExecutionError(runErr)
}
