package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/sparkbridge/internal/logging"
	"github.com/aretw0/sparkbridge/pkg/config"
	"github.com/aretw0/sparkbridge/pkg/connstr"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/magic"
	"github.com/aretw0/sparkbridge/pkg/ports"
)

// Context labels of the bootstrap directives.
const (
	RegisterLabel  = "Failed to register the Spark session."
	ExtensionLabel = "Failed to load the Spark magics extension."
)

// SuggestionTemplate is sent to the user, formatted with the fault message,
// whenever the session faults or a faulted session is used.
const SuggestionTemplate = "The code failed because of a fatal error:\n\t%s.\n\n" +
	"Some things to try:\n" +
	"a) Make sure Spark has enough available resources to create a session.\n" +
	"b) Check with your cluster administrator that the Spark magics extension is configured correctly.\n" +
	"c) Restart the kernel."

// Suggestion formats SuggestionTemplate with message.
func Suggestion(message string) string {
	return fmt.Sprintf(SuggestionTemplate, message)
}

// Lifecycle owns the session state and drives the executor.
type Lifecycle struct {
	settings   config.Settings
	executor   ports.Executor
	resolver   *config.Resolver
	translator *magic.Translator
	notifier   ports.ErrorNotifier
	host       ports.HostShutdown
	store      ports.StateStore
	sessionID  string
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	now        func() time.Time

	state      domain.SessionState
	dispatched int
}

// New creates a Fresh Lifecycle. Credentials are resolved from source on the
// first Execute, not here.
func New(settings config.Settings, executor ports.Executor, source ports.ConfigSource, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		settings: settings,
		executor: executor,
		notifier: nopNotifier{},
		host:     nopHost{},
		logger:   logging.NewNop(),
		now:      time.Now,
		state:    domain.NewSessionState(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.translator == nil {
		l.translator = magic.NewTranslator(magic.WithSubLanguages(settings.SubLanguages...))
	}
	if l.sessionID != "" {
		l.logger = l.logger.With("session_id", l.sessionID)
	}
	l.resolver = config.NewResolver(source,
		config.WithNotifier(l.notifier),
		config.WithLogger(l.logger),
	)
	return l
}

// State returns the current session state.
func (l *Lifecycle) State() domain.SessionState {
	return l.state
}

// Dispatched returns how many directives were sent since the last shutdown.
func (l *Lifecycle) Dispatched() int {
	return l.dispatched
}

// Execute forwards code to the remote session, bootstrapping it first if needed.
//
// A faulted session rejects the call with a *domain.FaultedError before anything
// is dispatched. Missing credentials surface as *domain.MissingConfigurationError
// and leave the session Fresh. A directive reported as failed faults the session
// and returns a *domain.DirectiveError together with the executor's result.
// If ctx ends while a directive is in flight the call fails with the ctx error
// and the phase does not change.
func (l *Lifecycle) Execute(ctx context.Context, code string, silent bool) (domain.DispatchResult, error) {
	if msg, faulted := l.state.FatalError(); faulted {
		l.logger.Debug("Rejecting execution on faulted session")
		l.notifier.Notify(ctx, domain.Stderr(Suggestion(msg)))
		return domain.DispatchResult{}, &domain.FaultedError{Message: msg}
	}
	defer l.persist(ctx)

	if !l.state.Initialized() {
		if err := l.bootstrap(ctx); err != nil {
			return domain.DispatchResult{}, err
		}
	}

	directive := domain.Directive{
		Code: l.translator.Translate(code),
		Params: domain.DispatchParams{
			Silent:        silent,
			RecordHistory: true,
		},
	}
	return l.dispatch(ctx, domain.KindUser, directive, l.settings.ExecuteLabel, false)
}

// bootstrap registers the remote session and loads the magics extension.
func (l *Lifecycle) bootstrap(ctx context.Context) error {
	cfg, err := l.resolver.Resolve(ctx, l.settings.Keys)
	if err != nil {
		return err
	}

	params := domain.DispatchParams{Silent: true}
	register := domain.Directive{
		Code:   magic.Register(l.settings.ClientName, l.settings.SessionLanguage, connstr.FromConfiguration(cfg)),
		Params: params,
	}
	if _, err := l.dispatch(ctx, domain.KindRegister, register, RegisterLabel, true); err != nil {
		return err
	}

	extension := domain.Directive{
		Code:   magic.LoadExtension(l.settings.Extension),
		Params: params,
	}
	if _, err := l.dispatch(ctx, domain.KindExtension, extension, ExtensionLabel, true); err != nil {
		return err
	}

	next, err := l.state.Activate()
	if err != nil {
		return err
	}
	l.setState(ctx, next)
	l.logger.Info("Spark session registered",
		"client", l.settings.ClientName,
		"language", l.settings.SessionLanguage,
		"endpoint", cfg.Endpoint,
	)
	return nil
}

// dispatch sends one directive and faults the session if it fails.
// fatal additionally asks the host to shut down (without restart).
// An executor error after ctx is done leaves the state untouched.
func (l *Lifecycle) dispatch(ctx context.Context, kind domain.DirectiveKind, directive domain.Directive, label string, fatal bool) (domain.DispatchResult, error) {
	result, err := l.send(ctx, kind, directive)
	if err != nil && ctx.Err() != nil {
		// The caller gave up; the remote session reported nothing.
		l.logger.Warn("Directive interrupted", "kind", kind, "err", err)
		return domain.DispatchResult{}, fmt.Errorf("dispatch interrupted: %w", ctx.Err())
	}
	if err != nil {
		l.logger.Error("Executor could not deliver directive", "kind", kind, "err", err)
		result = domain.ErrorResult(err.Error())
	}
	if !result.Failed() {
		return result, nil
	}

	message := domain.FatalMessage(label, result.ErrorValue)
	next, err := l.state.Fail(message)
	if err != nil {
		return result, err
	}
	l.setState(ctx, next)
	l.logger.Error("Directive failed, session faulted", "kind", kind, "fatal", fatal)

	l.notifier.Notify(ctx, domain.Stderr(Suggestion(message)))

	if l.hooks.OnFault != nil {
		l.hooks.OnFault(ctx, &domain.FaultEvent{
			EventBase: l.event(),
			Kind:      kind,
			Message:   message,
			Fatal:     fatal,
		})
	}

	if fatal {
		if err := l.host.Shutdown(ctx, false); err != nil {
			l.logger.Warn("Host shutdown after fatal error failed", "err", err)
		}
	}

	return result, &domain.DirectiveError{Label: label, Value: result.ErrorValue, Message: message}
}

// send calls the executor and reports the dispatch to the hooks.
func (l *Lifecycle) send(ctx context.Context, kind domain.DirectiveKind, directive domain.Directive) (domain.DispatchResult, error) {
	start := l.now()
	result, err := l.executor.Dispatch(ctx, directive)
	l.dispatched++

	if l.hooks.OnDispatch != nil {
		status := result.Status
		if err != nil {
			status = domain.StatusError
		}
		l.hooks.OnDispatch(ctx, &domain.DispatchEvent{
			EventBase: l.event(),
			Kind:      kind,
			Code:      directive.Code,
			Status:    status,
			Duration:  l.now().Sub(start),
		})
	}
	l.logger.Debug("Directive dispatched", "kind", kind, "status", result.Status)
	return result, err
}

// Shutdown cleans up the remote session (if one was registered), resets the
// state to Fresh and asks the host to shut down with the given restart flag.
// Cleanup is best-effort: its failure is logged and does not fault the session.
func (l *Lifecycle) Shutdown(ctx context.Context, restart bool) error {
	cleanup := l.state.Initialized()
	if cleanup {
		directive := domain.Directive{
			Code:   magic.Cleanup(),
			Params: domain.DispatchParams{Silent: true},
		}
		result, err := l.send(ctx, domain.KindCleanup, directive)
		switch {
		case err != nil:
			l.logger.Warn("Session cleanup could not be delivered", "err", err)
		case result.Failed():
			l.logger.Warn("Session cleanup failed", "evalue", result.ErrorValue)
		}
	}

	l.setState(ctx, l.state.Reset())
	l.dispatched = 0
	l.persist(ctx)

	if l.hooks.OnShutdown != nil {
		l.hooks.OnShutdown(ctx, &domain.ShutdownEvent{
			EventBase: l.event(),
			Restart:   restart,
			Cleanup:   cleanup,
		})
	}
	l.logger.Info("Session shut down", "restart", restart, "cleanup", cleanup)

	if err := l.host.Shutdown(ctx, restart); err != nil {
		return fmt.Errorf("host shutdown failed: %w", err)
	}
	return nil
}

func (l *Lifecycle) setState(ctx context.Context, next domain.SessionState) {
	prev := l.state
	l.state = next
	if prev.Phase == next.Phase || l.hooks.OnTransition == nil {
		return
	}
	l.hooks.OnTransition(ctx, &domain.TransitionEvent{
		EventBase: l.event(),
		From:      prev.Phase,
		To:        next.Phase,
	})
}

// persist saves a snapshot, even for a request whose ctx is already done.
// Store failures never fail the request.
func (l *Lifecycle) persist(ctx context.Context) {
	if l.store == nil || l.sessionID == "" {
		return
	}
	snap := &domain.Snapshot{
		SessionID:  l.sessionID,
		ClientName: l.settings.ClientName,
		Language:   l.settings.SessionLanguage,
		State:      l.state,
		Dispatched: l.dispatched,
		UpdatedAt:  l.now().UTC(),
	}
	if err := l.store.Save(context.WithoutCancel(ctx), l.sessionID, snap); err != nil {
		l.logger.Warn("Failed to persist session snapshot", "err", err)
	}
}

func (l *Lifecycle) event() domain.EventBase {
	return domain.EventBase{Timestamp: l.now(), SessionID: l.sessionID}
}
