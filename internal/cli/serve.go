package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/sparkbridge"
	sbhttp "github.com/aretw0/sparkbridge/pkg/adapters/http"
	"github.com/aretw0/sparkbridge/pkg/adapters/mcp"
	"github.com/aretw0/sparkbridge/pkg/adapters/memory"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/magic"
	"github.com/aretw0/sparkbridge/pkg/observability"
	"github.com/aretw0/sparkbridge/pkg/ports"
	"github.com/aretw0/sparkbridge/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const gracePeriod = 5 * time.Second

// NewManager builds a session registry from deps. Sessions notify through
// the logger since a server has no terminal.
func NewManager(deps *Deps) *session.Manager {
	store := deps.Store
	if store == nil {
		store = memory.NewStore()
	}

	notifier := ports.NotifierFunc(func(ctx context.Context, p domain.StreamPayload) {
		deps.Logger.Warn("Session notification", "stream", p.Name, "text", p.Text)
	})
	factory := session.NewFactory(deps.Settings, deps.Executor, store,
		append(deps.KernelOptions(), sparkbridge.WithNotifier(notifier))...)

	opts := []session.Option{session.WithLogger(deps.Logger)}
	if deps.Locker != nil {
		opts = append(opts, session.WithLocker(deps.Locker))
	}
	return session.NewManager(store, factory, opts...)
}

// Serve runs the HTTP API until a signal arrives. Metrics are served on the
// API listener unless MetricsAddr names a separate one.
func Serve(opts ServeOptions, out io.Writer) error {
	deps, err := Build(opts.Options, out)
	if err != nil {
		return err
	}
	defer deps.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)
	deps.Hooks = deps.Hooks.Merge(metrics.Hooks())

	manager := NewManager(deps)
	metricsHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	handlerOpts := []sbhttp.HandlerOption{sbhttp.WithLogger(deps.Logger)}
	if opts.MetricsAddr == "" {
		handlerOpts = append(handlerOpts, sbhttp.WithMetrics(metricsHandler))
	}

	servers := []*http.Server{{
		Addr:              opts.Addr,
		Handler:           sbhttp.NewHandler(manager, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if opts.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		servers = append(servers, &http.Server{
			Addr:              opts.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if opts.WatchCreds {
		if err := deps.WatchCredentials(sigCtx); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(sigCtx)
	for _, srv := range servers {
		g.Go(func() error {
			deps.Logger.Info("Listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	printSystemMessage(out, "SparkBridge API listening on %s", opts.Addr)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), gracePeriod)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("graceful shutdown of %s: %w", srv.Addr, err))
				_ = srv.Close()
			}
		}
		errs = append(errs, manager.Close(shutdownCtx))
		return errors.Join(errs...)
	})

	err = g.Wait()
	printSystemMessage(out, "SparkBridge API stopped.")
	return err
}

// ServeMCP runs the MCP server on the selected transport.
func ServeMCP(opts MCPOptions, out io.Writer) error {
	// stdout carries JSON-RPC in stdio mode; dry-run output goes elsewhere.
	deps, err := Build(opts.Options, io.Discard)
	if err != nil {
		return err
	}
	defer deps.Close()

	manager := NewManager(deps)
	translator := magic.NewTranslator(magic.WithSubLanguages(deps.Settings.SubLanguages...))
	srv := mcp.NewServer(manager, mcp.WithTranslator(translator), mcp.WithLogger(deps.Logger))

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), gracePeriod)
		defer cancel()
		if err := manager.Close(closeCtx); err != nil {
			deps.Logger.Warn("Closing sessions failed", "err", err)
		}
	}()

	switch opts.Transport {
	case "stdio":
		deps.Logger.Info("Starting MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		printSystemMessage(out, "SparkBridge MCP server (SSE) on port %d", opts.Port)
		return srv.ServeSSE(sigCtx, opts.Port)
	default:
		return fmt.Errorf("unknown transport %q (use stdio or sse)", opts.Transport)
	}
}
