package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/sparkbridge"
	"github.com/aretw0/sparkbridge/internal/logging"
	"github.com/aretw0/sparkbridge/pkg/adapters/env"
	"github.com/aretw0/sparkbridge/pkg/adapters/file"
	sbhttp "github.com/aretw0/sparkbridge/pkg/adapters/http"
	"github.com/aretw0/sparkbridge/pkg/adapters/process"
	sbredis "github.com/aretw0/sparkbridge/pkg/adapters/redis"
	"github.com/aretw0/sparkbridge/pkg/config"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/observability"
	"github.com/aretw0/sparkbridge/pkg/persistence/middleware"
	"github.com/aretw0/sparkbridge/pkg/ports"
)

// ErrNoExecutor is returned when no executor flag was given.
var ErrNoExecutor = errors.New("no executor configured: use --executor, --gateway or --dry-run")

// Deps are the collaborators shared by every kernel a command creates.
type Deps struct {
	Settings config.Settings
	Executor ports.Executor
	Source   ports.ConfigSource
	Store    ports.StateStore
	Locker   ports.DistributedLocker
	Logger   *slog.Logger
	Hooks    domain.LifecycleHooks

	creds   *file.Source
	closers []func() error
}

// Build wires the collaborators selected by opts. out receives dry-run output.
// Callers must Close the returned Deps.
func Build(opts Options, out io.Writer) (*Deps, error) {
	d := &Deps{}
	if err := d.build(opts, out); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Deps) build(opts Options, out io.Writer) error {
	logger, err := createLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	d.Logger = logger
	d.Hooks = observability.LoggingHooks(logger)

	d.Settings = config.DefaultSettings()
	if opts.SettingsPath != "" {
		if d.Settings, err = config.LoadSettings(opts.SettingsPath); err != nil {
			return err
		}
	}

	if d.Executor, err = buildExecutor(opts, out); err != nil {
		return err
	}

	var redisStore *sbredis.Store
	if opts.usesRedis() {
		redisStore = sbredis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		d.closers = append(d.closers, redisStore.Close)
		d.Locker = sbredis.NewLocker(redisStore.Client(), "")
	}

	switch opts.Store {
	case StoreNone:
	case StoreFile:
		d.Store = file.New(opts.StoreDir)
	case StoreRedis:
		d.Store = redisStore
	default:
		return fmt.Errorf("unknown store %q (use %q or %q)", opts.Store, StoreFile, StoreRedis)
	}
	if d.Store != nil {
		if d.Store, err = secureStore(d.Store, opts.SnapshotKey); err != nil {
			return err
		}
	}

	// First hit wins: credentials file, redis hash, environment.
	var chain config.Chain
	if opts.CredsFile != "" {
		d.creds, err = file.NewSource(opts.CredsFile, file.WithLogger(logger))
		if err != nil {
			return err
		}
		chain = append(chain, d.creds)
	}
	if opts.ConfigHash != "" {
		chain = append(chain, sbredis.NewSource(redisStore.Client(), opts.ConfigHash))
	}
	chain = append(chain, env.NewSource(opts.EnvPrefix))
	d.Source = chain

	return nil
}

// secureStore redacts credentials from fault messages and, given a key,
// encrypts snapshots at rest.
func secureStore(store ports.StateStore, key string) (ports.StateStore, error) {
	redact, err := middleware.NewRedactionMiddleware(middleware.DefaultRedactionPatterns)
	if err != nil {
		return nil, err
	}
	mws := []middleware.Middleware{redact}

	if key != "" {
		raw, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot key: %w", err)
		}
		encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: raw})
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot key: %w", err)
		}
		mws = append(mws, encrypt)
	}
	return middleware.Chain(store, mws...), nil
}

func buildExecutor(opts Options, out io.Writer) (ports.Executor, error) {
	switch {
	case opts.DryRun:
		return NewDryRunExecutor(out), nil
	case opts.GatewayURL != "":
		return sbhttp.NewExecutor(opts.GatewayURL, opts.GatewayTimeout), nil
	case opts.ExecutorConfig != "":
		cfg, err := process.LoadConfig(opts.ExecutorConfig)
		if err != nil {
			return nil, err
		}
		return process.NewExecutor(cfg)
	default:
		return nil, ErrNoExecutor
	}
}

// KernelOptions returns the kernel options every command shares.
func (d *Deps) KernelOptions() []sparkbridge.Option {
	return []sparkbridge.Option{
		sparkbridge.WithConfigSource(d.Source),
		sparkbridge.WithLogger(d.Logger),
		sparkbridge.WithLifecycleHooks(d.Hooks),
	}
}

// WatchCredentials reloads the credentials file on change until ctx is done.
// It is a no-op without a credentials file.
func (d *Deps) WatchCredentials(ctx context.Context) error {
	if d.creds == nil {
		return nil
	}
	changes, err := d.creds.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for path := range changes {
			d.Logger.Info("Credentials reloaded", "path", path)
		}
	}()
	return nil
}

// Close releases connections opened by Build.
func (d *Deps) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	d.closers = nil
	return errors.Join(errs...)
}

func createLogger(level string) (*slog.Logger, error) {
	lvl, enabled, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return logging.NewNop(), nil
	}
	return logging.New(lvl), nil
}
