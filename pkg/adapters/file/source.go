package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/sparkbridge/internal/logging"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Source implements ports.ConfigSource over a flat YAML or JSON document of
// string values, e.g.
//
//	SPARK_USERNAME: alice
//	SPARK_PASSWORD: s3cret
//	SPARK_URL: http://livy:8998
//
// Empty values count as absent. The document is read once by NewSource and
// again on every Reload; Watch reloads it when the file changes.
type Source struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	values map[string]string
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithLogger configures a logger for reload events.
func WithLogger(logger *slog.Logger) SourceOption {
	return func(s *Source) {
		s.logger = logger
	}
}

// NewSource reads path. A missing file is an error.
func NewSource(path string, opts ...SourceOption) (*Source, error) {
	s := &Source{path: path, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup implements ports.ConfigSource.
func (s *Source) Lookup(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// Reload re-reads the file. On error the previous values are kept.
func (s *Source) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read config source: %w", err)
	}

	// YAML is a superset of JSON; scalars of any type decode into strings.
	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(s.path), err)
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// Watch reloads the file whenever it changes and reports the path on the
// returned channel after each successful reload. The channel is closed when
// ctx is done.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch config file: %w", err)
	}

	changes := make(chan string, 1)
	go s.watchLoop(ctx, watcher, changes)
	return changes, nil
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- string) {
	defer close(changes)
	defer watcher.Close()

	const debounce = 100 * time.Millisecond
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Config watcher error", "err", err)

		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.logger.Warn("Config reload failed, keeping previous values", "path", s.path, "err", err)
				continue
			}
			s.logger.Info("Config source reloaded", "path", s.path)
			select {
			case changes <- s.path:
			default:
			}
		}
	}
}
