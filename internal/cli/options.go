package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Store backends accepted by --store.
const (
	StoreNone  = ""
	StoreFile  = "file"
	StoreRedis = "redis"
)

// DefaultStoreDir is where the file store keeps snapshots.
const DefaultStoreDir = ".sparkbridge/sessions"

// Options are the flags shared by every command that builds a kernel.
type Options struct {
	SettingsPath string
	LogLevel     string
	EnvPrefix    string

	// CredsFile is a YAML key-value file consulted before the environment.
	CredsFile  string
	WatchCreds bool

	Store    string
	StoreDir string
	// SnapshotKey is a base64 AES-256 key; snapshots are encrypted at rest when set.
	SnapshotKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// ConfigHash enables a redis hash as credential source.
	ConfigHash string

	// Exactly one executor is used: DryRun, then GatewayURL, then ExecutorConfig.
	ExecutorConfig string
	GatewayURL     string
	GatewayTimeout time.Duration
	DryRun         bool
}

// RunOptions configure the interactive session.
type RunOptions struct {
	Options
	SessionID string
	Headless  bool
	Silent    bool
	Fresh     bool
	Markdown  bool
}

// ServeOptions configure the HTTP server.
type ServeOptions struct {
	Options
	Addr        string
	MetricsAddr string
}

// MCPOptions configure the MCP server.
type MCPOptions struct {
	Options
	Transport string
	Port      int
}

// usesRedis reports whether any component needs a redis client.
func (o Options) usesRedis() bool {
	return o.Store == StoreRedis || o.ConfigHash != ""
}

// parseLevel maps --log-level to a slog level. An empty level disables logging.
func parseLevel(level string) (slog.Level, bool, error) {
	switch strings.ToLower(level) {
	case "", "off", "none":
		return 0, false, nil
	case "debug":
		return slog.LevelDebug, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "error":
		return slog.LevelError, true, nil
	default:
		return 0, false, fmt.Errorf("unknown log level %q", level)
	}
}
