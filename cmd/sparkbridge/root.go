package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/sparkbridge/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sparkbridge",
	Short: "SparkBridge forwards notebook cells to a remote Spark session",
	Long: `SparkBridge registers a remote Spark session on first use, rewrites cells
(%sql, %%sql, %hive) into session magics and cleans the session up on exit.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	f := rootCmd.PersistentFlags()
	f.String("settings", "", "Settings file (YAML or TOML)")
	f.String("log-level", "", "Log level: debug, info, warn, error (default: off)")
	f.String("env-prefix", "", "Prefix of the credential environment variables")
	f.String("creds", "", "YAML file with credentials, consulted before the environment")
	f.Bool("watch-creds", false, "Reload the credentials file when it changes")
	f.String("store", "", "Snapshot store: file or redis (default: none)")
	f.String("store-dir", cli.DefaultStoreDir, "Directory of the file store")
	f.String("snapshot-key", os.Getenv("SPARKBRIDGE_SNAPSHOT_KEY"), "Base64 AES-256 key encrypting snapshots at rest")
	f.String("redis", "localhost:6379", "Redis address")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database")
	f.String("config-hash", "", "Redis hash holding credentials (enables the redis credential source)")
	f.String("executor", "", "Executor config file (runs a command per directive)")
	f.String("gateway", "", "Kernel gateway URL (POSTs directives to <url>/dispatch)")
	f.Duration("gateway-timeout", 5*time.Minute, "Timeout of one gateway request")
	f.Bool("dry-run", false, "Print directives instead of sending them")
}

// commonOptions reads the persistent flags.
func commonOptions(cmd *cobra.Command) cli.Options {
	f := cmd.Flags()
	var o cli.Options
	o.SettingsPath, _ = f.GetString("settings")
	o.LogLevel, _ = f.GetString("log-level")
	o.EnvPrefix, _ = f.GetString("env-prefix")
	o.CredsFile, _ = f.GetString("creds")
	o.WatchCreds, _ = f.GetBool("watch-creds")
	o.Store, _ = f.GetString("store")
	o.StoreDir, _ = f.GetString("store-dir")
	o.SnapshotKey, _ = f.GetString("snapshot-key")
	o.RedisAddr, _ = f.GetString("redis")
	o.RedisPassword, _ = f.GetString("redis-password")
	o.RedisDB, _ = f.GetInt("redis-db")
	o.ConfigHash, _ = f.GetString("config-hash")
	o.ExecutorConfig, _ = f.GetString("executor")
	o.GatewayURL, _ = f.GetString("gateway")
	o.GatewayTimeout, _ = f.GetDuration("gateway-timeout")
	o.DryRun, _ = f.GetBool("dry-run")
	return o
}
