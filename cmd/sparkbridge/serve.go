package main

import (
	"github.com/aretw0/sparkbridge/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP session server",
	Long: `Hosts many Spark sessions behind a JSON API. Each session is bootstrapped on
its first execute request. Prometheus metrics are served at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ServeOptions{Options: commonOptions(cmd)}
		port, _ := cmd.Flags().GetString("port")
		opts.Addr = ":" + port
		opts.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")

		return cli.Serve(opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("metrics-addr", "", "Separate listen address for /metrics")
}
