package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/sparkbridge/internal/cli"
	"github.com/aretw0/sparkbridge/pkg/config"
	"github.com/aretw0/sparkbridge/pkg/connstr"
	"github.com/spf13/cobra"
)

var connstrCmd = &cobra.Command{
	Use:   "connstr",
	Short: "Build or parse session connection strings",
}

var connstrBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the connection string from the configured credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd)
		opts.DryRun = true // credentials only, nothing is dispatched

		deps, err := cli.Build(opts, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer deps.Close()

		resolver := config.NewResolver(deps.Source, config.WithLogger(deps.Logger))
		cfg, err := resolver.Resolve(cmd.Context(), deps.Settings.Keys)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), connstr.FromConfiguration(cfg))
		return nil
	},
}

var connstrParseCmd = &cobra.Command{
	Use:   "parse <connection-string>",
	Short: "Print the endpoint and identity of a connection string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := connstr.Parse(args[0])
		if err != nil {
			return err
		}

		// Configuration never marshals the secret.
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connstrCmd)
	connstrCmd.AddCommand(connstrBuildCmd)
	connstrCmd.AddCommand(connstrParseCmd)
}
