package main

import (
	"github.com/aretw0/sparkbridge/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive session",
	Long: `Reads cells from standard input and forwards them to a remote Spark session.
A cell ends with an empty line. Type 'exit' to quit; the session is cleaned up on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{Options: commonOptions(cmd)}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.Silent, _ = cmd.Flags().GetBool("silent")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Markdown, _ = cmd.Flags().GetBool("markdown")

		return cli.RunSession(opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session ID (default: random)")
	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner or prompts)")
	runCmd.Flags().Bool("silent", false, "Execute cells silently on the remote kernel")
	runCmd.Flags().Bool("fresh", false, "Remove the stored snapshot of the session first")
	runCmd.Flags().Bool("markdown", false, "Render cell output as markdown")
}
