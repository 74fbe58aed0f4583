package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/sparkbridge"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sparkbridge",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sparkbridge version %s\n", strings.TrimSpace(sparkbridge.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
