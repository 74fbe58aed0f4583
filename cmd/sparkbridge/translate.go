package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/sparkbridge/pkg/config"
	"github.com/aretw0/sparkbridge/pkg/magic"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [code]",
	Short: "Print the directive a cell would be sent as",
	Long:  `Translates a cell (from the arguments, or standard input when none are given) without contacting any session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		code := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read cell: %w", err)
			}
			code = strings.TrimRight(string(data), "\n")
		}

		settings := config.DefaultSettings()
		if path, _ := cmd.Flags().GetString("settings"); path != "" {
			var err error
			if settings, err = config.LoadSettings(path); err != nil {
				return err
			}
		}

		translator := magic.NewTranslator(magic.WithSubLanguages(settings.SubLanguages...))
		fmt.Fprintln(cmd.OutOrStdout(), translator.Translate(code))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)
}
