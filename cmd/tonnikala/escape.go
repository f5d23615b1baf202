package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tetframework/tonnikala/tonnikala-go/markup"
)

func newEscapeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escape [flags] [file...]",
		Short: "Escape text for HTML",
		Long:  `Escape replaces &, < and > (and " with --quotes) in stdin or the given files`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEscape(a, cmd, args)
		},
	}
	cmd.Flags().Bool("quotes", true, `also escape " (default from [escape].quotes)`)
	return cmd
}

func runEscape(a *app, cmd *cobra.Command, args []string) error {
	quotes := a.cfg.Escape.Quotes
	if cmd.Flags().Changed("quotes") {
		q, err := cmd.Flags().GetBool("quotes")
		if err != nil {
			return fmt.Errorf("failed to get quotes flag: %w", err)
		}
		quotes = q
	}
	escape := func(s string) string { return markup.Escape(s, quotes) }

	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		return writeResult(cmd, escape(string(data)))
	}

	results, err := mapFiles(cmd.Context(), args, escape)
	if err != nil {
		return err
	}
	a.logger.Debug("escaped files", "count", len(results), "quotes", quotes)
	return writeResult(cmd, strings.Join(results, ""))
}
