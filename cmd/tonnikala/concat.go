package main

import (
	"github.com/spf13/cobra"
)

func newConcatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concat [flags] file...",
		Short: "Concatenate files through a rope",
		Long: `Concat loads each file into its own rope, appends the ropes to a
parent rope and materializes the result`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConcat(a, cmd, args)
		},
	}
	cmd.Flags().String("separator", "", "text inserted between files")
	return cmd
}

func runConcat(a *app, cmd *cobra.Command, args []string) error {
	separator, err := cmd.Flags().GetString("separator")
	if err != nil {
		return err
	}
	contents, err := mapFiles(cmd.Context(), args, func(s string) string { return s })
	if err != nil {
		return err
	}

	root := a.env.NewRope()
	for i, content := range contents {
		if i > 0 && separator != "" {
			if err := root.Append(separator); err != nil {
				return err
			}
		}
		part := a.env.NewRope()
		if err := part.Append(content); err != nil {
			return err
		}
		if err := root.Append(part); err != nil {
			return err
		}
	}

	text, err := a.env.Materialize(root)
	if err != nil {
		return err
	}
	a.logger.Debug("materialized rope",
		"files", len(contents),
		"children", root.NumChildren(),
		"length", root.Len())
	return writeResult(cmd, text)
}
