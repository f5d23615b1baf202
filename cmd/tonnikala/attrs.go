package main

import (
	"strings"

	"github.com/spf13/cobra"

	tonnikala "github.com/tetframework/tonnikala/tonnikala-go"
)

func newAttrsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attrs name[=value]...",
		Short: "Render HTML attributes",
		Long: `Attrs renders each argument as an attribute. The values true, false and
none are the boolean sentinels; a name without a value is the same as
name=true.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.env.OutputAttrs(parseAttrs(args))
			if err != nil {
				return err
			}
			return writeResult(cmd, b.Join())
		},
	}
}

func parseAttrs(args []string) []tonnikala.Attr {
	attrs := make([]tonnikala.Attr, 0, len(args))
	for _, arg := range args {
		name, raw, found := strings.Cut(arg, "=")
		var v any = raw
		switch {
		case !found || raw == "true":
			v = true
		case raw == "false":
			v = false
		case raw == "none":
			v = nil
		}
		attrs = append(attrs, tonnikala.Attr{Name: name, Value: v})
	}
	return attrs
}
