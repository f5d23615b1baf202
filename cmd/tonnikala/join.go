package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tetframework/tonnikala/tonnikala-go/buffer"
	"github.com/tetframework/tonnikala/tonnikala-go/value"
)

func newJoinCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join [flags] snapshot",
		Short: "Print a saved buffer snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			b, err := buffer.Load(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			a.logger.Debug("loaded snapshot", "path", args[0], "fragments", b.Len())

			if list, _ := cmd.Flags().GetBool("list"); list {
				i := 0
				for frag := range b.Fragments() {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, value.Repr(frag)); err != nil {
						return err
					}
					i++
				}
				return nil
			}
			return writeResult(cmd, b.Join())
		},
	}
	cmd.Flags().Bool("list", false, "print one fragment per line instead of joining")
	return cmd
}
