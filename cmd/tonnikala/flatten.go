package main

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tetframework/tonnikala/tonnikala-go/buffer"
	"github.com/tetframework/tonnikala/tonnikala-go/value"
)

type fragmentsDoc struct {
	Fragments []any `toml:"fragments"`
}

func newFlattenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatten [flags] file.toml",
		Short: "Flatten nested fragments into a buffer",
		Long: `Flatten reads the nested "fragments" array of a TOML document, flattens
it depth-first into an output buffer and prints the joined text.
Numbers and booleans are rendered as text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlatten(a, cmd, args[0])
		},
	}
	cmd.Flags().String("save", "", "write a buffer snapshot to this file")
	cmd.Flags().Int64("fuel", -1, "maximum number of fragments (default from [limits].fuel)")
	return cmd
}

func runFlatten(a *app, cmd *cobra.Command, path string) error {
	var doc fragmentsDoc
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("fragments") {
		return fmt.Errorf("%s: missing fragments", path)
	}

	f := a.env.Flatten(textTree(doc.Fragments))
	if cmd.Flags().Changed("fuel") {
		n, err := cmd.Flags().GetInt64("fuel")
		if err != nil {
			return err
		}
		fuel, err := safecast.Conv[uint64](n)
		if err != nil {
			return fmt.Errorf("invalid --fuel: %w", err)
		}
		f.SetFuel(fuel)
	}
	defer f.Close()

	b, err := a.env.NewBuffer()
	if err != nil {
		return err
	}
	for text, err := range f.All() {
		if err != nil {
			return err
		}
		if err := b.Append(text); err != nil {
			return err
		}
	}
	a.logger.Debug("flattened fragments", "fragments", b.Len(), "bytes", b.Size())

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := saveSnapshot(save, b); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		a.logger.Debug("saved snapshot", "path", save)
	}
	return writeResult(cmd, b.Join())
}

// textTree converts TOML scalars in v to text, keeping the nesting.
func textTree(v any) any {
	switch t := v.(type) {
	case string, nil:
		return t
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = textTree(item)
		}
		return out
	case int64, float64, bool:
		return value.MustText(t)
	}
	return v
}

// saveSnapshot writes b to path atomically.
func saveSnapshot(path string, b *buffer.Buffer) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if err = b.Save(f); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
