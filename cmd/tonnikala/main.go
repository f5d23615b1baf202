// Command tonnikala exercises the output construction layer from the
// command line: escaping text, rendering attributes, composing files
// through ropes and flattening nested fragment lists.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	tonnikala "github.com/tetframework/tonnikala/tonnikala-go"
	"github.com/tetframework/tonnikala/tonnikala-go/config"
)

// app carries the state shared by all subcommands once the persistent
// flags have been processed.
type app struct {
	configPath string
	verbose    bool
	colorMode  string

	cfg    *config.Config
	env    *tonnikala.Environment
	logger *slog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tonnikala",
		Short: "Tonnikala output construction tools",
		Long:  `Escape text, render attributes and compose or flatten template output`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newEscapeCmd(a))
	rootCmd.AddCommand(newAttrsCmd(a))
	rootCmd.AddCommand(newConcatCmd(a))
	rootCmd.AddCommand(newFlattenCmd(a))
	rootCmd.AddCommand(newJoinCmd(a))

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging and detailed errors")
	rootCmd.PersistentFlags().StringVar(&a.colorMode, "color", "auto", "colorize output (auto|on|off)")

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}

	switch a.colorMode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(cmd.ErrOrStderr())
	default:
		return fmt.Errorf("unknown color mode: %s", a.colorMode)
	}

	env, err := cfg.Environment()
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	env.SetLogger(a.logger)

	a.cfg = cfg
	a.env = env
	a.logger.Debug("configuration loaded",
		"config", a.configPath,
		"max_depth", env.MaxDepth(),
		"fuel", env.Fuel())
	return nil
}

func main() {
	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		printError(os.Stderr, err, a.verbose)
		os.Exit(1)
	}
}

var errorLabel = color.New(color.FgRed, color.Bold)

// printError writes err to w. Verbose mode uses the detailed %+v form,
// which includes traversal details for depth and fuel errors.
func printError(w io.Writer, err error, verbose bool) {
	_, _ = errorLabel.Fprint(w, "error: ")
	if verbose {
		_, _ = fmt.Fprintf(w, "%+v\n", err)
		return
	}
	_, _ = fmt.Fprintln(w, err)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeResult writes text to the command's output, adding a final newline
// when writing to a terminal.
func writeResult(cmd *cobra.Command, text string) error {
	out := cmd.OutOrStdout()
	if _, err := io.WriteString(out, text); err != nil {
		return err
	}
	if isTerminal(out) && (len(text) == 0 || text[len(text)-1] != '\n') {
		_, err := io.WriteString(out, "\n")
		return err
	}
	return nil
}
