// Package cmd defines the CLI commands for cfgcheck.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cfgcheck/cfgcheck/internal/config"
	"github.com/cfgcheck/cfgcheck/internal/source"
	"github.com/cfgcheck/cfgcheck/internal/ui"
)

var (
	verbose bool
	noColor bool
	cfgFile string
)

// rootCmd validates a configuration file; see check.go.
var rootCmd = &cobra.Command{
	Use:   "cfgcheck <config-file>",
	Short: "Validate a YAML configuration file against a schema",
	Long: `cfgcheck parses a YAML (or JSON) configuration file, rejecting duplicate
mapping keys, and validates it against a JSON Schema or CUE schema.

The schema may be a local file, a remote go-getter source, an alias from the
config file, or a schema built into the binary (see "cfgcheck schemas").

Nothing is printed when the file conforms. Otherwise the problem is reported
on stderr and the exit status is non-zero.

A config file named like a subcommand (init, schemas, cache, version) must
be given with a path, e.g. ./init.`,
	Example: `  cfgcheck cdba.yaml --schema builtin:cdba
  cfgcheck board.yaml -s ./schema.yaml --all
  cfgcheck board.yaml -s https://example.com/board.schema.json -o json
  cfgcheck ./init -s builtin:cdba`,
	Args:          usageArgs(cobra.ExactArgs(1)),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		initLogger()
	},
	RunE: runCheck,
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		newWriter(rootCmd).Error(err.Error())
	}

	return err
}

// ExitCode maps an error returned by Execute to a process exit status:
// 2 for usage errors, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var uerr *usageError
	if errors.As(err, &uerr) || errors.Is(err, source.ErrNoSchema) {
		return 2
	}

	return 1
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/cfgcheck/config.yaml)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// newWriter builds the styled writer for cmd's output streams.
func newWriter(cmd *cobra.Command) *ui.Writer {
	return ui.NewWriter(cmd.OutOrStdout(), cmd.ErrOrStderr(), noColor)
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func loadGlobalConfig() (*config.GlobalConfig, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	slog.Debug("loading config file", "path", path)

	cfg, err := config.LoadGlobalConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	return cfg, nil
}

// usageError marks a mistake in how cfgcheck was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err: fmt.Errorf("%w\n\nUsage: %s", err, cmd.UseLine())}
		}

		return nil
	}
}
