package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/cfgcheck/cfgcheck/internal/cache"
	"github.com/cfgcheck/cfgcheck/internal/check"
	"github.com/cfgcheck/cfgcheck/internal/config"
	"github.com/cfgcheck/cfgcheck/internal/getter"
	"github.com/cfgcheck/cfgcheck/internal/schema"
	"github.com/cfgcheck/cfgcheck/internal/source"
)

var (
	checkSchema       string
	checkAll          bool
	checkAssertFormat bool
	checkOutputFormat string
	checkRefresh      bool
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&checkSchema, "schema", "s", "", "schema file, URL, alias, or builtin:<name>")
	flags.BoolVar(&checkAll, "all", false, "report every violation instead of stopping at the first")
	flags.BoolVar(&checkAssertFormat, "assert-format", false, "treat JSON Schema \"format\" as an assertion")
	flags.StringVarP(&checkOutputFormat, "output", "o", "", "output format (text, json)")
	flags.BoolVar(&checkRefresh, "refresh", false, "re-fetch remote schemas instead of using the cache")
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	w := newWriter(cmd)

	cfg, err := loadGlobalConfig()
	if err != nil {
		return err
	}

	opts := &check.Opts{
		ConfigPath:   args[0],
		SchemaRef:    checkSchema,
		All:          checkAll,
		AssertFormat: checkAssertFormat,
		OutputFormat: checkOutputFormat,
		Fs:           afero.NewOsFs(),
		Logger:       logger,
	}

	applyConfigDefaults(cmd, opts, cfg)

	if opts.OutputFormat != "text" && opts.OutputFormat != "json" {
		return &usageError{err: fmt.Errorf("unknown output format %q (want text or json)", opts.OutputFormat)}
	}

	opts.Resolver = newResolver(cfg, opts.Fs, logger)
	opts.Writer = resultWriter(cmd, opts.OutputFormat)
	opts.Warn = w.Warning

	result, err := check.Run(cmd.Context(), opts)
	if err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%s does not conform to %s", result.Config, result.Schema)
		}

		return err
	}

	if verbose && opts.OutputFormat == "text" {
		w.Successf("%s conforms to %s", result.Config, result.Schema)
	}

	return nil
}

// applyConfigDefaults fills options the user did not set on the command
// line from the config file.
func applyConfigDefaults(cmd *cobra.Command, opts *check.Opts, cfg *config.GlobalConfig) {
	flags := cmd.Flags()

	if opts.SchemaRef == "" {
		opts.SchemaRef = cfg.DefaultSchema
	}

	if !flags.Changed("all") {
		opts.All = cfg.AllViolations
	}

	if !flags.Changed("assert-format") {
		opts.AssertFormat = cfg.AssertFormat
	}

	if opts.OutputFormat == "" {
		opts.OutputFormat = cfg.Output
	}

	if opts.OutputFormat == "" {
		opts.OutputFormat = "text"
	}
}

// resultWriter sends the violation table to stderr and JSON results to stdout.
func resultWriter(cmd *cobra.Command, format string) io.Writer {
	if format == "json" {
		return cmd.OutOrStdout()
	}

	return cmd.ErrOrStderr()
}

func newResolver(cfg *config.GlobalConfig, fsys afero.Fs, logger *slog.Logger) *source.Resolver {
	aliases := make(map[string]source.Remote, len(cfg.Schemas))
	for _, s := range cfg.Schemas {
		aliases[s.Name] = source.Remote{URL: s.URL, Ref: s.Ref, Checksum: s.Checksum}
	}

	return &source.Resolver{
		Fs:      fsys,
		Aliases: aliases,
		Fetcher: getter.New(logger),
		Cache:   cache.New(cacheDir(cfg), logger),
		Refresh: checkRefresh,
		Logger:  logger,
	}
}

func cacheDir(cfg *config.GlobalConfig) string {
	if cfg != nil && cfg.CacheDir != "" {
		return cfg.CacheDir
	}

	return cache.DefaultDir()
}
