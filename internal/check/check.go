// Package check validates one configuration file against one schema.
package check

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/afero"

	"github.com/cfgcheck/cfgcheck/internal/document"
	"github.com/cfgcheck/cfgcheck/internal/schema"
	"github.com/cfgcheck/cfgcheck/internal/source"
)

// Opts configures the check operation.
type Opts struct {
	// ConfigPath is the document to validate.
	ConfigPath string
	// SchemaRef is passed to Resolver; see package source for its formats.
	SchemaRef string
	// All reports every violation instead of the first one.
	All bool
	// AssertFormat enables JSON Schema format assertions.
	AssertFormat bool
	// OutputFormat is "text" or "json".
	OutputFormat string
	// Writer is the output destination.
	Writer io.Writer
	// Resolver loads the schema. Defaults to a Resolver over Fs.
	Resolver *source.Resolver
	// Fs reads the config file and local $ref targets. Defaults to the OS filesystem.
	Fs afero.Fs
	// Warn receives non-fatal notices. Defaults to logging them at Warn level.
	Warn func(msg string)

	Logger *slog.Logger
}

// Result holds the outcome of a check.
type Result struct {
	Config     string             `json:"config"`
	Schema     string             `json:"schema"`
	Valid      bool               `json:"valid"`
	Violations []schema.Violation `json:"violations,omitempty"`
}

// Run loads the schema, then the config, then validates. Load failures are
// returned wrapped with their stage and no result. A non-conforming document
// yields both the Result and its *schema.ValidationError.
func Run(ctx context.Context, opts *Opts) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = &source.Resolver{Fs: fsys, Logger: logger}
	}

	logger.Debug("loading schema", "ref", opts.SchemaRef)

	src, err := resolver.Resolve(ctx, opts.SchemaRef)
	if err != nil {
		if errors.Is(err, source.ErrNoSchema) {
			return nil, err
		}

		return nil, fmt.Errorf("loading schema %s: %w", opts.SchemaRef, err)
	}

	if opts.AssertFormat && schema.IsCUE(src.Name) {
		warn := opts.Warn
		if warn == nil {
			warn = func(msg string) { logger.Warn(msg) }
		}

		warn(fmt.Sprintf("format assertions have no effect on CUE schema %s", src.Ref))
	}

	validator, err := schema.Compile(src.Name, src.Data, schema.Options{
		All:          opts.All,
		AssertFormat: opts.AssertFormat,
		Fs:           fsys,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", opts.SchemaRef, err)
	}

	logger.Debug("loading config", "path", opts.ConfigPath)

	doc, err := document.NewLoader(fsys).Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", opts.ConfigPath, err)
	}

	logger.Debug("validating", "config", opts.ConfigPath, "schema", src.Ref)

	result := &Result{Config: opts.ConfigPath, Schema: src.Ref, Valid: true}

	var violationErr *schema.ValidationError

	if err := validator.Validate(doc); err != nil {
		if !errors.As(err, &violationErr) {
			return nil, fmt.Errorf("validating %s: %w", opts.ConfigPath, err)
		}

		result.Valid = false
		result.Violations = violationErr.Violations
	}

	if err := renderResult(opts.Writer, opts.OutputFormat, result); err != nil {
		return result, err
	}

	if violationErr != nil {
		return result, violationErr
	}

	return result, nil
}

func renderResult(w io.Writer, format string, result *Result) error {
	if w == nil {
		return nil
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	default:
		return renderText(w, result)
	}
}

// renderText prints nothing for a conforming document.
func renderText(w io.Writer, result *Result) error {
	if result.Valid {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "PATH\tKEYWORD\tREASON"); err != nil {
		return err
	}

	for i := range result.Violations {
		v := &result.Violations[i]
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Path, v.Keyword, v.Reason); err != nil {
			return err
		}
	}

	return tw.Flush()
}
