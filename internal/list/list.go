// Package list implements the cfgcheck schemas command for browsing the
// schemas that --schema accepts by name.
package list

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cfgcheck/cfgcheck/internal/builtin"
	"github.com/cfgcheck/cfgcheck/internal/config"
)

// Opts configures the list operation.
type Opts struct {
	// Aliases are the schema aliases from the config file.
	Aliases []config.SchemaAlias
	// OutputFormat is "table" or "json".
	OutputFormat string
	// Writer is the output destination.
	Writer io.Writer
}

// SchemaInfo represents a named schema in list output.
type SchemaInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Source      string `json:"source"`
	Ref         string `json:"ref,omitempty"`
	Description string `json:"description,omitempty"`
}

// Run lists builtin schemas followed by configured aliases.
func Run(opts *Opts) error {
	entries, err := collect(opts.Aliases)
	if err != nil {
		return err
	}

	switch opts.OutputFormat {
	case "json":
		return renderJSON(opts.Writer, entries)
	default:
		return renderTable(opts.Writer, entries)
	}
}

func collect(aliases []config.SchemaAlias) ([]SchemaInfo, error) {
	builtins, err := builtin.List()
	if err != nil {
		return nil, fmt.Errorf("listing builtin schemas: %w", err)
	}

	infos := make([]SchemaInfo, 0, len(builtins)+len(aliases))

	for _, b := range builtins {
		infos = append(infos, SchemaInfo{
			Name:        builtin.Prefix + b.Name,
			Kind:        "builtin",
			Source:      builtin.Location(b.Name),
			Description: b.Title,
		})
	}

	for i := range aliases {
		a := &aliases[i]
		infos = append(infos, SchemaInfo{
			Name:   a.Name,
			Kind:   "alias",
			Source: a.URL,
			Ref:    a.Ref,
		})
	}

	return infos, nil
}

func renderTable(w io.Writer, entries []SchemaInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "NAME\tKIND\tREF\tDESCRIPTION"); err != nil {
		return err
	}

	for i := range entries {
		e := &entries[i]

		desc := e.Description
		if desc == "" {
			desc = e.Source
		}

		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.Ref, desc); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func renderJSON(w io.Writer, entries []SchemaInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(entries)
}
