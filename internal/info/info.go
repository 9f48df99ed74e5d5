// Package info displays a summary of a resolved schema.
package info

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/cfgcheck/cfgcheck/internal/document"
	"github.com/cfgcheck/cfgcheck/internal/source"
)

// Opts configures the info command.
type Opts struct {
	// Source is the resolved schema.
	Source *source.Source
	// Writer is the output destination.
	Writer io.Writer
	// OutputFormat is "text", "json", or "yaml".
	OutputFormat string
}

// Run displays schema information. CUE schemas are printed as written.
func Run(opts *Opts) error {
	if strings.HasSuffix(opts.Source.Name, ".cue") {
		_, err := opts.Writer.Write(opts.Source.Data)

		return err
	}

	doc, err := document.Parse(opts.Source.Name, opts.Source.Data)
	if err != nil {
		return err
	}

	switch opts.OutputFormat {
	case "json":
		enc := json.NewEncoder(opts.Writer)
		enc.SetIndent("", "  ")

		return enc.Encode(doc)
	case "yaml":
		data, err := document.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", opts.Source.Ref, err)
		}

		_, err = opts.Writer.Write(data)

		return err
	default:
		return renderText(opts.Writer, opts.Source, doc)
	}
}

func renderText(w io.Writer, src *source.Source, doc any) error {
	root, _ := doc.(map[string]any)

	if err := renderHeader(w, src, root); err != nil {
		return err
	}

	return renderSections(w, root)
}

func renderHeader(w io.Writer, src *source.Source, root map[string]any) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "Schema:\t%s\n", src.Ref); err != nil {
		return err
	}

	if src.Name != src.Ref {
		if _, err := fmt.Fprintf(tw, "Location:\t%s\n", src.Name); err != nil {
			return err
		}
	}

	for _, field := range []struct{ label, key string }{
		{"Title", "title"},
		{"Description", "description"},
		{"Dialect", "$schema"},
	} {
		if s, ok := root[field.key].(string); ok && s != "" {
			if _, err := fmt.Fprintf(tw, "%s:\t%s\n", field.label, s); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

func renderSections(w io.Writer, root map[string]any) error {
	if props, ok := root["properties"].(map[string]any); ok && len(props) > 0 {
		if _, err := fmt.Fprintln(w, "\nProperties:"); err != nil {
			return err
		}

		if err := renderProperties(w, props, requiredSet(root)); err != nil {
			return err
		}
	}

	if defs, ok := root["$defs"].(map[string]any); ok && len(defs) > 0 {
		if _, err := fmt.Fprintln(w, "\nDefinitions:"); err != nil {
			return err
		}

		for _, name := range sortedKeys(defs) {
			if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
				return err
			}
		}
	}

	return nil
}

func renderProperties(w io.Writer, props map[string]any, required map[string]bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "  NAME\tTYPE\tREQUIRED"); err != nil {
		return err
	}

	for _, name := range sortedKeys(props) {
		req := ""
		if required[name] {
			req = "yes"
		}

		if _, err := fmt.Fprintf(tw, "  %s\t%s\t%s\n", name, typeOf(props[name]), req); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// typeOf summarizes a property schema: its declared type, or the $ref it
// points to.
func typeOf(prop any) string {
	m, ok := prop.(map[string]any)
	if !ok {
		return ""
	}

	switch t := m["type"].(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}

		return strings.Join(parts, "|")
	}

	if ref, ok := m["$ref"].(string); ok {
		return ref
	}

	return ""
}

func requiredSet(root map[string]any) map[string]bool {
	set := make(map[string]bool)

	list, _ := root["required"].([]any)
	for _, name := range list {
		if s, ok := name.(string); ok {
			set[s] = true
		}
	}

	return set
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
