// Package builtin holds the schemas embedded in the cfgcheck binary.
package builtin

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/cfgcheck/cfgcheck/internal/document"
)

// Prefix selects an embedded schema in a --schema reference, as in
// "builtin:cdba".
const Prefix = "builtin:"

//go:embed schemas/*.yaml
var schemas embed.FS

// Entry describes an embedded schema.
type Entry struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Lookup returns the source of the named schema.
func Lookup(name string) ([]byte, error) {
	data, err := schemas.ReadFile(path.Join("schemas", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown builtin schema %q (available: %s)", name, strings.Join(Names(), ", "))
	}

	return data, nil
}

// Location is the URL an embedded schema is compiled under.
func Location(name string) string {
	return "mem:///builtin/" + name + ".yaml"
}

// Names lists the embedded schemas in sorted order.
func Names() []string {
	entries, err := schemas.ReadDir("schemas")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}

	sort.Strings(names)

	return names
}

// List describes every embedded schema using its title and description.
func List() ([]Entry, error) {
	names := Names()
	out := make([]Entry, 0, len(names))

	for _, name := range names {
		data, err := Lookup(name)
		if err != nil {
			return nil, err
		}

		doc, err := document.Parse(Location(name), data)
		if err != nil {
			return nil, err
		}

		entry := Entry{Name: name}
		if m, ok := doc.(map[string]any); ok {
			entry.Title, _ = m["title"].(string)
			entry.Description, _ = m["description"].(string)
		}

		out = append(out, entry)
	}

	return out, nil
}
