// Package initcmd implements the cfgcheck init command for writing a starter
// config file and registering schema aliases in it.
package initcmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cfgcheck/cfgcheck/internal/config"
)

// Opts configures the init operation.
type Opts struct {
	// Path is the config file to write. Empty means config.DefaultConfigPath().
	Path string
	// DefaultSchema is written as default_schema in a new file.
	DefaultSchema string
	// Alias, when set, is added to the file instead of creating a new one.
	// The file is created if it does not exist yet.
	Alias *config.SchemaAlias
}

const configTemplate = `# cfgcheck configuration.

# Schema used when --schema is not given.
default_schema: "%s"

# Output format: text or json.
output: text

# Report every violation instead of stopping at the first.
all_violations: false

# Treat JSON Schema "format" as an assertion.
assert_format: false

# Remote schemas that --schema accepts by name.
schemas: []
`

// Run executes the init workflow and returns the path it wrote.
func Run(opts *Opts) (string, error) {
	path := opts.Path
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if opts.Alias != nil {
		return path, addAlias(path, opts.Alias)
	}

	return path, initConfig(path, opts.DefaultSchema)
}

func initConfig(path, defaultSchema string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}

	content := fmt.Sprintf(configTemplate, defaultSchema)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

func addAlias(path string, alias *config.SchemaAlias) error {
	cfg, err := config.LoadGlobalConfig(path)
	if err != nil {
		return err
	}

	if _, ok := cfg.FindSchema(alias.Name); ok {
		return fmt.Errorf("schema alias %q already exists in %s", alias.Name, path)
	}

	cfg.Schemas = append(cfg.Schemas, *alias)

	if err := config.ValidateGlobalConfig(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}

	return os.WriteFile(path, data, 0o644)
}

// ErrBadAlias is returned by ParseAlias for malformed input.
var ErrBadAlias = errors.New("alias must be name=url or name=url@ref")

// ParseAlias parses "boards=github.com/acme/lab//boards.yaml@v1.0.0".
func ParseAlias(s string) (*config.SchemaAlias, error) {
	name, rest, ok := strings.Cut(s, "=")
	if !ok || name == "" || rest == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadAlias, s)
	}

	alias := &config.SchemaAlias{Name: name, URL: rest}

	// An @ after the last slash pins a ref; earlier ones belong to the URL
	// (for example git@github.com:...).
	if at := strings.LastIndexByte(rest, '@'); at > strings.LastIndexByte(rest, '/') && at > 0 {
		alias.URL, alias.Ref = rest[:at], rest[at+1:]
	}

	return alias, nil
}
