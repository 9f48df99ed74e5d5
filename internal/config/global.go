// Package config loads the user's cfgcheck configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents the user's cfgcheck configuration file.
type GlobalConfig struct {
	DefaultSchema string        `yaml:"default_schema"`
	Output        string        `yaml:"output"`
	AllViolations bool          `yaml:"all_violations"`
	AssertFormat  bool          `yaml:"assert_format"`
	CacheDir      string        `yaml:"cache_dir"`
	Schemas       []SchemaAlias `yaml:"schemas"`
}

// SchemaAlias names a remote schema so it can be passed to --schema by name.
type SchemaAlias struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Ref  string `yaml:"ref"`
	// Checksum is the hex SHA-256 of the schema file at Ref.
	Checksum string `yaml:"checksum,omitempty"`
}

// DefaultConfigDir returns the default configuration directory, respecting XDG_CONFIG_HOME.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cfgcheck")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "cfgcheck")
	}

	return filepath.Join(home, ".config", "cfgcheck")
}

// DefaultConfigPath returns the path of config.yaml in DefaultConfigDir.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LoadGlobalConfig reads the global config from the given path.
// If the file doesn't exist, it returns a zero-value config (no error).
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}

		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := ValidateGlobalConfig(&cfg); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return &cfg, nil
}

// FindSchema looks up a schema alias by name.
func (c *GlobalConfig) FindSchema(name string) (*SchemaAlias, bool) {
	for i := range c.Schemas {
		if c.Schemas[i].Name == name {
			return &c.Schemas[i], true
		}
	}

	return nil, false
}
