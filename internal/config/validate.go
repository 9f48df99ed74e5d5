package config

import (
	"fmt"
	"regexp"
	"strings"
)

// validOutputFormats are the allowed values for the output setting.
var validOutputFormats = map[string]bool{
	"":     true,
	"text": true,
	"json": true,
}

var sha256Hex = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// ValidateGlobalConfig checks a GlobalConfig for required fields and valid values.
func ValidateGlobalConfig(cfg *GlobalConfig) error {
	if !validOutputFormats[cfg.Output] {
		return fmt.Errorf("invalid output %q, must be one of: text, json", cfg.Output)
	}

	seen := make(map[string]bool, len(cfg.Schemas))

	for i, s := range cfg.Schemas {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("schemas[%d]: name is required", i)
		}

		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("schemas[%d] (%s): url is required", i, s.Name)
		}

		if strings.ContainsAny(s.Name, ":@") {
			return fmt.Errorf("schemas[%d] (%s): name must not contain \":\" or \"@\"", i, s.Name)
		}

		if s.Checksum != "" && !sha256Hex.MatchString(s.Checksum) {
			return fmt.Errorf("schemas[%d] (%s): checksum must be 64 hex digits of a SHA-256", i, s.Name)
		}

		if seen[s.Name] {
			return fmt.Errorf("schemas[%d] (%s): duplicate name", i, s.Name)
		}

		seen[s.Name] = true
	}

	return nil
}
