package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfgcheck/cfgcheck/internal/config"
)

func TestValidateGlobalConfig_Valid(t *testing.T) {
	t.Parallel()

	cfg := &config.GlobalConfig{
		Output: "text",
		Schemas: []config.SchemaAlias{
			{Name: "boards", URL: "github.com/acme/lab//boards.yaml", Checksum: strings.Repeat("ab", 32)},
		},
	}
	require.NoError(t, config.ValidateGlobalConfig(cfg))
}

func TestValidateGlobalConfig_Empty(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.ValidateGlobalConfig(&config.GlobalConfig{}))
}

func TestValidateGlobalConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      config.GlobalConfig
		contains string
	}{
		{
			name:     "output",
			cfg:      config.GlobalConfig{Output: "xml"},
			contains: "invalid output",
		},
		{
			name:     "missing alias name",
			cfg:      config.GlobalConfig{Schemas: []config.SchemaAlias{{URL: "https://example.com/s.yaml"}}},
			contains: "name is required",
		},
		{
			name:     "missing alias url",
			cfg:      config.GlobalConfig{Schemas: []config.SchemaAlias{{Name: "boards"}}},
			contains: "url is required",
		},
		{
			name:     "colon in alias name",
			cfg:      config.GlobalConfig{Schemas: []config.SchemaAlias{{Name: "builtin:x", URL: "u"}}},
			contains: "must not contain",
		},
		{
			name:     "at sign in alias name",
			cfg:      config.GlobalConfig{Schemas: []config.SchemaAlias{{Name: "boards@v1", URL: "u"}}},
			contains: "must not contain",
		},
		{
			name:     "short checksum",
			cfg:      config.GlobalConfig{Schemas: []config.SchemaAlias{{Name: "boards", URL: "u", Checksum: "abc123"}}},
			contains: "checksum must be 64 hex digits",
		},
		{
			name: "duplicate alias",
			cfg: config.GlobalConfig{Schemas: []config.SchemaAlias{
				{Name: "boards", URL: "a"},
				{Name: "boards", URL: "b"},
			}},
			contains: "duplicate name",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := config.ValidateGlobalConfig(&tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
