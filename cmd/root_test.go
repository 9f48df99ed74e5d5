package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfgcheck/cfgcheck/internal/source"
)

const validBoards = `devices:
  - board: db845c
    console: /dev/ttyUSB0
    fastboot: cacafade
`

// execute runs the root command with a clean flag state and an empty
// config directory. Color follows the NO_COLOR env var. Commands share
// package state, so callers must not run in parallel.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	verbose, noColor, cfgFile = false, false, ""
	checkSchema, checkAll, checkAssertFormat, checkOutputFormat, checkRefresh = "", false, false, "", false
	schemasOutputFormat, showOutputFormat = "table", "text"
	initDefaultSchema, initAlias = "", ""

	var out, errOut bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err = Execute()

	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "usage", err: &usageError{err: errors.New("bad flag")}, want: 2},
		{name: "no schema", err: source.ErrNoSchema, want: 2},
		{name: "other", err: errors.New("boom"), want: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestCheck_Conforms(t *testing.T) {
	cfg := writeFile(t, "cdba.yaml", validBoards)

	stdout, stderr, err := execute(t, cfg, "--schema", "builtin:cdba")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestCheck_Verbose(t *testing.T) {
	cfg := writeFile(t, "cdba.yaml", validBoards)

	stdout, _, err := execute(t, cfg, "-s", "builtin:cdba", "-v")
	require.NoError(t, err)
	assert.Contains(t, stdout, "conforms to builtin:cdba")
}

func TestCheck_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	cfg := writeFile(t, "cdba.yaml", validBoards)

	stdout, _, err := execute(t, cfg, "-s", "builtin:cdba", "-v")
	require.NoError(t, err)
	assert.Contains(t, stdout, "conforms to")
	assert.NotContains(t, stdout, "\x1b[")

	_, stderr, err := execute(t, "/nonexistent/cfg.yaml", "-s", "builtin:cdba")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(stderr, "error: "), stderr)
}

func TestCheck_ColorByDefault(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	cfg := writeFile(t, "cdba.yaml", validBoards)

	stdout, _, err := execute(t, cfg, "-s", "builtin:cdba", "-v")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\x1b[")

	stdout, _, err = execute(t, cfg, "-s", "builtin:cdba", "-v", "--no-color")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "\x1b[")
}

func TestCheck_ConfigNamedLikeSubcommand(t *testing.T) {
	// A path argument is not mistaken for the version subcommand.
	cfg := writeFile(t, "version", validBoards)

	stdout, stderr, err := execute(t, cfg, "-s", "builtin:cdba")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestCheck_Violation(t *testing.T) {
	cfg := writeFile(t, "cdba.yaml", "devices:\n  - board: db845c\n    console: /dev/ttyUSB0\n")

	_, stderr, err := execute(t, cfg, "-s", "builtin:cdba")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))

	assert.Contains(t, stderr, "PATH")
	assert.Contains(t, stderr, "/devices/0/fastboot")
	assert.Contains(t, stderr, "does not conform to builtin:cdba")
}

func TestCheck_LocalSchemaAll(t *testing.T) {
	schemaPath := writeFile(t, "schema.yaml", "type: object\nrequired: [name, port]\n")
	cfg := writeFile(t, "app.yaml", "{}\n")

	_, stderr, err := execute(t, cfg, "-s", schemaPath, "--all")
	require.Error(t, err)
	assert.Contains(t, stderr, "/name")
	assert.Contains(t, stderr, "/port")
}

func TestCheck_JSONOutput(t *testing.T) {
	cfg := writeFile(t, "cdba.yaml", validBoards)

	stdout, _, err := execute(t, cfg, "-s", "builtin:cdba", "-o", "json")
	require.NoError(t, err)

	var result struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.True(t, result.Valid)
}

func TestCheck_Errors(t *testing.T) {
	dup := writeFile(t, "dup.yaml", "devices: []\ndevices: []\n")
	good := writeFile(t, "good.yaml", validBoards)

	tests := []struct {
		name     string
		args     []string
		code     int
		contains string
	}{
		{name: "no arguments", args: nil, code: 2, contains: "accepts 1 arg(s)"},
		{name: "too many arguments", args: []string{"a.yaml", "b.yaml", "-s", "builtin:cdba"}, code: 2, contains: "Usage:"},
		{name: "unknown flag", args: []string{good, "--bogus"}, code: 2, contains: "unknown flag"},
		{name: "no schema", args: []string{good}, code: 2, contains: "no schema given"},
		{name: "bad output", args: []string{good, "-s", "builtin:cdba", "-o", "xml"}, code: 2, contains: "unknown output format"},
		{name: "missing config", args: []string{"/nonexistent/cfg.yaml", "-s", "builtin:cdba"}, code: 1, contains: "loading config"},
		{name: "missing schema", args: []string{good, "-s", "/nonexistent/schema.yaml"}, code: 1, contains: "loading schema"},
		{name: "duplicate key", args: []string{dup, "-s", "builtin:cdba"}, code: 1, contains: "duplicate key \"devices\""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, ExitCode(err))
			assert.Contains(t, stderr, "error:")
			assert.Contains(t, stderr, tt.contains)
		})
	}
}

func TestCheck_ConfigDefaults(t *testing.T) {
	cfg := writeFile(t, "cdba.yaml", validBoards)

	stdout, _, err := execute(t, "--config", writeFile(t, "config.yaml", "default_schema: builtin:cdba\noutput: json\n"), cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"valid": true`)
}

func TestSchemas(t *testing.T) {
	stdout, _, err := execute(t, "schemas")
	require.NoError(t, err)
	assert.Contains(t, stdout, "builtin:cdba")
}

func TestSchemasShow(t *testing.T) {
	stdout, _, err := execute(t, "schemas", "show", "builtin:cdba")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cdba board configuration")
	assert.Contains(t, stdout, "devices")
}

func TestInitThenSchemas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	stdout, _, err := execute(t, "init", "--config", path, "--default-schema", "builtin:cdba")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+path)

	_, _, err = execute(t, "init", "--config", path, "--alias", "boards=https://example.com/boards.yaml@v1")
	require.NoError(t, err)

	stdout, _, err = execute(t, "schemas", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "boards")
	assert.Contains(t, stdout, "https://example.com/boards.yaml")

	_, _, err = execute(t, "init", "--config", path, "--alias", "nonsense")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cfgcheck dev (commit: none)\n", stdout)
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}
