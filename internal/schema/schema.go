// Package schema checks document trees against JSON Schema or CUE schemas.
package schema

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// Validator checks a document tree. Validate returns nil when the document
// conforms and a *ValidationError otherwise.
type Validator interface {
	Validate(doc any) error
}

// Options configures schema compilation.
type Options struct {
	// All collects every violation instead of stopping at the first.
	All bool

	// AssertFormat makes the JSON Schema "format" keyword an assertion.
	AssertFormat bool

	// Fs resolves relative $ref targets. Defaults to the OS filesystem.
	Fs afero.Fs

	Logger *slog.Logger
}

// IsCUE reports whether a schema named name is compiled with the CUE engine.
func IsCUE(name string) bool {
	return strings.HasSuffix(name, ".cue")
}

// Compile builds a Validator from schema source text. name identifies the
// schema: a ".cue" suffix selects the CUE engine, anything else is parsed as
// a YAML or JSON document and compiled as JSON Schema. For JSON Schema, name
// is also the base location for relative $ref resolution.
func Compile(name string, data []byte, opts Options) (Validator, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if IsCUE(name) {
		opts.Logger.Debug("compiling CUE schema", "name", name)

		return compileCUE(name, data, opts)
	}

	opts.Logger.Debug("compiling JSON schema", "name", name)

	return compileJSONSchema(name, data, opts)
}

// CompileError reports a schema that could not be compiled.
type CompileError struct {
	Name string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling schema %s: %v", e.Name, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Path locates a value inside a document as a sequence of mapping keys and
// sequence indices.
type Path []string

// Pointer renders p as a JSON pointer. The root is the empty string.
func (p Path) Pointer() string {
	if len(p) == 0 {
		return ""
	}

	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		seg = strings.ReplaceAll(seg, "~", "~0")
		b.WriteString(strings.ReplaceAll(seg, "/", "~1"))
	}

	return b.String()
}

func (p Path) String() string {
	if len(p) == 0 {
		return "(root)"
	}

	return p.Pointer()
}

// MarshalText encodes p as a JSON pointer.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.Pointer()), nil
}

// Child returns a new path extended by seg.
func (p Path) Child(seg string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)

	return append(out, seg)
}

// Violation is a single point where a document does not satisfy its schema.
type Violation struct {
	Path    Path   `json:"path"`
	Keyword string `json:"keyword,omitempty"`
	Reason  string `json:"reason"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Reason)
}

// ValidationError lists the violations found in a document, ordered by path.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "schema violation at " + e.Violations[0].String()
	}

	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		lines = append(lines, "- "+v.String())
	}

	return fmt.Sprintf("%d schema violations:\n%s", len(e.Violations), strings.Join(lines, "\n"))
}

// finish orders violations and applies the fail-fast policy.
func finish(vs []Violation, all bool) error {
	if len(vs) == 0 {
		return nil
	}

	sort.SliceStable(vs, func(i, j int) bool {
		return lessPath(vs[i].Path, vs[j].Path)
	})

	if !all {
		vs = vs[:1]
	}

	return &ValidationError{Violations: vs}
}

func lessPath(a, b Path) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}

		ai, aErr := strconv.Atoi(a[i])
		bi, bErr := strconv.Atoi(b[i])

		if aErr == nil && bErr == nil {
			return ai < bi
		}

		return a[i] < b[i]
	}

	return len(a) < len(b)
}
