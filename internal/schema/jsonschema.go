package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cfgcheck/cfgcheck/internal/document"
)

type jsonSchema struct {
	schema  *jsonschema.Schema
	all     bool
	printer *message.Printer
}

func compileJSONSchema(name string, data []byte, opts Options) (*jsonSchema, error) {
	tree, err := document.Parse(name, data)
	if err != nil {
		return nil, err
	}

	loader := document.NewLoader(opts.Fs)

	c := jsonschema.NewCompiler()
	c.UseLoader(jsonschema.SchemeURLLoader{
		"file": &refLoader{loader: loader, logger: opts.Logger},
	})

	if opts.AssertFormat {
		c.AssertFormat()
	}

	loc := resourceLocation(name)

	if err := c.AddResource(loc, tree); err != nil {
		return nil, &CompileError{Name: name, Err: err}
	}

	sch, err := c.Compile(loc)
	if err != nil {
		return nil, &CompileError{Name: name, Err: err}
	}

	return &jsonSchema{
		schema:  sch,
		all:     opts.All,
		printer: message.NewPrinter(language.English),
	}, nil
}

// resourceLocation turns a schema name into the URL the compiler registers
// it under. Plain paths become absolute file URLs so relative $refs resolve
// against the schema's directory.
func resourceLocation(name string) string {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return name
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func (s *jsonSchema) Validate(doc any) error {
	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validating document: %w", err)
	}

	return finish(s.violations(ve), s.all)
}

// violations flattens the engine's error tree into its leaves.
func (s *jsonSchema) violations(ve *jsonschema.ValidationError) []Violation {
	if len(ve.Causes) > 0 {
		var out []Violation
		for _, cause := range ve.Causes {
			out = append(out, s.violations(cause)...)
		}

		return out
	}

	path := Path(append([]string(nil), ve.InstanceLocation...))
	keyword := strings.Join(ve.ErrorKind.KeywordPath(), "/")

	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		out := make([]Violation, 0, len(k.Missing))
		for _, name := range k.Missing {
			out = append(out, Violation{
				Path:    path.Child(name),
				Keyword: keyword,
				Reason:  fmt.Sprintf("missing required property %q", name),
			})
		}

		return out
	case *kind.AdditionalProperties:
		out := make([]Violation, 0, len(k.Properties))
		for _, name := range k.Properties {
			out = append(out, Violation{
				Path:    path.Child(name),
				Keyword: keyword,
				Reason:  fmt.Sprintf("additional property %q is not allowed", name),
			})
		}

		return out
	}

	return []Violation{{
		Path:    path,
		Keyword: keyword,
		Reason:  ve.ErrorKind.LocalizedString(s.printer),
	}}
}

// refLoader loads $ref targets on the local filesystem as YAML or JSON.
type refLoader struct {
	loader *document.Loader
	logger *slog.Logger
}

func (l *refLoader) Load(rawURL string) (any, error) {
	path, err := jsonschema.FileLoader{}.ToFile(rawURL)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loading referenced schema", "path", path)

	return l.loader.Load(path)
}
