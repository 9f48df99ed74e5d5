package schema

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// cueSchema validates documents by unifying them with a CUE value. Fields
// the document must provide are declared as regular fields, optional ones
// with "?", and closed structs reject unknown keys.
type cueSchema struct {
	ctx    *cue.Context
	schema cue.Value
	all    bool
}

func compileCUE(name string, data []byte, opts Options) (*cueSchema, error) {
	ctx := cuecontext.New()

	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, &CompileError{Name: name, Err: err}
	}

	return &cueSchema{ctx: ctx, schema: v, all: opts.All}, nil
}

func (s *cueSchema) Validate(doc any) error {
	// JSON is valid CUE and keeps json.Number digits intact.
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	dv := s.ctx.CompileBytes(data, cue.Filename("document.json"))
	if err := dv.Err(); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	err = s.schema.Unify(dv).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	vs := make([]Violation, 0, len(errs))

	for _, e := range errs {
		format, args := e.Msg()
		vs = append(vs, Violation{
			Path:    Path(e.Path()),
			Keyword: "cue",
			Reason:  fmt.Sprintf(format, args...),
		})
	}

	if len(vs) == 0 {
		vs = append(vs, Violation{Keyword: "cue", Reason: err.Error()})
	}

	return finish(vs, s.all)
}
