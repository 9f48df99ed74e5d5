// Package document parses YAML and JSON text into plain Go trees.
//
// A parsed document is built only from nil, bool, json.Number, string,
// []any and map[string]any. Numbers keep the digits written in the source
// (integers are normalised to base 10), so a document survives a
// Marshal/Parse round trip without losing precision.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is matched by errors.Is when a document file does not exist.
var ErrNotFound = fs.ErrNotExist

// maxNodes bounds the number of nodes produced while expanding aliases.
const maxNodes = 1 << 20

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

// ParseError reports malformed input.
type ParseError struct {
	Name string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	msg := strings.TrimPrefix(e.Err.Error(), "yaml: ")
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, msg)
	}

	return fmt.Sprintf("%s: %s", e.Name, msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DuplicateKeyError reports a key that appears twice in the same mapping.
type DuplicateKeyError struct {
	Name      string
	Key       string
	Path      []string
	Line      int
	FirstLine int
}

func (e *DuplicateKeyError) Error() string {
	at := "/" + strings.Join(e.Path, "/")

	return fmt.Sprintf("%s:%d: duplicate key %q in mapping at %s (first defined at line %d)",
		e.Name, e.Line, e.Key, at, e.FirstLine)
}

// Parse decodes a single YAML (or JSON) document. Empty input yields a nil
// document. name is only used in error messages.
func Parse(name string, data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, &ParseError{Name: name, Err: err}
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, &ParseError{Name: name, Err: err}
		}

		return nil, &ParseError{Name: name, Line: extra.Line, Err: errors.New("expected a single document in the stream")}
	}

	d := &decoder{name: name, budget: maxNodes}

	return d.node(&root, nil)
}

type decoder struct {
	name   string
	budget int
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return &ParseError{Name: d.name, Line: n.Line, Err: fmt.Errorf(format, args...)}
}

func (d *decoder) node(n *yaml.Node, path []string) (any, error) {
	d.budget--
	if d.budget < 0 {
		return nil, d.errorf(n, "document exceeds %d nodes after alias expansion", maxNodes)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}

		return d.node(n.Content[0], path)
	case yaml.AliasNode:
		return d.node(n.Alias, path)
	case yaml.ScalarNode:
		return d.scalar(n)
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := d.node(c, append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}

			items = append(items, v)
		}

		return items, nil
	case yaml.MappingNode:
		return d.mapping(n, path)
	default:
		return nil, d.errorf(n, "unexpected node kind %d", n.Kind)
	}
}

func (d *decoder) mapping(n *yaml.Node, path []string) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	lines := make(map[string]int, len(n.Content)/2)
	owners := make(map[string]*yaml.Node, len(n.Content)/2)

	var merges []*yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			merges = append(merges, v)

			continue
		}

		key, id, err := d.key(k)
		if err != nil {
			return nil, err
		}

		if first, dup := lines[id]; dup {
			return nil, &DuplicateKeyError{
				Name:      d.name,
				Key:       key,
				Path:      append([]string(nil), path...),
				Line:      k.Line,
				FirstLine: first,
			}
		}

		// Distinct keys such as 1 and "1" still share one property name.
		if prev, taken := owners[key]; taken {
			return nil, d.errorf(k, "key %s and key %s at line %d both become property %q",
				describeKey(k), describeKey(prev), prev.Line, key)
		}

		lines[id] = k.Line
		owners[key] = k

		val, err := d.node(v, append(path, key))
		if err != nil {
			return nil, err
		}

		out[key] = val
	}

	// Explicit keys win over merged ones; among merges the first wins.
	for _, m := range merges {
		if err := d.merge(out, m, path); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (d *decoder) merge(out map[string]any, m *yaml.Node, path []string) error {
	for m.Kind == yaml.AliasNode {
		m = m.Alias
	}

	var sources []*yaml.Node

	switch m.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{m}
	case yaml.SequenceNode:
		sources = m.Content
	default:
		return d.errorf(m, "merge value must be a mapping or a sequence of mappings")
	}

	for _, src := range sources {
		for src.Kind == yaml.AliasNode {
			src = src.Alias
		}

		if src.Kind != yaml.MappingNode {
			return d.errorf(src, "merge value must be a mapping or a sequence of mappings")
		}

		merged, err := d.mapping(src, path)
		if err != nil {
			return err
		}

		for k, v := range merged {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}

	return nil
}

// key returns the property name a mapping key is stored under and the
// identity of its resolved value. Keys with equal identities are duplicates:
// ~ and null, 16 and 0x10, 1 and 1.0, true and True.
func (d *decoder) key(k *yaml.Node) (name, id string, err error) {
	for k.Kind == yaml.AliasNode {
		k = k.Alias
	}

	if k.Kind != yaml.ScalarNode {
		return "", "", d.errorf(k, "mapping keys must be scalars")
	}

	v, err := d.scalar(k)
	if err != nil {
		return "", "", err
	}

	switch v := v.(type) {
	case nil:
		id = "null"
	case bool:
		id = "bool:" + strconv.FormatBool(v)
	case json.Number:
		id = "num:" + numberID(v)
	default:
		id = k.ShortTag() + ":" + k.Value
	}

	return k.Value, id, nil
}

// numberID is a canonical spelling of n, equal for numerically equal values.
func numberID(n json.Number) string {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		return s
	}

	f, _, err := big.ParseFloat(s, 10, 256, big.ToNearestEven)
	if err != nil {
		return s
	}

	if f.IsInt() && f.MantExp(nil) <= 1024 {
		i, _ := f.Int(nil)

		return i.String()
	}

	return f.Text('g', 77)
}

func describeKey(k *yaml.Node) string {
	for k.Kind == yaml.AliasNode {
		k = k.Alias
	}

	if k.ShortTag() == "!!str" {
		return strconv.Quote(k.Value)
	}

	return k.Value
}

func (d *decoder) scalar(n *yaml.Node) (any, error) {
	switch tag := n.ShortTag(); tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, d.errorf(n, "invalid boolean %q", n.Value)
		}

		return b, nil
	case "!!int":
		return d.integer(n)
	case "!!float":
		return d.float(n)
	case "!!str", "!!timestamp", "!!binary":
		return n.Value, nil
	default:
		return nil, d.errorf(n, "unsupported tag %s", tag)
	}
}

func (d *decoder) integer(n *yaml.Node) (any, error) {
	v := strings.ReplaceAll(n.Value, "_", "")

	i, ok := new(big.Int).SetString(v, 0)
	if !ok {
		return nil, d.errorf(n, "invalid integer %q", n.Value)
	}

	return json.Number(i.String()), nil
}

func (d *decoder) float(n *yaml.Node) (any, error) {
	v := strings.ReplaceAll(n.Value, "_", "")
	v = strings.TrimPrefix(v, "+")

	switch strings.ToLower(strings.TrimLeft(v, "-")) {
	case ".inf", ".nan":
		return nil, d.errorf(n, "non-finite number %q cannot be represented", n.Value)
	}

	// YAML allows ".5" and "1." which JSON does not.
	neg := strings.HasPrefix(v, "-")
	digits := strings.TrimPrefix(v, "-")

	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}

	if mant, exp, found := strings.Cut(digits, "e"); found {
		digits = strings.TrimSuffix(mant, ".") + "e" + exp
	} else if mant, exp, found := strings.Cut(digits, "E"); found {
		digits = strings.TrimSuffix(mant, ".") + "E" + exp
	} else {
		digits = strings.TrimSuffix(digits, ".")
	}

	if neg {
		digits = "-" + digits
	}

	if jsonNumber.MatchString(digits) {
		return json.Number(digits), nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, d.errorf(n, "invalid float %q", n.Value)
	}

	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}
