package document

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Encode converts a document tree into a YAML node. Mapping keys are sorted
// and numbers are emitted with their original digits.
func Encode(doc any) (*yaml.Node, error) {
	switch v := doc.(type) {
	case nil:
		return scalarNode("!!null", "null"), nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(v)), nil
	case json.Number:
		if strings.ContainsAny(string(v), ".eE") {
			return scalarNode("!!float", string(v)), nil
		}

		return scalarNode("!!int", string(v)), nil
	case int:
		return scalarNode("!!int", strconv.Itoa(v)), nil
	case int64:
		return scalarNode("!!int", strconv.FormatInt(v, 10)), nil
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("cannot encode non-finite number %v", v)
		}

		return scalarNode("!!float", strconv.FormatFloat(v, 'g', -1, 64)), nil
	case string:
		return scalarNode("!!str", v), nil
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range v {
			n, err := Encode(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}

			seq.Content = append(seq.Content, n)
		}

		return seq, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			n, err := Encode(v[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}

			m.Content = append(m.Content, scalarNode("!!str", k), n)
		}

		return m, nil
	default:
		return nil, fmt.Errorf("cannot encode value of type %T", doc)
	}
}

// Marshal serialises a document tree as YAML.
func Marshal(doc any) ([]byte, error) {
	n, err := Encode(doc)
	if err != nil {
		return nil, err
	}

	return yaml.Marshal(n)
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
