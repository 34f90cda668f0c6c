// Package yaml adapts YAML documents into kata Sources. The document is
// decoded with gopkg.in/yaml.v3, normalized into a JSON-compatible value tree
// (string keys, json-safe scalars), and tokenized as an in-memory value source.
package yaml

import (
	"fmt"
	"io"

	yamlv3 "gopkg.in/yaml.v3"

	kata "github.com/kataform/kata"
)

// Bytes decodes a YAML document held in memory into a Source.
func Bytes(b []byte) (kata.Source, error) {
	var doc any
	if err := yamlv3.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	n, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	return kata.ValueSource(n), nil
}

// Reader decodes the first YAML document from r into a Source.
func Reader(r io.Reader) (kata.Source, error) {
	var doc any
	if err := yamlv3.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return kata.ValueSource(nil), nil
		}
		return nil, fmt.Errorf("yaml: %w", err)
	}
	n, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	return kata.ValueSource(n), nil
}

// normalize converts yaml.v3 output into the map[string]any / []any / scalar
// shape the engine expects. Non-string map keys are stringified when they are
// simple scalars and rejected otherwise.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			nv, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, err := keyString(k)
			if err != nil {
				return nil, err
			}
			nv, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[ks] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			nv, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}

func keyString(k any) (string, error) {
	switch t := k.(type) {
	case string:
		return t, nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case int, int64, uint64, float64:
		return fmt.Sprint(t), nil
	case nil:
		return "", fmt.Errorf("yaml: null map key is not supported")
	default:
		return "", fmt.Errorf("yaml: unsupported map key type %T", k)
	}
}
