package dsl

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// RecordOf declares a string-keyed map schema with every value validated by
// elem. Keys are visited in sorted order so issue ordering is deterministic.
func RecordOf[V any](elem kata.Schema[V]) kata.Schema[map[string]V] {
	return recordSchema[V](nil, elem)
}

// Record is the untyped convenience form of RecordOf.
func Record(elem AnyAdaptable) kata.Schema[map[string]any] {
	return RecordOf[any](SchemaOf(elem))
}

// MapOf is RecordOf with the keys additionally validated by a string schema.
func MapOf[V any](key kata.Schema[string], elem kata.Schema[V]) kata.Schema[map[string]V] {
	return recordSchema[V](key, elem)
}

// Map is the untyped convenience form of MapOf.
func Map(key AnyAdaptable, elem AnyAdaptable) kata.Schema[map[string]any] {
	ks := &keyAdapterSchema{ad: key.AnyAdapter()}
	return recordSchema[any](ks, SchemaOf(elem))
}

// keyAdapterSchema narrows an adapter to the string-keyed view MapOf needs.
type keyAdapterSchema struct {
	ad AnyAdapter
}

func (k *keyAdapterSchema) Parse(ctx context.Context, v any) (string, error) {
	out, err := k.ad.Parse(ctx, v)
	if err != nil {
		return "", err
	}
	s, ok := out.(string)
	if !ok {
		return "", kata.Issues{{Path: "/", Code: kata.CodeInvalidType, Message: "key schema must produce a string"}}
	}
	return s, nil
}

func (k *keyAdapterSchema) ParseWithMeta(ctx context.Context, v any) (kata.Decoded[string], error) {
	s, err := k.Parse(ctx, v)
	if err != nil {
		return kata.Decoded[string]{}, err
	}
	return kata.Decoded[string]{Value: s, Presence: kata.PresenceMap{"/": kata.PresenceSeen}}, nil
}

func (k *keyAdapterSchema) TypeCheck(ctx context.Context, v any) error { return k.ad.typeCheck(ctx, v) }
func (k *keyAdapterSchema) RuleCheck(ctx context.Context, v any) error { return k.ad.ruleCheck(ctx, v) }
func (k *keyAdapterSchema) Validate(ctx context.Context, v any) error  { return k.ad.Validate(ctx, v) }
func (k *keyAdapterSchema) ValidateValue(ctx context.Context, v string) error {
	return k.ad.Validate(ctx, v)
}
func (k *keyAdapterSchema) JSONSchema() (*js.Schema, error) { return k.ad.JSONSchema() }

func recordSchema[V any](key kata.Schema[string], elem kata.Schema[V]) kata.Schema[map[string]V] {
	parse := func(ctx context.Context, v any) (map[string]V, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
				Message: fmt.Sprintf("expected object, got %s", typeNameOf(v)),
				Params:  map[string]any{"expected": "object", "got": typeNameOf(v)}}}
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]V, len(m))
		var iss kata.Issues
		for _, k := range keys {
			if key != nil {
				if _, err := key.Parse(ctx, k); err != nil {
					iss = append(iss, kata.PrefixIssues("/"+ptrToken(k), err)...)
					if kata.IsFailFast(ctx) {
						return nil, iss
					}
					continue
				}
			}
			ev, err := elem.Parse(ctx, m[k])
			if err != nil {
				iss = append(iss, kata.PrefixIssues("/"+ptrToken(k), err)...)
				if kata.IsFailFast(ctx) {
					return nil, iss
				}
				continue
			}
			out[k] = ev
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}

	return &compositeSchema[map[string]V]{
		parse: parse,
		js: func() (*js.Schema, error) {
			es, err := elem.JSONSchema()
			if err != nil {
				return nil, err
			}
			return &js.Schema{Type: "object", AdditionalProperties: es}, nil
		},
		async: schemaIsAsync(elem) || (key != nil && schemaIsAsync(key)),
	}
}

// SetOf declares a set decoded from array input: elements validate against
// elem and duplicates collapse silently, keeping first-occurrence order.
// Use rules.UniqueBy to reject duplicates instead of collapsing them.
func SetOf[E comparable](elem kata.Schema[E]) kata.Schema[[]E] {
	return &compositeSchema[[]E]{
		parse: func(ctx context.Context, v any) ([]E, error) {
			arr, ok := v.([]any)
			if !ok {
				return nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
					Message: fmt.Sprintf("expected array, got %s", typeNameOf(v))}}
			}
			seen := make(map[E]struct{}, len(arr))
			out := make([]E, 0, len(arr))
			var iss kata.Issues
			for i, el := range arr {
				ev, err := elem.Parse(ctx, el)
				if err != nil {
					iss = append(iss, kata.PrefixIssues("/"+strconv.Itoa(i), err)...)
					if kata.IsFailFast(ctx) {
						return nil, iss
					}
					continue
				}
				if _, dup := seen[ev]; dup {
					continue
				}
				seen[ev] = struct{}{}
				out = append(out, ev)
			}
			if len(iss) > 0 {
				return nil, iss
			}
			return out, nil
		},
		js: func() (*js.Schema, error) {
			es, err := elem.JSONSchema()
			if err != nil {
				return nil, err
			}
			return &js.Schema{Type: "array", Items: es, UniqueItems: true}, nil
		},
		async: schemaIsAsync(elem),
	}
}
