package dsl

import (
	"context"
	"fmt"
	"strings"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// Enum declares a string schema restricted to the given member set. An empty
// member set is a malformed combinator call and panics at construction time.
func Enum(values ...string) kata.Schema[string] {
	if len(values) == 0 {
		panic("dsl.Enum: at least one value is required")
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return &enumSchema{values: append([]string(nil), values...), set: set}
}

type enumSchema struct {
	values []string
	set    map[string]struct{}
}

func (e *enumSchema) issue(v any) kata.Issues {
	return kata.Issues{{Path: "/", Code: kata.CodeInvalidEnum,
		Message: fmt.Sprintf("expected one of [%s]", strings.Join(e.values, ", ")),
		Params:  map[string]any{"values": e.values, "got": v}}}
}

func (e *enumSchema) Parse(ctx context.Context, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
			Message: fmt.Sprintf("expected string, got %s", typeNameOf(v)),
			Params:  map[string]any{"expected": "string", "got": typeNameOf(v)}}}
	}
	if _, ok := e.set[s]; !ok {
		return "", e.issue(s)
	}
	return s, nil
}

func (e *enumSchema) ParseWithMeta(ctx context.Context, v any) (kata.Decoded[string], error) {
	s, err := e.Parse(ctx, v)
	if err != nil {
		return kata.Decoded[string]{}, err
	}
	return kata.Decoded[string]{Value: s, Presence: kata.PresenceMap{"/": kata.PresenceSeen}}, nil
}

func (e *enumSchema) TypeCheck(ctx context.Context, v any) error {
	if _, ok := v.(string); !ok {
		return kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
			Message: fmt.Sprintf("expected string, got %s", typeNameOf(v))}}
	}
	return nil
}

func (e *enumSchema) RuleCheck(ctx context.Context, v any) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return e.ValidateValue(ctx, s)
}

func (e *enumSchema) Validate(ctx context.Context, v any) error {
	if err := e.TypeCheck(ctx, v); err != nil {
		return err
	}
	return e.RuleCheck(ctx, v)
}

func (e *enumSchema) ValidateValue(ctx context.Context, v string) error {
	if _, ok := e.set[v]; !ok {
		return e.issue(v)
	}
	return nil
}

func (e *enumSchema) JSONSchema() (*js.Schema, error) {
	vals := make([]any, 0, len(e.values))
	for _, v := range e.values {
		vals = append(vals, v)
	}
	return &js.Schema{Type: "string", Enum: vals}, nil
}
