package dsl

import (
	"context"
	"encoding/json"
	"fmt"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// Literal declares a schema accepting exactly one value. Numeric inputs are
// compared loosely (json.Number, float64 and ints representing the same value
// all match), so a Literal(int64(3)) accepts a JSON 3.
func Literal[T comparable](want T) kata.Schema[T] {
	return &literalSchema[T]{want: want}
}

type literalSchema[T comparable] struct {
	want T
}

func (l *literalSchema[T]) match(v any) (T, bool) {
	if t, ok := v.(T); ok && t == l.want {
		return t, true
	}
	// loose numeric match
	if fv, ok := toFloat(v); ok {
		if fw, ok2 := toFloat(l.want); ok2 && fv == fw {
			return l.want, true
		}
	}
	var zero T
	return zero, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func (l *literalSchema[T]) issue(v any) kata.Issues {
	return kata.Issues{{Path: "/", Code: kata.CodeInvalidLiteral,
		Message: fmt.Sprintf("expected literal %v", l.want),
		Params:  map[string]any{"expected": l.want, "got": v}}}
}

func (l *literalSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	t, ok := l.match(v)
	if !ok {
		var zero T
		return zero, l.issue(v)
	}
	return t, nil
}

func (l *literalSchema[T]) ParseWithMeta(ctx context.Context, v any) (kata.Decoded[T], error) {
	t, err := l.Parse(ctx, v)
	if err != nil {
		return kata.Decoded[T]{}, err
	}
	return kata.Decoded[T]{Value: t, Presence: kata.PresenceMap{"/": kata.PresenceSeen}}, nil
}

func (l *literalSchema[T]) TypeCheck(ctx context.Context, v any) error {
	if _, ok := l.match(v); !ok {
		return l.issue(v)
	}
	return nil
}

func (l *literalSchema[T]) RuleCheck(ctx context.Context, v any) error { return nil }

func (l *literalSchema[T]) Validate(ctx context.Context, v any) error { return l.TypeCheck(ctx, v) }

func (l *literalSchema[T]) ValidateValue(ctx context.Context, v T) error {
	if v != l.want {
		return l.issue(v)
	}
	return nil
}

func (l *literalSchema[T]) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Const: l.want}, nil
}
