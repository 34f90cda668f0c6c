package dsl

import (
	"context"
	"encoding/json"
	"fmt"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// check is one declared constraint on a primitive node. Checks are recorded
// and evaluated in declaration order, collect-all.
type check[T any] struct {
	code   string
	msg    string
	params map[string]any
	js     func(s *js.Schema)
	fn     func(v T) bool
}

func runChecks[T any](ctx context.Context, v T, checks []check[T]) kata.Issues {
	var iss kata.Issues
	for _, c := range checks {
		if c.fn(v) {
			continue
		}
		iss = kata.AppendIssues(iss, kata.Issue{Path: "/", Code: c.code, Message: c.msg, Params: c.params})
		if kata.IsFailFast(ctx) {
			break
		}
	}
	return iss
}

// primitiveSchema is the shared engine behind the primitive builders. conv
// performs the type check (and best-effort coercion when enabled); a failed
// conversion reports invalid_type.
type primitiveSchema[T any] struct {
	typeName string
	jsType   string
	coerce   bool
	conv     func(v any, coerce bool) (T, bool)
	// convIssue can replace the generic invalid_type issue for specific
	// failures (for example numeric overflow).
	convIssue func(v any) *kata.Issue
	checks    []check[T]
}

func (p *primitiveSchema[T]) convert(v any) (T, kata.Issues) {
	t, ok := p.conv(v, p.coerce)
	if !ok {
		var zero T
		if p.convIssue != nil {
			if it := p.convIssue(v); it != nil {
				return zero, kata.Issues{*it}
			}
		}
		return zero, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
			Message: fmt.Sprintf("expected %s, got %s", p.typeName, typeNameOf(v)),
			Params:  map[string]any{"expected": p.typeName, "got": typeNameOf(v)}}}
	}
	return t, nil
}

func (p *primitiveSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	t, iss := p.convert(v)
	if iss != nil {
		var zero T
		return zero, iss
	}
	if iss := runChecks(ctx, t, p.checks); len(iss) > 0 {
		var zero T
		return zero, iss
	}
	return t, nil
}

func (p *primitiveSchema[T]) ParseWithMeta(ctx context.Context, v any) (kata.Decoded[T], error) {
	t, err := p.Parse(ctx, v)
	if err != nil {
		return kata.Decoded[T]{}, err
	}
	pres := kata.PresenceSeen
	if v == nil {
		pres |= kata.PresenceWasNull
	}
	return kata.Decoded[T]{Value: t, Presence: kata.PresenceMap{"/": pres}}, nil
}

func (p *primitiveSchema[T]) TypeCheck(ctx context.Context, v any) error {
	if _, iss := p.convert(v); iss != nil {
		return iss
	}
	return nil
}

func (p *primitiveSchema[T]) RuleCheck(ctx context.Context, v any) error {
	t, iss := p.convert(v)
	if iss != nil {
		return iss
	}
	return p.ValidateValue(ctx, t)
}

func (p *primitiveSchema[T]) Validate(ctx context.Context, v any) error {
	if err := p.TypeCheck(ctx, v); err != nil {
		return err
	}
	return p.RuleCheck(ctx, v)
}

func (p *primitiveSchema[T]) ValidateValue(ctx context.Context, v T) error {
	if iss := runChecks(ctx, v, p.checks); len(iss) > 0 {
		return iss
	}
	return nil
}

func (p *primitiveSchema[T]) JSONSchema() (*js.Schema, error) {
	s := &js.Schema{Type: p.jsType}
	for _, c := range p.checks {
		if c.js != nil {
			c.js(s)
		}
	}
	return s, nil
}

func typeNameOf(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
