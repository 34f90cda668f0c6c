package dsl

import (
	"context"
	"fmt"
	"strconv"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// ArrayBuilder declares an array schema over a typed element schema.
type ArrayBuilder[T any] struct {
	elem   kata.Schema[T]
	checks []check[[]any]
}

// ArrayOf starts an array schema whose parsed value is []T.
func ArrayOf[T any](elem kata.Schema[T]) *ArrayBuilder[T] {
	return &ArrayBuilder[T]{elem: elem}
}

// Array starts an untyped array schema ([]any) over any adaptable element.
func Array(elem AnyAdaptable) *ArrayBuilder[any] {
	return ArrayOf[any](SchemaOf(elem))
}

// Min requires at least n elements.
func (b *ArrayBuilder[T]) Min(n int) *ArrayBuilder[T] {
	b.checks = append(b.checks, check[[]any]{
		code: kata.CodeTooSmall, msg: fmt.Sprintf("length must be >= %d", n),
		params: map[string]any{"min": n},
		js:     func(s *js.Schema) { s.MinItems = js.IntPtr(n) },
		fn:     func(v []any) bool { return len(v) >= n },
	})
	return b
}

// Max requires at most n elements.
func (b *ArrayBuilder[T]) Max(n int) *ArrayBuilder[T] {
	b.checks = append(b.checks, check[[]any]{
		code: kata.CodeTooBig, msg: fmt.Sprintf("length must be <= %d", n),
		params: map[string]any{"max": n},
		js:     func(s *js.Schema) { s.MaxItems = js.IntPtr(n) },
		fn:     func(v []any) bool { return len(v) <= n },
	})
	return b
}

// Length requires exactly n elements.
func (b *ArrayBuilder[T]) Length(n int) *ArrayBuilder[T] { return b.Min(n).Max(n) }

// Schema freezes the builder into an immutable array schema.
func (b *ArrayBuilder[T]) Schema() kata.Schema[[]T] {
	elem := b.elem
	checks := append([]check[[]any](nil), b.checks...)

	parse := func(ctx context.Context, v any) ([]T, error) {
		arr, ok := v.([]any)
		if !ok {
			return nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
				Message: fmt.Sprintf("expected array, got %s", typeNameOf(v)),
				Params:  map[string]any{"expected": "array", "got": typeNameOf(v)}}}
		}
		iss := runChecks(ctx, arr, checks)
		if len(iss) > 0 && kata.IsFailFast(ctx) {
			return nil, iss
		}
		out := make([]T, 0, len(arr))
		for i, el := range arr {
			ev, err := elem.Parse(ctx, el)
			if err != nil {
				iss = append(iss, kata.PrefixIssues("/"+strconv.Itoa(i), err)...)
				if kata.IsFailFast(ctx) {
					return nil, iss
				}
				continue
			}
			out = append(out, ev)
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}

	return &compositeSchema[[]T]{
		parse: parse,
		typeCheck: func(ctx context.Context, v any) error {
			arr, ok := v.([]any)
			if !ok {
				return kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
					Message: fmt.Sprintf("expected array, got %s", typeNameOf(v))}}
			}
			var iss kata.Issues
			for i, el := range arr {
				if err := elem.TypeCheck(ctx, el); err != nil {
					iss = append(iss, kata.PrefixIssues("/"+strconv.Itoa(i), err)...)
				}
			}
			if len(iss) > 0 {
				return iss
			}
			return nil
		},
		ruleCheck: func(ctx context.Context, v any) error {
			arr, ok := v.([]any)
			if !ok {
				return nil
			}
			iss := runChecks(ctx, arr, checks)
			for i, el := range arr {
				if err := elem.RuleCheck(ctx, el); err != nil {
					iss = append(iss, kata.PrefixIssues("/"+strconv.Itoa(i), err)...)
				}
			}
			if len(iss) > 0 {
				return iss
			}
			return nil
		},
		js: func() (*js.Schema, error) {
			es, err := elem.JSONSchema()
			if err != nil {
				return nil, err
			}
			s := &js.Schema{Type: "array", Items: es}
			for _, c := range checks {
				if c.js != nil {
					c.js(s)
				}
			}
			return s, nil
		},
		async: schemaIsAsync(elem),
	}
}

// AnyAdapter lets the builder nest as an object field or union alternative.
func (b *ArrayBuilder[T]) AnyAdapter() AnyAdapter { return Of[[]T](b.Schema()) }
