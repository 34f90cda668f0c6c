package dsl

import (
	"context"

	kata "github.com/kataform/kata"
)

// WithDefault substitutes def when the top-level input is absent (nil)
// without validating it, for scalar schemas used outside objects.
func WithDefault[T any](s kata.Schema[T], def T) kata.Schema[T] {
	return &compositeSchema[T]{
		parse: func(ctx context.Context, v any) (T, error) {
			if v == nil {
				return def, nil
			}
			return s.Parse(ctx, v)
		},
		typeCheck: func(ctx context.Context, v any) error {
			if v == nil {
				return nil
			}
			return s.TypeCheck(ctx, v)
		},
		ruleCheck: s.RuleCheck,
		js:        s.JSONSchema,
		async:     schemaIsAsync(s),
	}
}

// WithPrefault substitutes pre when the top-level input is absent (nil) and
// runs it through the full parse pipeline, unlike WithDefault.
func WithPrefault[T any](s kata.Schema[T], pre any) kata.Schema[T] {
	return &compositeSchema[T]{
		parse: func(ctx context.Context, v any) (T, error) {
			if v == nil {
				v = pre
			}
			return s.Parse(ctx, v)
		},
		typeCheck: s.TypeCheck,
		ruleCheck: s.RuleCheck,
		js:        s.JSONSchema,
		async:     schemaIsAsync(s),
	}
}

// WithCatch substitutes catch when parsing fails, swallowing the issues.
func WithCatch[T any](s kata.Schema[T], catch T) kata.Schema[T] {
	return &compositeSchema[T]{
		parse: func(ctx context.Context, v any) (T, error) {
			t, err := s.Parse(ctx, v)
			if err != nil {
				return catch, nil
			}
			return t, nil
		},
		typeCheck: s.TypeCheck,
		ruleCheck: s.RuleCheck,
		js:        s.JSONSchema,
		async:     schemaIsAsync(s),
	}
}
