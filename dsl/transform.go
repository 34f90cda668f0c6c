package dsl

import (
	"context"

	kata "github.com/kataform/kata"
)

// Transform declares a typed mapping step over an inner schema: the input is
// parsed as A, then fn maps it to B. The output is not re-validated against
// the inner node. Chains compose by nesting Transform calls; each step
// consumes the previous output.
func Transform[A, B any](s kata.Schema[A], name string, fn func(ctx context.Context, v A) (B, error)) kata.Schema[B] {
	return transformSchema(s, name, fn, false)
}

// TransformAsync is Transform with the step marked asynchronous: the
// resulting schema requires the *Async entry points.
func TransformAsync[A, B any](s kata.Schema[A], name string, fn func(ctx context.Context, v A) (B, error)) kata.Schema[B] {
	return transformSchema(s, name, fn, true)
}

func transformSchema[A, B any](s kata.Schema[A], name string, fn func(ctx context.Context, v A) (B, error), async bool) kata.Schema[B] {
	return &compositeSchema[B]{
		parse: func(ctx context.Context, v any) (B, error) {
			var zero B
			a, err := s.Parse(ctx, v)
			if err != nil {
				return zero, err
			}
			b, err := fn(ctx, a)
			if err != nil {
				return zero, refineIssues(name, err)
			}
			return b, nil
		},
		typeCheck: s.TypeCheck,
		ruleCheck: s.RuleCheck,
		js:        s.JSONSchema,
		async:     async || schemaIsAsync(s),
	}
}
