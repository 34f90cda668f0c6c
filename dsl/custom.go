package dsl

import (
	"context"
	"reflect"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// Custom declares a schema entirely defined by a user function. fn both
// checks and converts; errors become custom issues carrying the node name.
func Custom[T any](name string, fn func(ctx context.Context, v any) (T, error)) kata.Schema[T] {
	return &compositeSchema[T]{
		parse: func(ctx context.Context, v any) (T, error) {
			t, err := fn(ctx, v)
			if err != nil {
				var zero T
				return zero, refineIssues(name, err)
			}
			return t, nil
		},
	}
}

// CustomAsync is Custom with the function marked asynchronous.
func CustomAsync[T any](name string, fn func(ctx context.Context, v any) (T, error)) kata.Schema[T] {
	return &compositeSchema[T]{
		parse: func(ctx context.Context, v any) (T, error) {
			t, err := fn(ctx, v)
			if err != nil {
				var zero T
				return zero, refineIssues(name, err)
			}
			return t, nil
		},
		async: true,
	}
}

// Function declares a schema accepting any Go function value. Runtime inputs
// decoded from documents never match; this node exists for validating
// in-process values.
func Function() kata.Schema[any] {
	return &compositeSchema[any]{
		parse: func(ctx context.Context, v any) (any, error) {
			if v == nil || reflect.TypeOf(v).Kind() != reflect.Func {
				return nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
					Message: "expected function", Params: map[string]any{"expected": "function"}}}
			}
			return v, nil
		},
		js: func() (*js.Schema, error) { return &js.Schema{}, nil },
	}
}
