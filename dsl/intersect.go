package dsl

import (
	"context"
	"fmt"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// Intersect declares an intersection of two object schemas: the input must
// satisfy both, and their outputs merge (b wins on overlapping keys). Issues
// from both sides are collected.
func Intersect(a, b AnyAdaptable) kata.Schema[map[string]any] {
	aa := a.AnyAdapter()
	ab := b.AnyAdapter()

	parseSide := func(ctx context.Context, ad AnyAdapter, v any) (map[string]any, kata.Issues) {
		out, _, err := ad.run(ctx, v)
		if err != nil {
			iss, ok := kata.AsIssues(err)
			if !ok {
				iss = kata.Issues{{Path: "/", Code: kata.CodeParseError, Message: err.Error(), Cause: err}}
			}
			return nil, iss
		}
		m, ok := out.(map[string]any)
		if !ok {
			return nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
				Message: fmt.Sprintf("intersection side produced %s, not object", typeNameOf(out))}}
		}
		return m, nil
	}

	return &compositeSchema[map[string]any]{
		parse: func(ctx context.Context, v any) (map[string]any, error) {
			ma, issA := parseSide(ctx, aa, v)
			if issA != nil && kata.IsFailFast(ctx) {
				return nil, issA
			}
			mb, issB := parseSide(ctx, ab, v)
			if len(issA)+len(issB) > 0 {
				return nil, append(issA, issB...)
			}
			out := make(map[string]any, len(ma)+len(mb))
			for k, val := range ma {
				out[k] = val
			}
			for k, val := range mb {
				out[k] = val
			}
			return out, nil
		},
		typeCheck: func(ctx context.Context, v any) error {
			if err := aa.typeCheck(ctx, v); err != nil {
				return err
			}
			return ab.typeCheck(ctx, v)
		},
		ruleCheck: func(ctx context.Context, v any) error {
			if err := aa.ruleCheck(ctx, v); err != nil {
				return err
			}
			return ab.ruleCheck(ctx, v)
		},
		js: func() (*js.Schema, error) {
			sa, err := aa.JSONSchema()
			if err != nil {
				return nil, err
			}
			sb, err := ab.JSONSchema()
			if err != nil {
				return nil, err
			}
			return &js.Schema{AllOf: []*js.Schema{sa, sb}}, nil
		},
		async: aa.IsAsync() || ab.IsAsync(),
	}
}
