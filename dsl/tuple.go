package dsl

import (
	"context"
	"fmt"
	"strconv"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// Tuple declares a fixed-arity array whose slots each have their own schema.
// An empty item list is a construction-time panic.
func Tuple(items ...AnyAdaptable) kata.Schema[[]any] {
	if len(items) == 0 {
		panic("dsl.Tuple: at least one item is required")
	}
	ads := make([]AnyAdapter, 0, len(items))
	async := false
	for _, it := range items {
		ad := it.AnyAdapter()
		ads = append(ads, ad)
		async = async || ad.IsAsync()
	}

	arity := func(arr []any) kata.Issues {
		if len(arr) < len(ads) {
			return kata.Issues{{Path: "/", Code: kata.CodeTooSmall,
				Message: fmt.Sprintf("expected %d items, got %d", len(ads), len(arr)),
				Params:  map[string]any{"min": len(ads), "got": len(arr)}}}
		}
		if len(arr) > len(ads) {
			return kata.Issues{{Path: "/", Code: kata.CodeTooBig,
				Message: fmt.Sprintf("expected %d items, got %d", len(ads), len(arr)),
				Params:  map[string]any{"max": len(ads), "got": len(arr)}}}
		}
		return nil
	}

	return &compositeSchema[[]any]{
		parse: func(ctx context.Context, v any) ([]any, error) {
			arr, ok := v.([]any)
			if !ok {
				return nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
					Message: fmt.Sprintf("expected array, got %s", typeNameOf(v))}}
			}
			if iss := arity(arr); iss != nil {
				return nil, iss
			}
			out := make([]any, len(ads))
			var iss kata.Issues
			for i, ad := range ads {
				ev, _, err := ad.run(ctx, arr[i])
				if err != nil {
					iss = append(iss, kata.PrefixIssues("/"+strconv.Itoa(i), err)...)
					if kata.IsFailFast(ctx) {
						return nil, iss
					}
					continue
				}
				out[i] = ev
			}
			if len(iss) > 0 {
				return nil, iss
			}
			return out, nil
		},
		typeCheck: func(ctx context.Context, v any) error {
			arr, ok := v.([]any)
			if !ok {
				return kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
					Message: fmt.Sprintf("expected array, got %s", typeNameOf(v))}}
			}
			if iss := arity(arr); iss != nil {
				return iss
			}
			var iss kata.Issues
			for i, ad := range ads {
				if err := ad.typeCheck(ctx, arr[i]); err != nil {
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
			if !ok || len(arr) != len(ads) {
				return nil
			}
			var iss kata.Issues
			for i, ad := range ads {
				if err := ad.ruleCheck(ctx, arr[i]); err != nil {
					iss = append(iss, kata.PrefixIssues("/"+strconv.Itoa(i), err)...)
				}
			}
			if len(iss) > 0 {
				return iss
			}
			return nil
		},
		js: func() (*js.Schema, error) {
			prefix := make([]*js.Schema, 0, len(ads))
			for _, ad := range ads {
				s, err := ad.JSONSchema()
				if err != nil {
					return nil, err
				}
				prefix = append(prefix, s)
			}
			n := len(ads)
			return &js.Schema{Type: "array", PrefixItems: prefix,
				MinItems: js.IntPtr(n), MaxItems: js.IntPtr(n)}, nil
		},
		async: async,
	}
}
