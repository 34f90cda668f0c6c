package dsl

import (
	"context"
	"fmt"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// Union declares an ordered union: alternatives are tried in declaration
// order and the first success wins. When no alternative matches, exactly one
// invalid_union issue is reported, regardless of the alternative count. An
// empty alternative list is a construction-time panic.
func Union(alts ...AnyAdaptable) *UnionSchema {
	if len(alts) == 0 {
		panic("dsl.Union: at least one alternative is required")
	}
	as := make([]AnyAdapter, 0, len(alts))
	async := false
	for _, a := range alts {
		ad := a.AnyAdapter()
		as = append(as, ad)
		async = async || ad.IsAsync()
	}
	return &UnionSchema{alts: as, async: async}
}

// UnionSchema is the ordered-union node. It implements Schema[any] and nests
// as an AnyAdapter.
type UnionSchema struct {
	alts  []AnyAdapter
	async bool
}

func (u *UnionSchema) isAsyncSchema() bool { return u.async }

func (u *UnionSchema) noMatch() kata.Issues {
	return kata.Issues{{Path: "/", Code: kata.CodeInvalidUnion,
		Message: "no union alternative matched",
		Params:  map[string]any{"alternatives": len(u.alts)}}}
}

func (u *UnionSchema) Parse(ctx context.Context, v any) (any, error) {
	if u.async && !kata.IsAsyncAllowed(ctx) {
		return nil, kata.Issues{{Path: "/", Code: kata.CodeAsyncRequired,
			Message: "schema contains async steps; use ParseAsync or SafeParseAsync"}}
	}
	for _, a := range u.alts {
		if out, _, err := a.run(ctx, v); err == nil {
			return out, nil
		}
	}
	return nil, u.noMatch()
}

func (u *UnionSchema) ParseWithMeta(ctx context.Context, v any) (kata.Decoded[any], error) {
	out, err := u.Parse(ctx, v)
	if err != nil {
		return kata.Decoded[any]{}, err
	}
	pres := kata.PresenceSeen
	if v == nil {
		pres |= kata.PresenceWasNull
	}
	return kata.Decoded[any]{Value: out, Presence: kata.PresenceMap{"/": pres}}, nil
}

func (u *UnionSchema) TypeCheck(ctx context.Context, v any) error {
	for _, a := range u.alts {
		if a.typeCheck(ctx, v) == nil {
			return nil
		}
	}
	return u.noMatch()
}

func (u *UnionSchema) RuleCheck(ctx context.Context, v any) error {
	for _, a := range u.alts {
		if a.typeCheck(ctx, v) == nil && a.ruleCheck(ctx, v) == nil {
			return nil
		}
	}
	return u.noMatch()
}

func (u *UnionSchema) Validate(ctx context.Context, v any) error {
	for _, a := range u.alts {
		if a.Validate(ctx, v) == nil {
			return nil
		}
	}
	return u.noMatch()
}

func (u *UnionSchema) ValidateValue(ctx context.Context, v any) error {
	return u.Validate(ctx, v)
}

func (u *UnionSchema) JSONSchema() (*js.Schema, error) {
	branches := make([]*js.Schema, 0, len(u.alts))
	for _, a := range u.alts {
		bs, err := a.JSONSchema()
		if err != nil {
			return nil, err
		}
		branches = append(branches, bs)
	}
	return &js.Schema{AnyOf: branches}, nil
}

// AnyAdapter nests the union inside composite builders.
func (u *UnionSchema) AnyAdapter() AnyAdapter { return Of[any](kata.Schema[any](u)) }

// discriminatedSchema selects its branch by reading one designated key, so
// dispatch is O(1) in the variant count and never backtracks. A missing or
// unmatched discriminant yields exactly one invalid_union issue.
type discriminatedSchema struct {
	key      string
	variants map[string]AnyAdapter
	order    []string
	async    bool
}

func (d *discriminatedSchema) isAsyncSchema() bool { return d.async }

func (d *discriminatedSchema) pick(v any) (AnyAdapter, map[string]any, kata.Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return AnyAdapter{}, nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
			Message: fmt.Sprintf("expected object, got %s", typeNameOf(v))}}
	}
	dv, ok := m[d.key].(string)
	if !ok {
		return AnyAdapter{}, nil, d.noMatch(m[d.key])
	}
	variant, ok := d.variants[dv]
	if !ok {
		return AnyAdapter{}, nil, d.noMatch(dv)
	}
	return variant, m, nil
}

func (d *discriminatedSchema) noMatch(got any) kata.Issues {
	return kata.Issues{{Path: "/" + ptrToken(d.key), Code: kata.CodeInvalidUnion,
		Message: fmt.Sprintf("no variant for discriminator %q", d.key),
		Params:  map[string]any{"discriminator": d.key, "got": got}}}
}

func (d *discriminatedSchema) Parse(ctx context.Context, v any) (map[string]any, error) {
	if d.async && !kata.IsAsyncAllowed(ctx) {
		return nil, kata.Issues{{Path: "/", Code: kata.CodeAsyncRequired,
			Message: "schema contains async steps; use ParseAsync or SafeParseAsync"}}
	}
	variant, m, iss := d.pick(v)
	if iss != nil {
		return nil, iss
	}
	out, _, err := variant.run(ctx, m)
	if err != nil {
		return nil, err
	}
	om, ok := out.(map[string]any)
	if !ok {
		return nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
			Message: "variant did not produce an object"}}
	}
	return om, nil
}

func (d *discriminatedSchema) ParseWithMeta(ctx context.Context, v any) (kata.Decoded[map[string]any], error) {
	out, err := d.Parse(ctx, v)
	if err != nil {
		return kata.Decoded[map[string]any]{}, err
	}
	return kata.Decoded[map[string]any]{Value: out, Presence: kata.PresenceMap{"/": kata.PresenceSeen}}, nil
}

func (d *discriminatedSchema) TypeCheck(ctx context.Context, v any) error {
	variant, m, iss := d.pick(v)
	if iss != nil {
		return iss
	}
	return variant.typeCheck(ctx, m)
}

func (d *discriminatedSchema) RuleCheck(ctx context.Context, v any) error {
	variant, m, iss := d.pick(v)
	if iss != nil {
		return iss
	}
	return variant.ruleCheck(ctx, m)
}

func (d *discriminatedSchema) Validate(ctx context.Context, v any) error {
	if err := d.TypeCheck(ctx, v); err != nil {
		return err
	}
	return d.RuleCheck(ctx, v)
}

func (d *discriminatedSchema) ValidateValue(ctx context.Context, v map[string]any) error {
	return d.Validate(ctx, v)
}

func (d *discriminatedSchema) JSONSchema() (*js.Schema, error) {
	branches := make([]*js.Schema, 0, len(d.order))
	for _, dv := range d.order {
		bs, err := d.variants[dv].JSONSchema()
		if err != nil {
			return nil, err
		}
		branches = append(branches, bs)
	}
	return &js.Schema{OneOf: branches, Discriminator: &js.Discriminator{PropertyName: d.key}}, nil
}
