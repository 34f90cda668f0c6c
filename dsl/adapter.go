package dsl

import (
	"context"
	"fmt"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// AnyAdapter is the type-erased view of a schema used by composite builders
// (object fields, tuple items, union alternatives). It carries the node's
// parse pipeline plus the field-level behavior attached by modifiers.
// Modifiers use value receivers and copy-on-write slices, so adapters behave
// as immutable values: deriving a modified adapter never mutates the source.
type AnyAdapter struct {
	parse         func(ctx context.Context, v any) (any, error)
	typeCheck     func(ctx context.Context, v any) error
	ruleCheck     func(ctx context.Context, v any) error
	validateValue func(ctx context.Context, v any) error
	jsonSchema    func() (*js.Schema, error)

	refines    []refinement
	transforms []transformStep

	optional   bool
	nullable   bool
	hasDefault bool
	defaultVal any
	hasPref    bool
	prefVal    any
	hasCatch   bool
	catchVal   any
	async      bool
	brand      string
}

type refinement struct {
	name  string
	fn    func(ctx context.Context, v any) error
	abort bool
	async bool
}

type transformStep struct {
	name  string
	fn    func(ctx context.Context, v any) (any, error)
	async bool
}

// AnyAdaptable is implemented by everything that can appear as a child of a
// composite builder: adapters themselves, primitive builders, object builders,
// and typed schemas wrapped via Of.
type AnyAdaptable interface {
	AnyAdapter() AnyAdapter
}

// AnyAdapter returns the adapter itself, making adapters directly usable as
// children.
func (a AnyAdapter) AnyAdapter() AnyAdapter { return a }

// IsAsync reports whether the node graph behind this adapter carries an
// asynchronous refinement or transform anywhere.
func (a AnyAdapter) IsAsync() bool {
	if a.async {
		return true
	}
	for _, r := range a.refines {
		if r.async {
			return true
		}
	}
	for _, t := range a.transforms {
		if t.async {
			return true
		}
	}
	return false
}

// ---- modifiers ----

// Optional marks absence as acceptable when the adapter is used as an object
// field.
func (a AnyAdapter) Optional() AnyAdapter { a.optional = true; return a }

// Nullable accepts explicit null. A null input short-circuits the whole
// pipeline: the base parse, refinements and transforms are all skipped and
// the result is nil.
func (a AnyAdapter) Nullable() AnyAdapter { a.nullable = true; return a }

// Nullish is Optional plus Nullable.
func (a AnyAdapter) Nullish() AnyAdapter { a.optional = true; a.nullable = true; return a }

// Default substitutes v when the field is absent. The default skips
// validation entirely; it is trusted as declared.
func (a AnyAdapter) Default(v any) AnyAdapter {
	a.hasDefault = true
	a.defaultVal = v
	a.optional = true
	return a
}

// Prefault substitutes v when the field is absent and runs it through the
// full parse pipeline, unlike Default.
func (a AnyAdapter) Prefault(v any) AnyAdapter {
	a.hasPref = true
	a.prefVal = v
	a.optional = true
	return a
}

// Catch substitutes v when validation of the value fails, swallowing the
// field's issues and reporting success.
func (a AnyAdapter) Catch(v any) AnyAdapter {
	a.hasCatch = true
	a.catchVal = v
	return a
}

// Refine appends a named predicate run after base validation. A failing
// refinement reports its issues but lets sibling refinements still run.
func (a AnyAdapter) Refine(name string, fn func(ctx context.Context, v any) error) AnyAdapter {
	a.refines = appendCopy(a.refines, refinement{name: name, fn: fn})
	return a
}

// RefineAbort is Refine with the abort flag: a failure stops the remaining
// chain for this branch.
func (a AnyAdapter) RefineAbort(name string, fn func(ctx context.Context, v any) error) AnyAdapter {
	a.refines = appendCopy(a.refines, refinement{name: name, fn: fn, abort: true})
	return a
}

// RefineAsync marks the predicate as asynchronous: the schema then requires
// the *Async entry points.
func (a AnyAdapter) RefineAsync(name string, fn func(ctx context.Context, v any) error) AnyAdapter {
	a.refines = appendCopy(a.refines, refinement{name: name, fn: fn, async: true})
	return a
}

// Transform appends a named mapping step run after all refinements pass.
// Steps execute in declaration order, each consuming the previous output;
// the output is not re-validated against the input node.
func (a AnyAdapter) Transform(name string, fn func(ctx context.Context, v any) (any, error)) AnyAdapter {
	a.transforms = appendCopy(a.transforms, transformStep{name: name, fn: fn})
	return a
}

// TransformAsync marks the mapping step as asynchronous.
func (a AnyAdapter) TransformAsync(name string, fn func(ctx context.Context, v any) (any, error)) AnyAdapter {
	a.transforms = appendCopy(a.transforms, transformStep{name: name, fn: fn, async: true})
	return a
}

// Brand attaches a nominal tag. It has no runtime effect.
func (a AnyAdapter) Brand(tag string) AnyAdapter { a.brand = tag; return a }

func appendCopy[E any](s []E, e E) []E {
	out := make([]E, 0, len(s)+1)
	out = append(out, s...)
	return append(out, e)
}

// ---- pipeline execution ----

// run executes the full pipeline: base parse, refinements, transforms, catch.
// caught reports whether the catch value was substituted after a failure.
func (a AnyAdapter) run(ctx context.Context, v any) (out any, caught bool, err error) {
	if a.IsAsync() && !kata.IsAsyncAllowed(ctx) {
		return nil, false, kata.Issues{{Path: "/", Code: kata.CodeAsyncRequired,
			Message: "schema contains async steps; use ParseAsync or SafeParseAsync"}}
	}
	if v == nil && a.nullable {
		return nil, false, nil
	}

	out, err = a.parse(ctx, v)
	if err != nil {
		return a.recover(err)
	}

	var iss kata.Issues
	for _, r := range a.refines {
		if rerr := r.fn(ctx, out); rerr != nil {
			iss = kata.AppendIssues(iss, refineIssues(r.name, rerr)...)
			if r.abort || kata.IsFailFast(ctx) {
				break
			}
		}
	}
	if len(iss) > 0 {
		return a.recover(iss)
	}

	for _, t := range a.transforms {
		nv, terr := t.fn(ctx, out)
		if terr != nil {
			e := refineIssues(t.name, terr)
			return a.recover(e)
		}
		out = nv
	}
	return out, false, nil
}

func (a AnyAdapter) recover(err error) (any, bool, error) {
	if a.hasCatch {
		return a.catchVal, true, nil
	}
	return nil, false, err
}

// refineIssues shapes a refinement error into Issues carrying the rule name.
func refineIssues(name string, err error) kata.Issues {
	if iss, ok := kata.AsIssues(err); ok {
		out := make(kata.Issues, 0, len(iss))
		for _, it := range iss {
			if it.Rule == "" {
				it.Rule = name
			}
			if it.Code == "" {
				it.Code = kata.CodeCustom
			}
			out = append(out, it)
		}
		return out
	}
	return kata.Issues{{Path: "/", Code: kata.CodeCustom, Message: err.Error(), Rule: name, Cause: err}}
}

// Parse runs the adapter pipeline against an unknown input.
func (a AnyAdapter) Parse(ctx context.Context, v any) (any, error) {
	out, _, err := a.run(ctx, v)
	return out, err
}

// Validate runs the base schema's TypeCheck and RuleCheck without producing a
// value.
func (a AnyAdapter) Validate(ctx context.Context, v any) error {
	if v == nil && a.nullable {
		return nil
	}
	if err := a.typeCheck(ctx, v); err != nil {
		return err
	}
	return a.ruleCheck(ctx, v)
}

// JSONSchema projects the adapter into a JSON Schema node, folding in
// nullability and default metadata.
func (a AnyAdapter) JSONSchema() (*js.Schema, error) {
	s, err := a.jsonSchema()
	if err != nil {
		return nil, err
	}
	cp := *s
	if a.nullable && cp.Type != "" {
		cp.Types = []string{cp.Type, "null"}
	}
	if a.hasDefault {
		cp.Default = a.defaultVal
	}
	return &cp, nil
}

// Of erases a typed schema into an AnyAdapter for use in composite builders.
// Schemas implementing the optional kata.Normalizer and kata.Refiner hooks
// have them applied after the base parse, in that order.
func Of[T any](s kata.Schema[T]) AnyAdapter {
	return AnyAdapter{
		parse: func(ctx context.Context, v any) (any, error) {
			t, err := s.Parse(ctx, v)
			if err != nil {
				return nil, err
			}
			t, err = kata.ApplyNormalize(ctx, t, s)
			if err != nil {
				return nil, refineIssues("normalize", err)
			}
			if err := kata.ApplyRefine(ctx, t, s); err != nil {
				return nil, refineIssues("refine", err)
			}
			return t, nil
		},
		typeCheck: s.TypeCheck,
		ruleCheck: s.RuleCheck,
		validateValue: func(ctx context.Context, v any) error {
			t, ok := v.(T)
			if !ok {
				return kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
					Message: fmt.Sprintf("expected %T", t)}}
			}
			if err := s.ValidateValue(ctx, t); err != nil {
				return err
			}
			if err := kata.ApplyRefine(ctx, t, s); err != nil {
				return refineIssues("refine", err)
			}
			return nil
		},
		jsonSchema: s.JSONSchema,
		async:      schemaIsAsync(s),
	}
}

// asyncMarked is implemented by schema types that carry async steps.
type asyncMarked interface{ isAsyncSchema() bool }

func schemaIsAsync(s any) bool {
	if m, ok := s.(asyncMarked); ok {
		return m.isAsyncSchema()
	}
	return false
}
