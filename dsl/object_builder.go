package dsl

import (
	"context"
	"fmt"
	"sort"

	kata "github.com/kataform/kata"
)

// ObjectRule is a cross-field refinement over the decoded object. Rules
// receive a Ref for presence access and path building; issues they return are
// reported as-is.
type ObjectRule func(ctx context.Context, ref kata.Ref, m map[string]any) error

type objectRule struct {
	name  string
	fn    ObjectRule
	async bool
}

type fieldSpec struct {
	name     string
	adapter  AnyAdapter
	required bool
}

// ObjectBuilder assembles an object schema field by field. Fields are
// required by default; Optional, Default and Prefault relax that. The
// declaration order of fields is recorded and drives issue ordering.
type ObjectBuilder struct {
	fields        map[string]fieldSpec
	order         []string
	unknown       kata.UnknownPolicy
	unknownTarget string
	rules         []objectRule
	discKey       string
	variants      map[string]AnyAdapter
	variantOrder  []string
	err           error
}

// Object starts an object schema builder.
func Object() *ObjectBuilder {
	return &ObjectBuilder{fields: map[string]fieldSpec{}}
}

func (b *ObjectBuilder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf("dsl.Object: "+format, args...)
	}
}

// Field declares a field and returns a chain for per-field modifiers. The
// chain embeds the builder, so Field/Build remain reachable mid-chain.
func (b *ObjectBuilder) Field(name string, v AnyAdaptable) *FieldChain {
	if _, dup := b.fields[name]; dup {
		b.fail("field %q declared twice", name)
		return &FieldChain{ObjectBuilder: b, name: name}
	}
	b.fields[name] = fieldSpec{name: name, adapter: v.AnyAdapter(), required: true}
	b.order = append(b.order, name)
	return &FieldChain{ObjectBuilder: b, name: name}
}

// Require marks the named fields as required (the default for new fields;
// useful after Partial).
func (b *ObjectBuilder) Require(names ...string) *ObjectBuilder {
	for _, n := range names {
		f, ok := b.fields[n]
		if !ok {
			b.fail("Require(%q): unknown field", n)
			continue
		}
		f.required = true
		b.fields[n] = f
	}
	return b
}

// UnknownStrip drops unknown keys (the default policy).
func (b *ObjectBuilder) UnknownStrip() *ObjectBuilder {
	b.unknown = kata.UnknownStrip
	b.unknownTarget = ""
	return b
}

// UnknownStrict reports one unrecognized_keys issue per unknown key.
func (b *ObjectBuilder) UnknownStrict() *ObjectBuilder {
	b.unknown = kata.UnknownStrict
	b.unknownTarget = ""
	return b
}

// UnknownPassthrough retains unknown keys unchecked. With a non-empty target
// they are gathered into a map under that key; with an empty target they stay
// in place.
func (b *ObjectBuilder) UnknownPassthrough(target string) *ObjectBuilder {
	b.unknown = kata.UnknownPassthrough
	b.unknownTarget = target
	return b
}

// Refine appends a named cross-field rule, run after all fields validate.
func (b *ObjectBuilder) Refine(name string, fn ObjectRule) *ObjectBuilder {
	b.rules = append(b.rules, objectRule{name: name, fn: fn})
	return b
}

// RefineAsync marks the rule asynchronous; the built schema then requires the
// *Async entry points.
func (b *ObjectBuilder) RefineAsync(name string, fn ObjectRule) *ObjectBuilder {
	b.rules = append(b.rules, objectRule{name: name, fn: fn, async: true})
	return b
}

// Discriminator designates the key used for O(1) branch selection. Combine
// with OneOf.
func (b *ObjectBuilder) Discriminator(key string) *ObjectBuilder {
	b.discKey = key
	return b
}

// OneOf registers the discriminated variants: discriminant value -> schema
// for the whole object. Variants are recorded in sorted discriminant order so
// derived output such as the oneOf branches of JSONSchema is deterministic.
func (b *ObjectBuilder) OneOf(variants map[string]AnyAdaptable) *ObjectBuilder {
	if b.variants == nil {
		b.variants = map[string]AnyAdapter{}
	}
	keys := make([]string, 0, len(variants))
	for dv := range variants {
		keys = append(keys, dv)
	}
	sort.Strings(keys)
	for _, dv := range keys {
		if _, dup := b.variants[dv]; dup {
			b.fail("OneOf: variant %q declared twice", dv)
			continue
		}
		b.variants[dv] = variants[dv].AnyAdapter()
		b.variantOrder = append(b.variantOrder, dv)
	}
	return b
}

// clone deep-copies the construction state so derived builders never mutate
// their source.
func (b *ObjectBuilder) clone() *ObjectBuilder {
	nb := &ObjectBuilder{
		fields:        make(map[string]fieldSpec, len(b.fields)),
		order:         append([]string(nil), b.order...),
		unknown:       b.unknown,
		unknownTarget: b.unknownTarget,
		rules:         append([]objectRule(nil), b.rules...),
		discKey:       b.discKey,
		variantOrder:  append([]string(nil), b.variantOrder...),
		err:           b.err,
	}
	for k, v := range b.fields {
		nb.fields[k] = v
	}
	if b.variants != nil {
		nb.variants = make(map[string]AnyAdapter, len(b.variants))
		for k, v := range b.variants {
			nb.variants[k] = v
		}
	}
	return nb
}

// Extend returns an independent copy of the builder for adding or overriding
// fields.
func (b *ObjectBuilder) Extend() *ObjectBuilder { return b.clone() }

// Pick returns a derived builder keeping only the named fields.
func (b *ObjectBuilder) Pick(names ...string) *ObjectBuilder {
	nb := b.clone()
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := nb.fields[n]; !ok {
			nb.fail("Pick(%q): unknown field", n)
		}
		keep[n] = struct{}{}
	}
	order := nb.order[:0:0]
	for _, n := range nb.order {
		if _, ok := keep[n]; ok {
			order = append(order, n)
		} else {
			delete(nb.fields, n)
		}
	}
	nb.order = order
	return nb
}

// Omit returns a derived builder dropping the named fields.
func (b *ObjectBuilder) Omit(names ...string) *ObjectBuilder {
	nb := b.clone()
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	order := nb.order[:0:0]
	for _, n := range nb.order {
		if _, ok := drop[n]; ok {
			delete(nb.fields, n)
		} else {
			order = append(order, n)
		}
	}
	nb.order = order
	return nb
}

// Partial returns a derived builder with every field optional.
func (b *ObjectBuilder) Partial() *ObjectBuilder {
	nb := b.clone()
	for k, f := range nb.fields {
		f.required = false
		f.adapter = f.adapter.Optional()
		nb.fields[k] = f
	}
	return nb
}

// Build freezes the builder. Construction errors recorded during chaining are
// surfaced here.
func (b *ObjectBuilder) Build() (kata.Schema[map[string]any], error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.discKey != "" {
		if len(b.variants) == 0 {
			return nil, fmt.Errorf("dsl.Object: Discriminator(%q) without OneOf variants", b.discKey)
		}
		variants := make(map[string]AnyAdapter, len(b.variants))
		async := false
		for k, v := range b.variants {
			variants[k] = v
			async = async || v.IsAsync()
		}
		return &discriminatedSchema{
			key:      b.discKey,
			variants: variants,
			order:    append([]string(nil), b.variantOrder...),
			async:    async,
		}, nil
	}

	s := &objectSchema{
		fields:        make(map[string]fieldSpec, len(b.fields)),
		order:         append([]string(nil), b.order...),
		unknown:       b.unknown,
		unknownTarget: b.unknownTarget,
		rules:         append([]objectRule(nil), b.rules...),
	}
	for k, f := range b.fields {
		s.fields[k] = f
		s.async = s.async || f.adapter.IsAsync()
	}
	for _, r := range b.rules {
		s.async = s.async || r.async
	}
	return s, nil
}

// MustBuild is Build panicking on construction errors.
func (b *ObjectBuilder) MustBuild() kata.Schema[map[string]any] {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// AnyAdapter lets an object builder nest directly as a field of another
// object.
func (b *ObjectBuilder) AnyAdapter() AnyAdapter { return Of[map[string]any](b.MustBuild()) }

// FieldChain scopes per-field modifiers to the most recently declared field.
// The embedded builder keeps the rest of the API reachable.
type FieldChain struct {
	*ObjectBuilder
	name string
}

func (c *FieldChain) update(fn func(f *fieldSpec)) *FieldChain {
	f, ok := c.fields[c.name]
	if !ok {
		return c
	}
	fn(&f)
	c.fields[c.name] = f
	return c
}

// Required marks the field required (the default).
func (c *FieldChain) Required() *FieldChain {
	return c.update(func(f *fieldSpec) { f.required = true })
}

// Optional lets the field be absent.
func (c *FieldChain) Optional() *FieldChain {
	return c.update(func(f *fieldSpec) {
		f.required = false
		f.adapter = f.adapter.Optional()
	})
}

// Default substitutes v when the field is absent, skipping validation.
func (c *FieldChain) Default(v any) *FieldChain {
	return c.update(func(f *fieldSpec) {
		f.required = false
		f.adapter = f.adapter.Default(v)
	})
}

// Prefault substitutes v when the field is absent and validates it like
// regular input.
func (c *FieldChain) Prefault(v any) *FieldChain {
	return c.update(func(f *fieldSpec) {
		f.required = false
		f.adapter = f.adapter.Prefault(v)
	})
}

// Catch substitutes v when the field's validation fails, swallowing its
// issues.
func (c *FieldChain) Catch(v any) *FieldChain {
	return c.update(func(f *fieldSpec) { f.adapter = f.adapter.Catch(v) })
}

// Nullable accepts explicit null for the field. See AnyAdapter.Nullable for
// the short-circuit semantics.
func (c *FieldChain) Nullable() *FieldChain {
	return c.update(func(f *fieldSpec) { f.adapter = f.adapter.Nullable() })
}
