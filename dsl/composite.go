package dsl

import (
	"context"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// compositeSchema implements Schema[T] over a closure set. Composite nodes
// (arrays, tuples, records, transforms, customs) supply parse/typeCheck/
// ruleCheck and get the derived entry points for free.
type compositeSchema[T any] struct {
	parse     func(ctx context.Context, v any) (T, error)
	typeCheck func(ctx context.Context, v any) error
	ruleCheck func(ctx context.Context, v any) error
	js        func() (*js.Schema, error)
	async     bool
}

func (c *compositeSchema[T]) isAsyncSchema() bool { return c.async }

func (c *compositeSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	if c.async && !kata.IsAsyncAllowed(ctx) {
		var zero T
		return zero, kata.Issues{{Path: "/", Code: kata.CodeAsyncRequired,
			Message: "schema contains async steps; use ParseAsync or SafeParseAsync"}}
	}
	return c.parse(ctx, v)
}

func (c *compositeSchema[T]) ParseWithMeta(ctx context.Context, v any) (kata.Decoded[T], error) {
	t, err := c.Parse(ctx, v)
	if err != nil {
		return kata.Decoded[T]{}, err
	}
	pres := kata.PresenceSeen
	if v == nil {
		pres |= kata.PresenceWasNull
	}
	return kata.Decoded[T]{Value: t, Presence: kata.PresenceMap{"/": pres}}, nil
}

func (c *compositeSchema[T]) TypeCheck(ctx context.Context, v any) error {
	if c.typeCheck != nil {
		return c.typeCheck(ctx, v)
	}
	_, err := c.parse(ctx, v)
	return err
}

func (c *compositeSchema[T]) RuleCheck(ctx context.Context, v any) error {
	if c.ruleCheck != nil {
		return c.ruleCheck(ctx, v)
	}
	return nil
}

func (c *compositeSchema[T]) Validate(ctx context.Context, v any) error {
	if err := c.TypeCheck(ctx, v); err != nil {
		return err
	}
	return c.RuleCheck(ctx, v)
}

func (c *compositeSchema[T]) ValidateValue(ctx context.Context, v T) error {
	return c.Validate(ctx, any(v))
}

func (c *compositeSchema[T]) JSONSchema() (*js.Schema, error) {
	if c.js != nil {
		return c.js()
	}
	return &js.Schema{}, nil
}

// anySchema lifts a type-erased adapter back into a Schema[any].
type anySchema struct {
	ad AnyAdapter
}

// SchemaOf lifts any adaptable node into a Schema[any], the inverse of Of.
func SchemaOf(a AnyAdaptable) kata.Schema[any] {
	return &anySchema{ad: a.AnyAdapter()}
}

func (s *anySchema) isAsyncSchema() bool { return s.ad.IsAsync() }

func (s *anySchema) Parse(ctx context.Context, v any) (any, error) {
	return s.ad.Parse(ctx, v)
}

func (s *anySchema) ParseWithMeta(ctx context.Context, v any) (kata.Decoded[any], error) {
	out, err := s.ad.Parse(ctx, v)
	if err != nil {
		return kata.Decoded[any]{}, err
	}
	pres := kata.PresenceSeen
	if v == nil {
		pres |= kata.PresenceWasNull
	}
	return kata.Decoded[any]{Value: out, Presence: kata.PresenceMap{"/": pres}}, nil
}

func (s *anySchema) TypeCheck(ctx context.Context, v any) error { return s.ad.typeCheck(ctx, v) }
func (s *anySchema) RuleCheck(ctx context.Context, v any) error { return s.ad.ruleCheck(ctx, v) }

func (s *anySchema) Validate(ctx context.Context, v any) error {
	return s.ad.Validate(ctx, v)
}

func (s *anySchema) ValidateValue(ctx context.Context, v any) error {
	return s.ad.Validate(ctx, v)
}

func (s *anySchema) JSONSchema() (*js.Schema, error) { return s.ad.JSONSchema() }
