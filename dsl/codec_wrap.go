package dsl

import (
	"context"

	kata "github.com/kataform/kata"
)

// FromCodec projects a codec into a forward-only schema: input parses against
// the wire side, then decodes into the domain type.
func FromCodec[A, B any](c kata.Codec[A, B]) kata.Schema[B] {
	return &compositeSchema[B]{
		parse: func(ctx context.Context, v any) (B, error) {
			var zero B
			a, err := c.In().Parse(ctx, v)
			if err != nil {
				return zero, err
			}
			b, err := c.Decode(ctx, a)
			if err != nil {
				return zero, refineIssues("codec", err)
			}
			return b, nil
		},
		typeCheck: c.In().TypeCheck,
		ruleCheck: c.In().RuleCheck,
		js:        c.In().JSONSchema,
		async:     schemaIsAsync(c.In()) || schemaIsAsync(c.Out()),
	}
}
