// Package codec provides bidirectional schema pairs: a wire schema, a domain
// schema, and explicit conversions between them. Decode validates the wire
// value, converts, and validates the domain value; Encode runs the reverse
// and re-parses the wire output.
package codec

import (
	"context"

	kata "github.com/kataform/kata"
)

// New assembles a Codec from a schema pair and conversion functions.
func New[A, B any](in kata.Schema[A], out kata.Schema[B],
	dec func(ctx context.Context, a A) (B, error),
	enc func(ctx context.Context, b B) (A, error)) kata.Codec[A, B] {
	return &base[A, B]{in: in, out: out, dec: dec, enc: enc}
}

type base[A, B any] struct {
	in  kata.Schema[A]
	out kata.Schema[B]
	dec func(ctx context.Context, a A) (B, error)
	enc func(ctx context.Context, b B) (A, error)
}

func (c *base[A, B]) In() kata.Schema[A]  { return c.in }
func (c *base[A, B]) Out() kata.Schema[B] { return c.out }

func (c *base[A, B]) Decode(ctx context.Context, a A) (B, error) {
	var zero B
	if err := c.in.ValidateValue(ctx, a); err != nil {
		return zero, err
	}
	b, err := c.dec(ctx, a)
	if err != nil {
		return zero, err
	}
	if err := c.out.ValidateValue(ctx, b); err != nil {
		return zero, err
	}
	return b, nil
}

func (c *base[A, B]) Encode(ctx context.Context, b B) (A, error) {
	var zero A
	if err := c.out.ValidateValue(ctx, b); err != nil {
		return zero, err
	}
	a, err := c.enc(ctx, b)
	if err != nil {
		return zero, err
	}
	// round back through the wire schema so Encode output is always valid input
	if _, err := c.in.Parse(ctx, a); err != nil {
		return zero, err
	}
	return a, nil
}

func (c *base[A, B]) DecodeWithMeta(ctx context.Context, a A) (kata.Decoded[B], error) {
	b, err := c.Decode(ctx, a)
	if err != nil {
		return kata.Decoded[B]{}, err
	}
	return kata.Decoded[B]{Value: b, Presence: kata.PresenceMap{"/": kata.PresenceSeen}}, nil
}

func (c *base[A, B]) EncodePreserving(ctx context.Context, db kata.Decoded[B]) (A, error) {
	// scalar codecs have no structure to preserve; presence is accepted and
	// the canonical encode applies
	return c.Encode(ctx, db.Value)
}
