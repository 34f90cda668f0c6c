package codec

import (
	"context"

	kata "github.com/kataform/kata"
)

// Identity wraps a schema as a codec whose both sides are the same type.
// Trivially reversible: Encode(Decode(x)) == x for every accepted x.
func Identity[T any](s kata.Schema[T]) kata.Codec[T, T] {
	return New(s, s,
		func(ctx context.Context, v T) (T, error) { return v, nil },
		func(ctx context.Context, v T) (T, error) { return v, nil },
	)
}
