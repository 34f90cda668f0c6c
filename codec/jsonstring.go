package codec

import (
	"bytes"
	"context"

	gojson "github.com/goccy/go-json"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/dsl"
)

// JSONString converts between a JSON document embedded in a string and the
// value produced by the inner schema. Decode unmarshals (numbers preserved as
// json.Number) and parses with inner; Encode marshals the domain value back.
// The round trip is canonical, not byte-preserving: whitespace and key order
// from the original string are not retained.
func JSONString[T any](inner kata.Schema[T]) kata.Codec[string, T] {
	in := dsl.String().Schema()
	return New(in, inner,
		func(ctx context.Context, s string) (T, error) {
			var zero T
			dec := gojson.NewDecoder(bytes.NewReader([]byte(s)))
			dec.UseNumber()
			var doc any
			if err := dec.Decode(&doc); err != nil {
				return zero, kata.Issues{{Path: "/", Code: kata.CodeParseError,
					Message: "invalid embedded JSON", Cause: err}}
			}
			return inner.Parse(ctx, doc)
		},
		func(ctx context.Context, v T) (string, error) {
			b, err := gojson.Marshal(v)
			if err != nil {
				return "", kata.Issues{{Path: "/", Code: kata.CodeParseError,
					Message: "cannot marshal embedded JSON", Cause: err}}
			}
			return string(b), nil
		},
	)
}
