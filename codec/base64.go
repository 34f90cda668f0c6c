package codec

import (
	"context"
	"encoding/base64"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/dsl"
)

// Base64 converts between standard-encoding base64 strings and raw bytes.
// Reversible: Encode(Decode(x)) == x for every valid x (canonical padding).
func Base64() kata.Codec[string, []byte] {
	in := dsl.String().Schema()
	out := dsl.Custom[[]byte]("bytes", func(ctx context.Context, v any) ([]byte, error) {
		b, ok := v.([]byte)
		if !ok {
			return nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
				Message: "expected bytes"}}
		}
		return b, nil
	})
	return New(in, out,
		func(ctx context.Context, s string) ([]byte, error) {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, kata.Issues{{Path: "/", Code: kata.CodeInvalidFormat,
					Message: "invalid base64", Cause: err,
					Params: map[string]any{"format": "base64"}}}
			}
			return b, nil
		},
		func(ctx context.Context, b []byte) (string, error) {
			return base64.StdEncoding.EncodeToString(b), nil
		},
	)
}
