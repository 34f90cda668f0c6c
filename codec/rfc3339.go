package codec

import (
	"context"
	"time"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/dsl"
)

// TimeRFC3339 converts between RFC 3339 strings and time.Time. The round
// trip is exact for inputs already in canonical RFC 3339 Nano form.
func TimeRFC3339() kata.Codec[string, time.Time] {
	in := dsl.String().NonEmpty().Schema()
	out := dsl.Custom[time.Time]("time", func(ctx context.Context, v any) (time.Time, error) {
		t, ok := v.(time.Time)
		if !ok {
			return time.Time{}, kata.Issues{{Path: "/", Code: kata.CodeInvalidType,
				Message: "expected time.Time"}}
		}
		return t, nil
	})
	return New(in, out,
		func(ctx context.Context, s string) (time.Time, error) {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return time.Time{}, kata.Issues{{Path: "/", Code: kata.CodeInvalidFormat,
					Message: "invalid RFC 3339 timestamp", Cause: err,
					Params: map[string]any{"format": "rfc3339"}}}
			}
			return t, nil
		},
		func(ctx context.Context, t time.Time) (string, error) {
			return t.Format(time.RFC3339Nano), nil
		},
	)
}
