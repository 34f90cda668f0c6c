package codec_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	kata "github.com/kataform/kata"
	"github.com/kataform/kata/codec"
	"github.com/kataform/kata/dsl"
)

func TestTimeRFC3339RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := codec.TimeRFC3339()

	tm, err := c.Decode(ctx, "2024-01-02T03:04:05Z")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !tm.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("tm = %v", tm)
	}

	s, err := c.Encode(ctx, tm)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if s != "2024-01-02T03:04:05Z" {
		t.Fatalf("s = %s", s)
	}
}

func TestTimeRFC3339Invalid(t *testing.T) {
	ctx := context.Background()
	c := codec.TimeRFC3339()

	_, err := c.Decode(ctx, "yesterday")
	iss, ok := kata.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != kata.CodeInvalidFormat {
		t.Fatalf("want invalid_format, got %v", err)
	}

	_, err = c.Decode(ctx, "")
	if _, ok := kata.AsIssues(err); !ok {
		t.Fatalf("empty string must fail the wire schema, got %v", err)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := codec.Base64()

	b, err := c.Decode(ctx, "aGVsbG8=")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(b, []byte("hello")) {
		t.Fatalf("b = %q", b)
	}

	s, err := c.Encode(ctx, b)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if s != "aGVsbG8=" {
		t.Fatalf("s = %s", s)
	}

	_, err = c.Decode(ctx, "!!!")
	iss, ok := kata.AsIssues(err)
	if !ok || iss[0].Code != kata.CodeInvalidFormat {
		t.Fatalf("want invalid_format, got %v", err)
	}
}

func TestIdentity(t *testing.T) {
	ctx := context.Background()
	c := codec.Identity(dsl.String().Min(2).Schema())

	v, err := c.Decode(ctx, "ok")
	if err != nil || v != "ok" {
		t.Fatalf("v=%v err=%v", v, err)
	}
	if _, err := c.Decode(ctx, "x"); err == nil {
		t.Fatal("wire schema constraints must still apply")
	}
}

func TestJSONStringDecodeEncode(t *testing.T) {
	ctx := context.Background()
	inner := dsl.Record(dsl.Int())
	c := codec.JSONString(inner)

	m, err := c.Decode(ctx, `{"a":1,"b":2}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["a"] != int64(1) || m["b"] != int64(2) {
		t.Fatalf("m = %v", m)
	}

	s, err := c.Encode(ctx, m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := c.Decode(ctx, s)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if back["a"] != int64(1) || back["b"] != int64(2) {
		t.Fatalf("back = %v", back)
	}
}

func TestJSONStringMalformed(t *testing.T) {
	ctx := context.Background()
	c := codec.JSONString(dsl.Record(dsl.Int()))
	_, err := c.Decode(ctx, `{"a":`)
	iss, ok := kata.AsIssues(err)
	if !ok || iss[0].Code != kata.CodeParseError {
		t.Fatalf("want parse_error, got %v", err)
	}
}

func TestDecodeWithMetaRootPresence(t *testing.T) {
	ctx := context.Background()
	c := codec.Identity(dsl.String().Schema())
	dm, err := c.DecodeWithMeta(ctx, "x")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dm.Presence["/"]&kata.PresenceSeen == 0 {
		t.Error("root presence missing")
	}
	if v, err := c.EncodePreserving(ctx, dm); err != nil || v != "x" {
		t.Fatalf("v=%v err=%v", v, err)
	}
}
