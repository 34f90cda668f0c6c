package dsl

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"unicode/utf8"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// StringBuilder declares a string schema. Constraint methods record checks in
// declaration order; Schema() freezes the node.
type StringBuilder struct {
	p primitiveSchema[string]
}

// String starts a string schema.
func String() *StringBuilder {
	b := &StringBuilder{}
	b.p.typeName = "string"
	b.p.jsType = "string"
	b.p.conv = convString
	return b
}

func convString(v any, coerce bool) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if !coerce {
		return "", false
	}
	switch t := v.(type) {
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Coerce enables best-effort conversion of numbers and bools into strings
// before type checking.
func (b *StringBuilder) Coerce() *StringBuilder { b.p.coerce = true; return b }

// Min requires at least n characters (runes, not bytes).
func (b *StringBuilder) Min(n int) *StringBuilder {
	b.p.checks = append(b.p.checks, check[string]{
		code: kata.CodeTooSmall, msg: fmt.Sprintf("length must be >= %d", n),
		params: map[string]any{"min": n},
		js:     func(s *js.Schema) { s.MinLength = js.IntPtr(n) },
		fn:     func(v string) bool { return utf8.RuneCountInString(v) >= n },
	})
	return b
}

// Max requires at most n characters.
func (b *StringBuilder) Max(n int) *StringBuilder {
	b.p.checks = append(b.p.checks, check[string]{
		code: kata.CodeTooBig, msg: fmt.Sprintf("length must be <= %d", n),
		params: map[string]any{"max": n},
		js:     func(s *js.Schema) { s.MaxLength = js.IntPtr(n) },
		fn:     func(v string) bool { return utf8.RuneCountInString(v) <= n },
	})
	return b
}

// Len requires exactly n characters.
func (b *StringBuilder) Len(n int) *StringBuilder { return b.Min(n).Max(n) }

// NonEmpty is Min(1).
func (b *StringBuilder) NonEmpty() *StringBuilder { return b.Min(1) }

// Pattern requires the value to match expr (Go regexp syntax). A malformed
// expression panics at construction time.
func (b *StringBuilder) Pattern(expr string) *StringBuilder {
	re := regexp.MustCompile(expr)
	b.p.checks = append(b.p.checks, check[string]{
		code: kata.CodeInvalidFormat, msg: fmt.Sprintf("must match %s", expr),
		params: map[string]any{"pattern": expr},
		js:     func(s *js.Schema) { s.Pattern = expr },
		fn:     re.MatchString,
	})
	return b
}

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	uuidRe  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// Email requires an RFC 5322-ish address shape.
func (b *StringBuilder) Email() *StringBuilder { return b.format("email", emailRe.MatchString) }

// UUID requires the 8-4-4-4-12 hex form.
func (b *StringBuilder) UUID() *StringBuilder { return b.format("uuid", uuidRe.MatchString) }

// URL requires an absolute URL with a scheme and host.
func (b *StringBuilder) URL() *StringBuilder {
	return b.format("url", func(v string) bool {
		u, err := url.Parse(v)
		return err == nil && u.Scheme != "" && u.Host != ""
	})
}

// Format attaches a named format predicate (invalid_format on failure).
func (b *StringBuilder) Format(name string, fn func(v string) bool) *StringBuilder {
	return b.format(name, fn)
}

func (b *StringBuilder) format(name string, fn func(v string) bool) *StringBuilder {
	b.p.checks = append(b.p.checks, check[string]{
		code: kata.CodeInvalidFormat, msg: "invalid " + name,
		params: map[string]any{"format": name},
		js:     func(s *js.Schema) { s.Format = name },
		fn:     fn,
	})
	return b
}

// Schema freezes the builder into an immutable string schema.
func (b *StringBuilder) Schema() kata.Schema[string] {
	cp := b.p
	cp.checks = append([]check[string](nil), b.p.checks...)
	return &cp
}

// AnyAdapter lets the builder appear directly as an object field or union
// alternative.
func (b *StringBuilder) AnyAdapter() AnyAdapter { return Of[string](b.Schema()) }
