package dsl

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	kata "github.com/kataform/kata"
	js "github.com/kataform/kata/jsonschema"
)

// numericBuilder carries the numeric constraint set shared by Number, Int and
// Float. toF converts the node's value type to float64 for bound checks.
type numericBuilder[T any, B any] struct {
	p    primitiveSchema[T]
	toF  func(T) float64
	self *B
}

func (n *numericBuilder[T, B]) min(v float64) *B {
	n.p.checks = append(n.p.checks, check[T]{
		code: kata.CodeTooSmall, msg: fmt.Sprintf("must be >= %v", v),
		params: map[string]any{"min": v},
		js:     func(s *js.Schema) { s.Minimum = js.Float64Ptr(v) },
		fn:     func(x T) bool { return n.toF(x) >= v },
	})
	return n.self
}

func (n *numericBuilder[T, B]) max(v float64) *B {
	n.p.checks = append(n.p.checks, check[T]{
		code: kata.CodeTooBig, msg: fmt.Sprintf("must be <= %v", v),
		params: map[string]any{"max": v},
		js:     func(s *js.Schema) { s.Maximum = js.Float64Ptr(v) },
		fn:     func(x T) bool { return n.toF(x) <= v },
	})
	return n.self
}

func (n *numericBuilder[T, B]) multipleOf(v float64) *B {
	n.p.checks = append(n.p.checks, check[T]{
		code: kata.CodeNotMultipleOf, msg: fmt.Sprintf("must be a multiple of %v", v),
		params: map[string]any{"multipleOf": v},
		js:     func(s *js.Schema) { s.MultipleOf = js.Float64Ptr(v) },
		fn: func(x T) bool {
			if v == 0 {
				return false
			}
			q := n.toF(x) / v
			return math.Abs(q-math.Round(q)) < 1e-9
		},
	})
	return n.self
}

func (n *numericBuilder[T, B]) positive() *B {
	n.p.checks = append(n.p.checks, check[T]{
		code: kata.CodeTooSmall, msg: "must be > 0",
		params: map[string]any{"exclusiveMin": 0},
		js:     func(s *js.Schema) { s.ExclusiveMinimum = js.Float64Ptr(0) },
		fn:     func(x T) bool { return n.toF(x) > 0 },
	})
	return n.self
}

func (n *numericBuilder[T, B]) negative() *B {
	n.p.checks = append(n.p.checks, check[T]{
		code: kata.CodeTooBig, msg: "must be < 0",
		params: map[string]any{"exclusiveMax": 0},
		js:     func(s *js.Schema) { s.ExclusiveMaximum = js.Float64Ptr(0) },
		fn:     func(x T) bool { return n.toF(x) < 0 },
	})
	return n.self
}

func (n *numericBuilder[T, B]) integer() *B {
	n.p.checks = append(n.p.checks, check[T]{
		code: kata.CodeInvalidType, msg: "must be an integer",
		params: map[string]any{"expected": "integer"},
		fn: func(x T) bool {
			f := n.toF(x)
			return f == math.Trunc(f)
		},
	})
	return n.self
}

// ---- Number: arbitrary-precision carrier (json.Number) ----

// NumberBuilder declares a number schema whose parsed value is json.Number,
// preserving the input text without float64 precision loss.
type NumberBuilder struct {
	numericBuilder[json.Number, NumberBuilder]
}

// Number starts a number schema carried as json.Number.
func Number() *NumberBuilder {
	b := &NumberBuilder{}
	b.self = b
	b.p.typeName = "number"
	b.p.jsType = "number"
	b.p.conv = convNumber
	b.toF = func(n json.Number) float64 {
		f, _ := n.Float64()
		return f
	}
	return b
}

func convNumber(v any, coerce bool) (json.Number, bool) {
	switch t := v.(type) {
	case json.Number:
		return t, true
	case float64:
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64)), true
	case int:
		return json.Number(strconv.Itoa(t)), true
	case int64:
		return json.Number(strconv.FormatInt(t, 10)), true
	case string:
		if !coerce {
			return "", false
		}
		if _, err := strconv.ParseFloat(t, 64); err != nil {
			return "", false
		}
		return json.Number(t), true
	default:
		return "", false
	}
}

func (b *NumberBuilder) Coerce() *NumberBuilder              { b.p.coerce = true; return b }
func (b *NumberBuilder) Min(v float64) *NumberBuilder        { return b.min(v) }
func (b *NumberBuilder) Max(v float64) *NumberBuilder        { return b.max(v) }
func (b *NumberBuilder) MultipleOf(v float64) *NumberBuilder { return b.multipleOf(v) }
func (b *NumberBuilder) Positive() *NumberBuilder            { return b.positive() }
func (b *NumberBuilder) Negative() *NumberBuilder            { return b.negative() }
func (b *NumberBuilder) Integer() *NumberBuilder             { return b.integer() }

// Schema freezes the builder into an immutable number schema.
func (b *NumberBuilder) Schema() kata.Schema[json.Number] {
	cp := b.p
	cp.checks = append([]check[json.Number](nil), b.p.checks...)
	return &cp
}

func (b *NumberBuilder) AnyAdapter() AnyAdapter { return Of[json.Number](b.Schema()) }

// ---- Int: int64 carrier ----

// IntBuilder declares an integer schema carried as int64. Inputs with a
// fractional part report invalid_type; integral inputs beyond the int64 range
// report overflow.
type IntBuilder struct {
	numericBuilder[int64, IntBuilder]
}

// Int starts an int64 schema.
func Int() *IntBuilder {
	b := &IntBuilder{}
	b.self = b
	b.p.typeName = "integer"
	b.p.jsType = "integer"
	b.p.conv = convInt
	b.p.convIssue = intConvIssue
	b.toF = func(n int64) float64 { return float64(n) }
	return b
}

func convInt(v any, coerce bool) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		return 0, false
	case float64:
		if t == math.Trunc(t) && t >= math.MinInt64 && t < math.MaxInt64 {
			return int64(t), true
		}
		return 0, false
	case string:
		if !coerce {
			return 0, false
		}
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// intConvIssue distinguishes integral-but-out-of-range inputs from plain type
// mismatches.
func intConvIssue(v any) *kata.Issue {
	var f float64
	switch t := v.(type) {
	case json.Number:
		pf, err := t.Float64()
		if err != nil {
			return nil
		}
		f = pf
	case float64:
		f = t
	default:
		return nil
	}
	if f != math.Trunc(f) {
		return nil
	}
	return &kata.Issue{Path: "/", Code: kata.CodeOverflow,
		Message: "integer out of int64 range", Params: map[string]any{"got": fmt.Sprint(v)}}
}

func (b *IntBuilder) Coerce() *IntBuilder            { b.p.coerce = true; return b }
func (b *IntBuilder) Min(v int64) *IntBuilder        { return b.min(float64(v)) }
func (b *IntBuilder) Max(v int64) *IntBuilder        { return b.max(float64(v)) }
func (b *IntBuilder) MultipleOf(v int64) *IntBuilder { return b.multipleOf(float64(v)) }
func (b *IntBuilder) Positive() *IntBuilder          { return b.positive() }
func (b *IntBuilder) Negative() *IntBuilder          { return b.negative() }

// Schema freezes the builder into an immutable int64 schema.
func (b *IntBuilder) Schema() kata.Schema[int64] {
	cp := b.p
	cp.checks = append([]check[int64](nil), b.p.checks...)
	return &cp
}

func (b *IntBuilder) AnyAdapter() AnyAdapter { return Of[int64](b.Schema()) }

// ---- Float: float64 carrier ----

// FloatBuilder declares a number schema carried as float64 (fast mode).
type FloatBuilder struct {
	numericBuilder[float64, FloatBuilder]
}

// Float starts a float64 schema.
func Float() *FloatBuilder {
	b := &FloatBuilder{}
	b.self = b
	b.p.typeName = "number"
	b.p.jsType = "number"
	b.p.conv = convFloat
	b.toF = func(f float64) float64 { return f }
	return b
}

func convFloat(v any, coerce bool) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		if !coerce {
			return 0, false
		}
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (b *FloatBuilder) Coerce() *FloatBuilder              { b.p.coerce = true; return b }
func (b *FloatBuilder) Min(v float64) *FloatBuilder        { return b.min(v) }
func (b *FloatBuilder) Max(v float64) *FloatBuilder        { return b.max(v) }
func (b *FloatBuilder) MultipleOf(v float64) *FloatBuilder { return b.multipleOf(v) }
func (b *FloatBuilder) Positive() *FloatBuilder            { return b.positive() }
func (b *FloatBuilder) Negative() *FloatBuilder            { return b.negative() }
func (b *FloatBuilder) Integer() *FloatBuilder             { return b.integer() }

// Schema freezes the builder into an immutable float64 schema.
func (b *FloatBuilder) Schema() kata.Schema[float64] {
	cp := b.p
	cp.checks = append([]check[float64](nil), b.p.checks...)
	return &cp
}

func (b *FloatBuilder) AnyAdapter() AnyAdapter { return Of[float64](b.Schema()) }

// ---- Bool ----

// BoolBuilder declares a bool schema.
type BoolBuilder struct {
	p primitiveSchema[bool]
}

// Bool starts a bool schema.
func Bool() *BoolBuilder {
	b := &BoolBuilder{}
	b.p.typeName = "bool"
	b.p.jsType = "boolean"
	b.p.conv = convBool
	return b
}

func convBool(v any, coerce bool) (bool, bool) {
	if t, ok := v.(bool); ok {
		return t, true
	}
	if !coerce {
		return false, false
	}
	switch t := v.(type) {
	case string:
		switch t {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
		return false, false
	case json.Number:
		switch t.String() {
		case "1":
			return true, true
		case "0":
			return false, true
		}
		return false, false
	case float64:
		switch t {
		case 1:
			return true, true
		case 0:
			return false, true
		}
		return false, false
	case int:
		switch t {
		case 1:
			return true, true
		case 0:
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// Coerce accepts "true"/"false"/"1"/"0" strings and 0/1 numbers.
func (b *BoolBuilder) Coerce() *BoolBuilder { b.p.coerce = true; return b }

// Schema freezes the builder into an immutable bool schema.
func (b *BoolBuilder) Schema() kata.Schema[bool] {
	cp := b.p
	cp.checks = append([]check[bool](nil), b.p.checks...)
	return &cp
}

func (b *BoolBuilder) AnyAdapter() AnyAdapter { return Of[bool](b.Schema()) }
