package kata

import (
	"context"
	"errors"

	js "github.com/kataform/kata/jsonschema"
)

// Schema surfaces the pillars of construction, type checking, value
// validation, and typed validation.
type Schema[T any] interface {
	// Parse transforms an unknown input into T (Coerce -> Normalize ->
	// Validate -> Refine -> Transform). It returns Issues when validation fails.
	Parse(ctx context.Context, v any) (T, error)
	// ParseWithMeta returns the typed value together with presence metadata.
	ParseWithMeta(ctx context.Context, v any) (Decoded[T], error)

	// TypeCheck verifies structure, types, presence/nullable/unknown-policy
	// decisions, and determines which union branch applies.
	TypeCheck(ctx context.Context, v any) error

	// RuleCheck runs min/max/length/pattern/enum/refine validations assuming
	// TypeCheck already succeeded.
	RuleCheck(ctx context.Context, v any) error

	// Validate composes TypeCheck followed by RuleCheck.
	Validate(ctx context.Context, v any) error

	// ValidateValue verifies a value already typed as T without any conversion.
	ValidateValue(ctx context.Context, v T) error

	// JSONSchema projects the schema into a JSON Schema representation.
	JSONSchema() (*js.Schema, error)
}

// Codec performs bidirectional transformation and validation between the wire
// representation A and the domain representation B.
type Codec[A, B any] interface {
	In() Schema[A]                              // Wire schema (input side).
	Out() Schema[B]                             // Domain schema (output side).
	Decode(ctx context.Context, a A) (B, error) // A (In) -> B (convert) -> Out.ValidateValue.
	Encode(ctx context.Context, b B) (A, error) // Out.ValidateValue -> A -> In.Parse for revalidation.
	// DecodeWithMeta returns the value and presence metadata (enabling
	// preserving encode).
	DecodeWithMeta(ctx context.Context, a A) (Decoded[B], error)
	// EncodePreserving emits output using preserving semantics guided by
	// presence metadata.
	EncodePreserving(ctx context.Context, db Decoded[B]) (A, error)
}

// EncodeMode exposes canonical vs preserving output intent at call sites.
type EncodeMode int

const (
	EncodeCanonical EncodeMode = iota
	EncodePreserve
)

// ErrEncodePreserveRequiresPresence indicates EncodePreserve was requested
// without presence metadata. Use EncodeWithDecoded with a Decoded value.
var ErrEncodePreserveRequiresPresence = errors.New("kata: encode preserve requires presence; supply Decoded via EncodeWithDecoded")

// EncodeWithMode encodes a domain value using the given mode. Preserving
// semantics require presence metadata, so EncodePreserve fails here.
func EncodeWithMode[A, B any](ctx context.Context, c Codec[A, B], b B, mode EncodeMode) (A, error) {
	if mode == EncodePreserve {
		var zero A
		return zero, ErrEncodePreserveRequiresPresence
	}
	return c.Encode(ctx, b)
}

// EncodeWithDecoded encodes a domain value, consuming presence information
// when mode is EncodePreserve.
func EncodeWithDecoded[A, B any](ctx context.Context, c Codec[A, B], db Decoded[B], mode EncodeMode) (A, error) {
	switch mode {
	case EncodePreserve:
		return c.EncodePreserving(ctx, db)
	default:
		return c.Encode(ctx, db.Value)
	}
}

// Decode is a thin wrapper around Schema.Parse for the forward
// (input -> output) direction. For typed domain decoding prefer Codec.Decode.
func Decode[T any](ctx context.Context, s Schema[T], v any) (T, error) {
	return s.Parse(ctx, v)
}

// Encode is a convenience wrapper over Codec.Encode (output -> input).
// Callers must provide a Codec because a generic Schema does not define
// encode semantics; bidirectional transforms stay explicit and type-safe.
func Encode[A, B any](ctx context.Context, c Codec[A, B], b B) (A, error) {
	return c.Encode(ctx, b)
}

// Normalizer provides an optional hook to normalize typed values during the
// Normalize phase of parsing. If it is not implemented, the phase is skipped.
type Normalizer[T any] interface {
	Normalize(ctx context.Context, v T) (T, error)
}

// Refiner provides an optional hook at the end of parsing to perform
// cross-field validation. If it is not implemented, the phase is skipped.
type Refiner[T any] interface {
	Refine(ctx context.Context, v T) error
}

// Is returns true if v conforms to the schema s (TypeCheck+RuleCheck).
func Is[T any](ctx context.Context, s Schema[T], v any) bool {
	return s.Validate(ctx, v) == nil
}

// ---- Parse-time context options (internal wiring, exported for subpackages) ----

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
	_ctxKeyAsync
)

// WithFailFast returns a child context that marks fail-fast parsing behavior.
// Set by ParseFrom based on ParseOpt and consumed by schema implementations.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current parse should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}

// WithAsync returns a child context that permits asynchronous refinement and
// transform steps. Set by the *Async entry points.
func WithAsync(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyAsync, enabled)
}

// IsAsyncAllowed reports whether asynchronous steps may run for this parse.
func IsAsyncAllowed(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyAsync)
	b, _ := v.(bool)
	return b
}
