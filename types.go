package kata

// UnknownPolicy controls how unknown object keys are handled. The zero value
// strips unknown keys, which is the default policy.
type UnknownPolicy int

const (
	UnknownStrip       UnknownPolicy = iota // Drop unknown keys (default).
	UnknownStrict                           // Reject unknown keys with an issue per key.
	UnknownPassthrough                      // Preserve unknown keys into a target field.
)

// NumberMode dictates how numbers are interpreted. The zero value preserves
// json.Number, which is the default for source-driven parsing.
type NumberMode int

const (
	NumberJSONNumber NumberMode = iota // Preserve json.Number (default).
	NumberFloat64                      // Fast mode (with potential precision loss).
)

// Strictness configures enforcement for duplicate keys and NaN handling.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
	AllowNaN       bool     // Allow NaN/±Inf values.
}

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// PresenceOpt configures presence collection for WithMeta-style parsing.
type PresenceOpt struct {
	Collect bool
	Include []string
	Exclude []string
}

// PathRenderOpt controls how presence paths are rendered into strings.
type PathRenderOpt struct {
	Intern bool // Deduplicate identical path strings across the map.
}

// ParseOpt bundles parsing options for the source-driven entry points.
type ParseOpt struct {
	Strictness Strictness
	NumberMode NumberMode
	MaxDepth   int
	MaxBytes   int64
	Presence   PresenceOpt
	PathRender PathRenderOpt
	FailFast   bool
}
