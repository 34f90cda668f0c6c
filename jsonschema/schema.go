// Package jsonschema holds a minimal JSON Schema model used by schema
// projection. It covers the keywords the builders can express; it is not a
// general-purpose JSON Schema implementation.
package jsonschema

// Schema is a minimal, marshal-friendly JSON Schema node.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Types                []string           `json:"-"` // for nullable projections rendered as ["T","null"]
	Format               string             `json:"format,omitempty"`
	Pattern              string             `json:"pattern,omitempty"`
	MinLength            *int               `json:"minLength,omitempty"`
	MaxLength            *int               `json:"maxLength,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	ExclusiveMinimum     *float64           `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum     *float64           `json:"exclusiveMaximum,omitempty"`
	MultipleOf           *float64           `json:"multipleOf,omitempty"`
	MinItems             *int               `json:"minItems,omitempty"`
	MaxItems             *int               `json:"maxItems,omitempty"`
	UniqueItems          bool               `json:"uniqueItems,omitempty"`
	MinProperties        *int               `json:"minProperties,omitempty"`
	MaxProperties        *int               `json:"maxProperties,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Const                any                `json:"const,omitempty"`
	Default              any                `json:"default,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"` // bool or *Schema
	Items                *Schema            `json:"items,omitempty"`
	PrefixItems          []*Schema          `json:"prefixItems,omitempty"`
	OneOf                []*Schema          `json:"oneOf,omitempty"`
	AnyOf                []*Schema          `json:"anyOf,omitempty"`
	AllOf                []*Schema          `json:"allOf,omitempty"`
	Discriminator        *Discriminator     `json:"discriminator,omitempty"`
	Description          string             `json:"description,omitempty"`
}

// Discriminator records the discriminated-union key, OpenAPI style.
type Discriminator struct {
	PropertyName string `json:"propertyName"`
}

// IntPtr is a small helper for optional integer keywords.
func IntPtr(v int) *int { return &v }

// Float64Ptr is a small helper for optional numeric keywords.
func Float64Ptr(v float64) *float64 { return &v }
