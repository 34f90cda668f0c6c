// Package dsl provides the combinators for declaring kata schemas: primitive
// builders (String, Number, Int, Float, Bool), Literal and Enum, the Object
// builder with per-field Default/Prefault/Catch behavior, arrays, tuples,
// records, maps, sets, ordered and discriminated unions, intersections,
// transforms and custom nodes.
//
// Builders mutate only during construction; Schema()/Build() freeze the node
// into an immutable schema that is safe for concurrent use. Type-erased
// composition goes through AnyAdapter (see Of and SchemaOf).
package dsl
