// Package kata provides runtime schema declaration and data validation:
//
//   - Schema declaration via composable combinators (dsl package) and
//     type-safe validation/transformation through Schema[T] and Codec[A,B]
//   - A stable error model via Issues (JSON Pointer path, code, message)
//   - Defaults, prefault and catch values with Presence metadata (WithMeta APIs)
//   - Source-driven parsing (JSON/YAML) with duplicate-key/depth/size enforcement
//   - Asynchronous refinements with concurrent sibling-field validation
//
// Design policy:
//   - Keep only public APIs in the root package; implementation details live
//     under internal/.
//   - Place combinators under dsl/, codecs under codec/, cross-field rule
//     helpers under rules/.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := buildSchema()
//	v, err := s.Parse(ctx, input)
//	res := kata.SafeParse(ctx, s, input)
//	v, err = kata.ParseFrom(ctx, s, kata.JSONBytes(data))
package kata
