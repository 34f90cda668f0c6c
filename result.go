package kata

import "context"

// Result is the outcome of SafeParse: either a value or an issue list, never
// both. OK implies Issues is empty; !OK implies at least one issue.
type Result[T any] struct {
	OK     bool
	Value  T
	Issues Issues
}

// Err returns the issue list as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.OK || len(r.Issues) == 0 {
		return nil
	}
	return r.Issues
}

// SafeParse parses v into T without raising: validation failures are returned
// as data inside the Result.
func SafeParse[T any](ctx context.Context, s Schema[T], v any) Result[T] {
	val, err := s.Parse(ctx, v)
	if err != nil {
		var zero T
		iss, ok := AsIssues(err)
		if !ok {
			iss = Issues{{Code: CodeParseError, Message: err.Error(), Cause: err}}
		}
		return Result[T]{OK: false, Value: zero, Issues: iss}
	}
	return Result[T]{OK: true, Value: val}
}

// ParseAsync parses with asynchronous refinements/transforms permitted.
// Schemas carrying async steps reject the plain Parse entry point with a
// single async_required issue; this is the entry point that accepts them.
func ParseAsync[T any](ctx context.Context, s Schema[T], v any) (T, error) {
	return s.Parse(WithAsync(ctx, true), v)
}

// SafeParseAsync is SafeParse with asynchronous steps permitted.
func SafeParseAsync[T any](ctx context.Context, s Schema[T], v any) Result[T] {
	return SafeParse(WithAsync(ctx, true), s, v)
}
