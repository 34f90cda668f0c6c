package kata

import "context"

// ApplyNormalize runs the optional Normalize hook when s implements
// Normalizer[T]. Schemas without the hook pass v through unchanged.
func ApplyNormalize[T any](ctx context.Context, v T, s Schema[T]) (T, error) {
	if n, ok := any(s).(Normalizer[T]); ok {
		return n.Normalize(ctx, v)
	}
	return v, nil
}

// ApplyRefine runs the optional Refine hook when s implements Refiner[T].
func ApplyRefine[T any](ctx context.Context, v T, s Schema[T]) error {
	if r, ok := any(s).(Refiner[T]); ok {
		return r.Refine(ctx, v)
	}
	return nil
}
