package utils

import "context"

// FromContext returns the value stored under key when it has type T.
func FromContext[T any](ctx context.Context, key any) (T, bool) {
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func GetString(ctx context.Context, key any) (string, bool) {
	return FromContext[string](ctx, key)
}
