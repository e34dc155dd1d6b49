package ptr

import "time"

func To[T any](v T) *T {
	return &v
}

// Deref returns the pointed value or the zero value.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// NonEmpty returns nil for an empty string.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func TimeIfSet(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
