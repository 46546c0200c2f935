package pointer

// Ref returns pointer of v.
func Ref[T any](v T) *T {
	return &v
}

// Deref returns *p, or zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}
