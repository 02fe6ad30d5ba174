package subscription

// Field is an optional patch field that distinguishes "not provided" from
// "explicitly set", including explicitly set to a zero or nil value. The
// zero Field is absent. Collapsing the two with falsy-coalescing would make
// it impossible to clear a field, so every Patch field uses this type.
type Field[T any] struct {
	value T
	set   bool
}

// Set returns a present Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Get returns the value and whether it was provided.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.set
}

// IsSet reports whether the field was provided.
func (f Field[T]) IsSet() bool {
	return f.set
}
