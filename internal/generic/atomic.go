package generic

import "sync/atomic"

// Atomic is a type-safe wrapper around atomic.Value for values that
// are published wholesale and read without locking.
type Atomic[T any] struct {
	value atomic.Value
}

// Load returns the last stored value. The ok result is false if
// nothing has been stored yet.
func (v *Atomic[T]) Load() (T, bool) {
	if val := v.value.Load(); val != nil {
		return val.(T), true
	}

	var zero T

	return zero, false
}

// Store atomically replaces the value.
func (v *Atomic[T]) Store(value T) {
	v.value.Store(value)
}
