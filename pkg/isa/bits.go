package isa

import "golang.org/x/exp/constraints"

// BitView is a read/write view over an unsigned integer, letting callers
// pack and unpack individual bit ranges without manual shifting at every
// call site.
type BitView[T constraints.Unsigned] struct {
	Bits *T
}

// CreateBitView returns a BitView over value.
func CreateBitView[T constraints.Unsigned](value *T) BitView[T] {
	return BitView[T]{Bits: value}
}

// AllOnes returns an all-ones bitmask of the given width.
func AllOnes[T constraints.Unsigned](width int) T {
	if width <= 0 {
		return 0
	}
	return (T(1) << width) - T(1)
}

// Read extracts width bits starting at bit.
func (v BitView[T]) Read(bit int, width int) T {
	return (*v.Bits >> bit) & AllOnes[T](width)
}

// Write copies the low width bits of value into the range [bit, bit+width).
// Bits of value that do not fit the range are truncated.
func (v BitView[T]) Write(value T, bit int, width int) {
	cleared := value & AllOnes[T](width)
	*v.Bits = (*v.Bits &^ (AllOnes[T](width) << bit)) | cleared<<bit
}
