// Package seq defines the operations shared by the array and list containers,
// and helpers that work on either.
package seq

import (
	"golang.org/x/exp/slices"

	"hop.computer/containers/pkg/array"
	"hop.computer/containers/pkg/list"
)

// Sequence is the contract common to array.Array and list.List.
type Sequence[T any] interface {
	Len() int
	Empty() bool
	PushBack(v T)
	PopBack()
	Front() T
	Back() T
	Resize(n int, val T)
	Clear()
	Values() []T
}

var _ Sequence[int] = (*array.Array[int])(nil)
var _ Sequence[int] = (*list.List[int])(nil)

// Collect returns the elements of s in order.
func Collect[T any](s Sequence[T]) []T {
	return s.Values()
}

// Equal reports whether a and b hold the same elements in the same order.
func Equal[T comparable](a, b Sequence[T]) bool {
	if a.Len() != b.Len() {
		return false
	}
	return slices.Equal(a.Values(), b.Values())
}

// Fill appends every element of vals to s.
func Fill[T any](s Sequence[T], vals ...T) {
	for _, v := range vals {
		s.PushBack(v)
	}
}

// Drain pops every element from the back of s and returns them in the order
// they were removed.
func Drain[T any](s Sequence[T]) []T {
	out := make([]T, 0, s.Len())
	for !s.Empty() {
		out = append(out, s.Back())
		s.PopBack()
	}
	return out
}
