// Package array implements a growable contiguous sequence with explicit
// capacity management.
package array

import (
	"errors"
	"iter"

	pkgerrors "github.com/pkg/errors"

	"hop.computer/containers/pkg"
)

// MinCapacity is the smallest buffer an Array allocates.
const MinCapacity = 10

// ErrOutOfRange is returned by At when the index is outside [0, Len()).
var ErrOutOfRange = errors.New("invalid array access")

// Array is a dynamic array. The backing buffer is owned exclusively by the
// Array, and len(buf) is the capacity. Slots at or past Len() always hold the
// zero value of T.
//
// Positions are plain indices. Any operation that inserts, erases or
// reallocates invalidates every outstanding position. The zero value is an
// empty array. An Array is not thread-safe.
type Array[T any] struct {
	buf      []T
	size     int
	reallocs int
}

// New returns an array holding n copies of val. The capacity is
// max(MinCapacity, 2n) so small arrays have room to grow before the first
// reallocation.
func New[T any](n int, val T) *Array[T] {
	if n < 0 {
		pkg.Panicf("array: negative size %d", n)
	}
	a := &Array[T]{
		buf:  make([]T, max(MinCapacity, 2*n)),
		size: n,
	}
	for i := 0; i < n; i++ {
		a.buf[i] = val
	}
	return a
}

// Clone returns a deep copy of a. The copy has the same capacity, and every
// slot of the buffer is copied, not just the live elements.
func (a *Array[T]) Clone() *Array[T] {
	c := &Array[T]{
		buf:  make([]T, len(a.buf)),
		size: a.size,
	}
	copy(c.buf, a.buf)
	return c
}

// Assign replaces the contents of a with a copy of the live elements of src.
// The old buffer is dropped and a ends up with the capacity of src.
func (a *Array[T]) Assign(src *Array[T]) {
	if a == src {
		return
	}
	a.buf = make([]T, len(src.buf))
	copy(a.buf, src.buf[:src.size])
	a.size = src.size
}

// Len returns the number of live elements.
func (a *Array[T]) Len() int {
	return a.size
}

// Cap returns the number of allocated slots.
func (a *Array[T]) Cap() int {
	return len(a.buf)
}

// Empty reports whether the array holds no elements.
func (a *Array[T]) Empty() bool {
	return a.size == 0
}

// Reallocations returns how many times the backing buffer has been replaced by
// a larger one.
func (a *Array[T]) Reallocations() int {
	return a.reallocs
}

// Reserve grows the capacity to exactly c. It does nothing if c is not larger
// than the current capacity; the buffer never shrinks.
func (a *Array[T]) Reserve(c int) {
	if c <= len(a.buf) {
		return
	}
	buf := make([]T, c)
	copy(buf, a.buf[:a.size])
	a.buf = buf
	a.reallocs++
}

// Resize pops elements from the back until Len() is n, or pushes copies of val
// until it is.
func (a *Array[T]) Resize(n int, val T) {
	if n < 0 {
		pkg.Panicf("array: negative size %d", n)
	}
	for n < a.size {
		a.PopBack()
	}
	for n > a.size {
		a.PushBack(val)
	}
}

// grow is the capacity used by the doubling strategy.
func (a *Array[T]) grow() int {
	if len(a.buf) == 0 {
		return MinCapacity
	}
	return 2 * len(a.buf)
}

// PushBack appends v, doubling the capacity if the array is full. Amortized
// constant time.
func (a *Array[T]) PushBack(v T) {
	if a.size == len(a.buf) {
		a.Reserve(a.grow())
	}
	a.buf[a.size] = v
	a.size++
}

// PushBackIncremental appends v, growing the capacity by a single slot if the
// array is full. A sequence of n appends costs O(n^2) copies; it exists to be
// compared against PushBack.
func (a *Array[T]) PushBackIncremental(v T) {
	if a.size == len(a.buf) {
		a.Reserve(len(a.buf) + 1)
	}
	a.buf[a.size] = v
	a.size++
}

// PopBack removes the last element and resets its slot. It does nothing on an
// empty array.
func (a *Array[T]) PopBack() {
	if a.size == 0 {
		return
	}
	var zero T
	a.buf[a.size-1] = zero
	a.size--
}

// Insert places v immediately before pos, shifting [pos, Len()) one slot to
// the right, and returns the position of v.
//
// Insert never grows the buffer. The caller must make room with Reserve first:
// Insert panics if Len() == Cap() or pos is outside [0, Len()].
func (a *Array[T]) Insert(pos int, v T) int {
	if a.size >= len(a.buf) {
		pkg.Panicf("array: insert without spare capacity (len %d, cap %d)", a.size, len(a.buf))
	}
	if pos < 0 || pos > a.size {
		pkg.Panicf("array: insert position %d out of range [0, %d]", pos, a.size)
	}
	copy(a.buf[pos+1:a.size+1], a.buf[pos:a.size])
	a.buf[pos] = v
	a.size++
	return pos
}

// Erase removes the element at pos, shifting the elements after it one slot
// to the left. It returns pos, which now holds the element that followed the
// erased one, or equals End() if the last element was erased. Erase panics if
// pos is outside [0, Len()).
func (a *Array[T]) Erase(pos int) int {
	if pos < 0 || pos >= a.size {
		pkg.Panicf("array: erase position %d out of range [0, %d)", pos, a.size)
	}
	copy(a.buf[pos:a.size-1], a.buf[pos+1:a.size])
	var zero T
	a.buf[a.size-1] = zero
	a.size--
	return pos
}

// Clear removes every element back to front. The capacity is unchanged.
func (a *Array[T]) Clear() {
	for a.size > 0 {
		a.PopBack()
	}
}

func (a *Array[T]) check(i int) {
	if i < 0 || i >= a.size {
		pkg.Panicf("array: index %d out of range [0, %d)", i, a.size)
	}
}

// Index returns the element at i without returning an error. The caller must
// guarantee 0 <= i < Len(); otherwise Index panics.
func (a *Array[T]) Index(i int) T {
	a.check(i)
	return a.buf[i]
}

// Ref returns a pointer to the element at i. The pointer is invalidated by any
// reallocation. Ref panics outside [0, Len()).
func (a *Array[T]) Ref(i int) *T {
	a.check(i)
	return &a.buf[i]
}

// Set replaces the element at i. Set panics outside [0, Len()).
func (a *Array[T]) Set(i int, v T) {
	a.check(i)
	a.buf[i] = v
}

// At returns the element at i, or an error wrapping ErrOutOfRange.
func (a *Array[T]) At(i int) (T, error) {
	if i < 0 || i >= a.size {
		var zero T
		return zero, pkgerrors.Wrapf(ErrOutOfRange, "index %d, size %d", i, a.size)
	}
	return a.buf[i], nil
}

// Front returns the first element. It panics on an empty array.
func (a *Array[T]) Front() T {
	if a.size == 0 {
		pkg.Panicf("array: front of empty array")
	}
	return a.buf[0]
}

// Back returns the last element. It panics on an empty array.
func (a *Array[T]) Back() T {
	if a.size == 0 {
		pkg.Panicf("array: back of empty array")
	}
	return a.buf[a.size-1]
}

// Begin returns the position of the first element.
func (a *Array[T]) Begin() int {
	return 0
}

// End returns the position one past the last element.
func (a *Array[T]) End() int {
	return a.size
}

// All iterates over the live elements front to back.
func (a *Array[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < a.size; i++ {
			if !yield(i, a.buf[i]) {
				return
			}
		}
	}
}

// Backward iterates over the live elements back to front.
func (a *Array[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := a.size - 1; i >= 0; i-- {
			if !yield(i, a.buf[i]) {
				return
			}
		}
	}
}

// Values returns a copy of the live elements.
func (a *Array[T]) Values() []T {
	out := make([]T, a.size)
	copy(out, a.buf[:a.size])
	return out
}
