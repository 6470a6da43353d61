package list

import "hop.computer/containers/pkg"

// Iterator is a bidirectional position in a List. The zero value is not a
// valid position. Iterators compare equal with == when they refer to the same
// node of the same list, and all End() iterators of a list are equal.
//
// An iterator is invalidated when its node is destroyed by a pop, erase, clear
// or assign. Using an invalidated iterator panics. Inserting or erasing other
// nodes does not affect it.
type Iterator[T any] struct {
	l *List[T]
	n *node[T]
}

// IsEnd reports whether it is the end position.
func (it Iterator[T]) IsEnd() bool {
	return it.n == nil
}

// Equal reports whether it and other refer to the same position.
func (it Iterator[T]) Equal(other Iterator[T]) bool {
	return it == other
}

// Next returns the following position. It panics at End().
func (it Iterator[T]) Next() Iterator[T] {
	if it.n == nil {
		pkg.Panicf("list: advance past end")
	}
	it.alive()
	return Iterator[T]{l: it.l, n: it.n.next}
}

// Prev returns the preceding position. Stepping back from End() yields the
// last element. It panics at the first element or on an empty list.
func (it Iterator[T]) Prev() Iterator[T] {
	if it.n == nil {
		if it.l == nil || it.l.tail == nil {
			pkg.Panicf("list: step back from end of empty list")
		}
		return Iterator[T]{l: it.l, n: it.l.tail}
	}
	it.alive()
	if it.n.prev == nil {
		pkg.Panicf("list: step back before begin")
	}
	return Iterator[T]{l: it.l, n: it.n.prev}
}

// Value returns the element at it. It panics at End().
func (it Iterator[T]) Value() T {
	return *it.Ref()
}

// Ref returns a pointer to the element at it. The pointer is valid until the
// node is destroyed. It panics at End().
func (it Iterator[T]) Ref() *T {
	if it.n == nil {
		pkg.Panicf("list: dereference of end iterator")
	}
	it.alive()
	return &it.n.value
}

// Set replaces the element at it. It panics at End().
func (it Iterator[T]) Set(v T) {
	*it.Ref() = v
}

func (it Iterator[T]) alive() {
	if it.n.owner == nil || it.n.owner != it.l {
		pkg.Panicf("list: use of invalidated iterator")
	}
}
