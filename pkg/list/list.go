// Package list implements a doubly-linked list
package list

import (
	"iter"

	"hop.computer/containers/pkg"
)

type node[T any] struct {
	next, prev *node[T]
	// owner is nil once the node has been destroyed.
	owner *List[T]
	value T
}

// Stats counts node allocations and releases over the lifetime of a list.
type Stats struct {
	Allocated int
	Released  int
}

// Live returns the number of nodes allocated and not yet released.
func (s Stats) Live() int {
	return s.Allocated - s.Released
}

// List implements a doubly linked-list of values. The list owns its nodes
// through the chain of next links; prev links are only used to walk backwards
// and relink. Head, tail, and size are tracked internally, so all operations
// are constant time unless noted otherwise. The zero value is an empty list.
// The list is not thread-safe.
type List[T any] struct {
	head, tail *node[T]
	size       int
	stats      Stats
}

// New returns a list holding n copies of val.
func New[T any](n int, val T) *List[T] {
	if n < 0 {
		pkg.Panicf("list: negative size %d", n)
	}
	l := new(List[T])
	for l.size < n {
		l.PushBack(val)
	}
	return l
}

// Clone returns a deep copy of l. No nodes are shared. This function is O(n).
func (l *List[T]) Clone() *List[T] {
	c := new(List[T])
	for n := l.head; n != nil; n = n.next {
		c.PushBack(n.value)
	}
	return c
}

// Assign replaces the contents of l with a copy of src. This function is
// O(len(l) + len(src)).
func (l *List[T]) Assign(src *List[T]) {
	if l == src {
		return
	}
	l.Clear()
	for n := src.head; n != nil; n = n.next {
		l.PushBack(n.value)
	}
}

// Len returns the length of the list. This function is constant time.
func (l *List[T]) Len() int {
	return l.size
}

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool {
	return l.size == 0
}

// Stats returns the node allocation counters of l.
func (l *List[T]) Stats() Stats {
	return l.stats
}

func (l *List[T]) newNode(v T, prev, next *node[T]) *node[T] {
	l.stats.Allocated++
	return &node[T]{
		next:  next,
		prev:  prev,
		owner: l,
		value: v,
	}
}

// destroy releases a node that has already been unlinked from the chain.
func (l *List[T]) destroy(n *node[T]) {
	var zero T
	n.next = nil
	n.prev = nil
	n.owner = nil
	n.value = zero
	l.stats.Released++
}

// PushFront prepends v to the list.
func (l *List[T]) PushFront(v T) {
	n := l.newNode(v, nil, l.head)
	if l.head == nil {
		l.tail = n
	} else {
		l.head.prev = n
	}
	l.head = n
	l.size++
}

// PushBack appends v to the list.
func (l *List[T]) PushBack(v T) {
	n := l.newNode(v, l.tail, nil)
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.size++
}

// PopFront removes the first item from the list. It does nothing if the list
// is empty.
func (l *List[T]) PopFront() {
	if l.head == nil {
		return
	}
	old := l.head
	if l.size == 1 {
		l.head = nil
		l.tail = nil
	} else {
		l.head = old.next
		l.head.prev = nil
	}
	l.destroy(old)
	l.size--
}

// PopBack removes the last item from the list. It does nothing if the list is
// empty.
func (l *List[T]) PopBack() {
	if l.tail == nil {
		return
	}
	old := l.tail
	if l.size == 1 {
		l.head = nil
		l.tail = nil
	} else {
		l.tail = old.prev
		l.tail.next = nil
	}
	l.destroy(old)
	l.size--
}

// Insert adds v before the position it. Inserting at Begin() is PushFront and
// inserting at End() is PushBack.
//
// Insert returns it unchanged, not an iterator to v. Since it still refers to
// the same node, the new element is at it.Prev().
func (l *List[T]) Insert(it Iterator[T], v T) Iterator[T] {
	l.own(it)
	switch {
	case it.n == l.head:
		l.PushFront(v)
	case it.n == nil:
		l.PushBack(v)
	default:
		it.alive()
		n := l.newNode(v, it.n.prev, it.n)
		it.n.prev.next = n
		it.n.prev = n
		l.size++
	}
	return it
}

// Erase removes the element at it and returns it unchanged. Unless it was
// End(), the returned iterator no longer refers to a live node and must not be
// dereferenced or stepped.
//
// Erasing at Begin() is PopFront. Erasing at End() is PopBack: it removes the
// last element instead of failing.
func (l *List[T]) Erase(it Iterator[T]) Iterator[T] {
	l.own(it)
	switch {
	case it.n == l.head:
		l.PopFront()
	case it.n == nil:
		l.PopBack()
	case it.n == l.tail:
		l.PopBack()
	default:
		it.alive()
		n := it.n
		n.next.prev = n.prev
		n.prev.next = n.next
		l.destroy(n)
		l.size--
	}
	return it
}

// Clear removes every element from the front. This function is O(n).
func (l *List[T]) Clear() {
	for l.size > 0 {
		l.PopFront()
	}
}

// Resize pushes copies of val onto the back, or pops from the back, until the
// list has n elements.
func (l *List[T]) Resize(n int, val T) {
	if n < 0 {
		pkg.Panicf("list: negative size %d", n)
	}
	for l.size < n {
		l.PushBack(val)
	}
	for l.size > n {
		l.PopBack()
	}
}

// Front returns the first item in the list. It panics if the list is empty.
func (l *List[T]) Front() T {
	if l.head == nil {
		pkg.Panicf("list: front of empty list")
	}
	return l.head.value
}

// Back returns the last item in the list. It panics if the list is empty.
func (l *List[T]) Back() T {
	if l.tail == nil {
		pkg.Panicf("list: back of empty list")
	}
	return l.tail.value
}

// Begin returns an iterator at the start of the list. It equals End() if the
// list is empty.
func (l *List[T]) Begin() Iterator[T] {
	return Iterator[T]{l: l, n: l.head}
}

// End returns the iterator one past the last element.
func (l *List[T]) End() Iterator[T] {
	return Iterator[T]{l: l}
}

// All iterates over the values from front to back.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.head; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Backward iterates over the values from back to front.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.tail; n != nil; n = n.prev {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Values returns the elements of the list in order. This function is O(n).
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.size)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.value)
	}
	return out
}

func (l *List[T]) own(it Iterator[T]) {
	if it.l != l {
		pkg.Panicf("list: iterator belongs to a different list")
	}
}
