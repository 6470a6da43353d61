// Package waiter implements a wait queue, where listeners can be registered to
// be notified of events. It is loosely based on the implementation in gVisor.
package waiter

import (
	"sync"

	"hop.computer/containers/pkg"
	"hop.computer/containers/pkg/list"
)

// Queue holds registered entries in registration order. Unlike the list it is
// built on, a Queue is safe for concurrent use. The zero value is an empty
// queue.
type Queue[T any] struct {
	l list.List[*Entry[T]]
	m sync.RWMutex
}

// Entry is a registration in a Queue. An Entry may be registered in at most one
// queue at a time.
type Entry[T any] struct {
	listener EventListener[T]

	// pos is the position of the entry in the queue it is registered with.
	queue *Queue[T]
	pos   list.Iterator[*Entry[T]]
}

// EventListener receives the events passed to Queue.Notify.
type EventListener[T any] interface {
	NotifyEvent(*T)
}

// NewEntry returns an unregistered entry that delivers events to l.
func NewEntry[T any](l EventListener[T]) *Entry[T] {
	return &Entry[T]{listener: l}
}

// Len returns the number of registered entries.
func (q *Queue[T]) Len() int {
	q.m.RLock()
	defer q.m.RUnlock()
	return q.l.Len()
}

// EventRegister adds e to the back of the queue. Registering an entry that is
// already in the queue does nothing. It panics if e is registered with a
// different queue.
func (q *Queue[T]) EventRegister(e *Entry[T]) {
	q.m.Lock()
	defer q.m.Unlock()
	if e.queue == q {
		return
	}
	if e.queue != nil {
		pkg.Panicf("waiter: entry is registered with another queue")
	}
	q.l.PushBack(e)
	e.queue = q
	e.pos = q.l.End().Prev()
}

// EventUnregister removes e from the queue in constant time. It returns false
// if e was not registered with q.
func (q *Queue[T]) EventUnregister(e *Entry[T]) bool {
	q.m.Lock()
	defer q.m.Unlock()
	if e.queue != q {
		return false
	}
	q.l.Erase(e.pos)
	e.queue = nil
	e.pos = list.Iterator[*Entry[T]]{}
	return true
}

// Notify passes ev to every registered listener in registration order.
// Listeners run with the queue read-locked and must not register or unregister
// entries of q.
func (q *Queue[T]) Notify(ev *T) {
	q.m.RLock()
	defer q.m.RUnlock()
	for entry := range q.l.All() {
		entry.listener.NotifyEvent(ev)
	}
}

type functionNotifier[T any] func(*T)

func (f functionNotifier[T]) NotifyEvent(t *T) {
	f(t)
}

// NewFunctionEntry returns an entry that calls f with each event.
func NewFunctionEntry[T any](f func(*T)) *Entry[T] {
	return NewEntry[T](functionNotifier[T](f))
}

type channelNotifier[T any] chan<- *T

func (c channelNotifier[T]) NotifyEvent(t *T) {
	c <- t
}

// NewChannelEntry returns an entry that sends each event on c. Notify blocks
// until the send completes.
func NewChannelEntry[T any](c chan<- *T) *Entry[T] {
	return NewEntry[T](channelNotifier[T](c))
}
