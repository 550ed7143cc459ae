package util

import (
	"runtime"
	"sync/atomic"
)

// node represents a single element in the queue
type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// MPSC is a lock-free multi-producer single-consumer queue.
// Producers append with a CAS on the tail node, the consumer drains from the
// head in batches and parks on a one slot notify channel while the queue is empty.
type MPSC[T any] struct {
	head   atomic.Pointer[node[T]]
	tail   atomic.Pointer[node[T]]
	closed atomic.Bool
	length atomic.Int64

	// notify holds at most one pending wakeup for the consumer
	notify chan struct{}
}

// NewMPSC creates a new, empty queue
func NewMPSC[T any]() *MPSC[T] {
	// sentinel node (dummy node at the beginning)
	sentinel := &node[T]{}

	q := &MPSC[T]{
		notify: make(chan struct{}, 1),
	}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	return q
}

// Push adds an item to the queue.
// Returns true if the item was added, or false if the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *MPSC[T]) Push(value T) bool {
	if q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}
	var backoff uint8 = 0

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()

		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// may fail if another producer already advanced the tail
				q.tail.CompareAndSwap(tailNode, newNode)
				q.length.Add(1)
				q.wake()
				return true
			}
		} else {
			// help a producer that appended but has not advanced the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// spin first, yield under higher contention
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// PopBatch moves up to max items into dst and returns the extended slice.
// It never blocks. A max <= 0 drains everything that is currently queued.
//
// Thread-safety: must only be called by the single consumer.
func (q *MPSC[T]) PopBatch(dst []T, max int) []T {
	var zero T
	for n := 0; max <= 0 || n < max; n++ {
		head := q.head.Load()
		next := head.next.Load()
		if next == nil {
			break
		}

		dst = append(dst, next.value)
		q.head.Store(next)
		q.length.Add(-1)

		// help go gc, next is the new sentinel
		next.value = zero
	}
	return dst
}

// Wait blocks until the queue holds at least one item or is closed.
// It returns false once the queue is closed and fully drained.
//
// Thread-safety: must only be called by the single consumer.
func (q *MPSC[T]) Wait() bool {
	for {
		if q.head.Load().next.Load() != nil {
			return true
		}
		if q.closed.Load() {
			// a producer may have slipped in before the close
			return q.head.Load().next.Load() != nil
		}
		<-q.notify
	}
}

// Close closes the queue, preventing further writes.
// Items already in the queue can still be popped.
func (q *MPSC[T]) Close() {
	q.closed.Store(true)
	q.wake()
}

// IsClosed returns true if the queue is closed.
func (q *MPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns an approximate count of the items in the queue
func (q *MPSC[T]) Len() int {
	return int(q.length.Load())
}

// wake leaves a wakeup for the consumer without ever blocking the producer
func (q *MPSC[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
