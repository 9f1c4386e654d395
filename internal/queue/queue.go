package queue

import (
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Send and Release once every producer handle
	// has been released.
	ErrClosed = errors.New("queue is closed")
)

const (
	// compactThreshold is the number of consumed slots at the front of the
	// buffer after which the live items are shifted down.
	compactThreshold = 64
)

// Queue is an unbounded FIFO shared by many producers and many consumers.
//
// Both ends go through a single mutex, held only for the enqueue or dequeue
// itself. Consumers block on a condition variable until an item arrives or the
// queue closes.
//
// The queue tracks how many producer handles are still alive. Releasing the
// last one closes the queue: pending items can still be received, after which
// Recv reports false to every consumer. This is how a collector learns that no
// more values will ever arrive without counting them.
type Queue[T any] struct {
	mu      sync.Mutex
	ready   *sync.Cond
	buf     []T
	head    int
	senders int
	closed  bool
}

// New creates a queue with the given number of live producer handles.
// Values below one are treated as one.
func New[T any](senders int) *Queue[T] {
	q := &Queue[T]{
		senders: max(senders, 1),
	}
	q.ready = sync.NewCond(&q.mu)
	return q
}

// Send appends v to the tail of the queue and wakes one waiting consumer.
// It never blocks on capacity.
func (q *Queue[T]) Send(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.buf = append(q.buf, v)
	q.ready.Signal()
	return nil
}

// Recv removes and returns the item at the head of the queue, blocking while
// the queue is empty. The boolean is false only when the queue is closed and
// fully drained.
func (q *Queue[T]) Recv() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == len(q.buf) && !q.closed {
		q.ready.Wait()
	}

	if q.head == len(q.buf) {
		var zero T
		return zero, false
	}

	return q.pop(), true
}

// Release drops one producer handle. When the last handle is released the
// queue closes and every blocked consumer is woken up.
func (q *Queue[T]) Release() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.senders--
	if q.senders == 0 {
		q.closed = true
		q.ready.Broadcast()
	}
	return nil
}

// Len returns the number of items waiting to be received.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf) - q.head
}

// Closed reports whether every producer handle has been released.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// pop must be called with q.mu held and at least one item buffered.
func (q *Queue[T]) pop() T {
	var zero T
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head++

	switch {
	case q.head == len(q.buf):
		q.buf = q.buf[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.buf):
		n := copy(q.buf, q.buf[q.head:])
		clear(q.buf[n:])
		q.buf = q.buf[:n]
		q.head = 0
	}

	return v
}
