package router

import (
	"sync"
)

// Queue is an unbounded FIFO that blocks consumers while empty.
// Enqueue never blocks; the ring doubles when full.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int // next item to dequeue
	count  int
	closed bool

	enqueued  int64
	dequeued  int64
	discarded int64
	grows     int
}

// NewQueue creates a queue with room for initialCapacity items before growing.
func NewQueue[T any](initialCapacity int) *Queue[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	q := &Queue[T]{
		ring: make([]T, initialCapacity),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an item. Returns false if the queue is closed.
func (q *Queue[T]) Enqueue(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if q.count == len(q.ring) {
		q.grow()
	}

	q.ring[(q.head+q.count)%len(q.ring)] = item
	q.count++
	q.enqueued++

	q.cond.Signal()
	return true
}

// Dequeue blocks until an item is available or the queue is closed and empty.
func (q *Queue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}

	if q.count == 0 {
		var zero T
		return zero, false
	}

	return q.pop(), true
}

// tryDequeue returns the next item without waiting.
func (q *Queue[T]) tryDequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		var zero T
		return zero, false
	}

	return q.pop(), true
}

// Close stops further enqueues. Items already buffered remain available to Dequeue.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Discard closes the queue and drops everything still buffered.
// Returns the number of dropped items.
func (q *Queue[T]) Discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := q.count
	var zero T
	for i := 0; i < q.count; i++ {
		q.ring[(q.head+i)%len(q.ring)] = zero
	}
	q.head = 0
	q.count = 0
	q.discarded += int64(dropped)
	q.closed = true
	q.cond.Broadcast()

	return dropped
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Stats returns queue counters.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Len:       q.count,
		Capacity:  len(q.ring),
		Enqueued:  q.enqueued,
		Dequeued:  q.dequeued,
		Discarded: q.discarded,
		Grows:     q.grows,
		Closed:    q.closed,
	}
}

// QueueStats contains queue counters.
type QueueStats struct {
	Len       int
	Capacity  int
	Enqueued  int64
	Dequeued  int64
	Discarded int64
	Grows     int
	Closed    bool // Close or Discard has been called
}

// pop removes the head item. Must be called with lock held and count > 0.
func (q *Queue[T]) pop() T {
	item := q.ring[q.head]
	var zero T
	q.ring[q.head] = zero // release reference
	q.head = (q.head + 1) % len(q.ring)
	q.count--
	q.dequeued++
	return item
}

// grow doubles the ring and unwraps it. Must be called with lock held.
func (q *Queue[T]) grow() {
	ring := make([]T, len(q.ring)*2)
	n := copy(ring, q.ring[q.head:])
	copy(ring[n:], q.ring[:q.head])

	q.ring = ring
	q.head = 0
	q.grows++
}
