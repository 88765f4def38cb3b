// Package queue provides an unbounded FIFO with blocking, cancellable pops.
package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Push after Close, and by Pop once the queue is
// closed and drained.
var ErrClosed = errors.New("queue closed")

// Queue is an unbounded FIFO safe for concurrent producers and consumers.
// Every pushed item is delivered to exactly one Pop call.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool

	// ready is closed and replaced whenever an item arrives or the queue
	// closes, waking every blocked Pop.
	ready chan struct{}
}

// New creates an empty open queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{})}
}

// Push appends item to the tail. It never blocks.
func (q *Queue[T]) Push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.wake()
	return nil
}

// Close marks the end of submission. Items already queued remain poppable.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.wake()
}

// Pop removes and returns the head item, waiting while the queue is empty
// and open. It returns ErrClosed once the queue is closed and empty, or the
// context error if ctx is done first.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, nil
		}
		if q.closed {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		ready := q.ready
		q.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// wake must be called with mu held.
func (q *Queue[T]) wake() {
	close(q.ready)
	q.ready = make(chan struct{})
}
