package fifoqueue

import (
	"fmt"
	mathbits "math/bits"
	"sync"

	"github.com/ef-ds/deque"
)

// FifoQueue is a concurrency-safe FIFO queue with a maximum capacity and an
// optional length observer. Elements pushed beyond the capacity are dropped.
// By default the capacity is the largest int value.
type FifoQueue[T any] struct {
	mu             sync.RWMutex
	queue          deque.Deque
	maxCapacity    int
	lengthObserver QueueLengthObserver
}

// ConstructorOption configures a FifoQueue.
type ConstructorOption func(*options) error

// QueueLengthObserver is called with the new length every time it changes.
// It must be non-blocking.
type QueueLengthObserver func(int)

type options struct {
	maxCapacity    int
	lengthObserver QueueLengthObserver
}

// WithCapacity sets the maximum number of elements the queue holds.
func WithCapacity(capacity int) ConstructorOption {
	return func(o *options) error {
		if capacity < 1 {
			return fmt.Errorf("capacity for Fifo queue must be positive")
		}
		o.maxCapacity = capacity
		return nil
	}
}

// WithLengthObserver sets the callback invoked on every length change.
func WithLengthObserver(callback QueueLengthObserver) ConstructorOption {
	return func(o *options) error {
		if callback == nil {
			return fmt.Errorf("nil is not a valid QueueLengthObserver")
		}
		o.lengthObserver = callback
		return nil
	}
}

func NewFifoQueue[T any](opts ...ConstructorOption) (*FifoQueue[T], error) {
	o := &options{
		maxCapacity:    1<<(mathbits.UintSize-1) - 1,
		lengthObserver: func(int) {},
	}
	for _, apply := range opts {
		err := apply(o)
		if err != nil {
			return nil, fmt.Errorf("failed to apply constructor option to fifoqueue queue: %w", err)
		}
	}
	return &FifoQueue[T]{
		maxCapacity:    o.maxCapacity,
		lengthObserver: o.lengthObserver,
	}, nil
}

// Push appends the element to the tail of the queue. It returns false if the
// queue is full and the element was dropped.
func (q *FifoQueue[T]) Push(element T) bool {
	q.mu.Lock()
	length := q.queue.Len()
	if length >= q.maxCapacity {
		q.mu.Unlock()
		return false
	}
	q.queue.PushBack(element)
	q.mu.Unlock()

	q.lengthObserver(length + 1)
	return true
}

// Front returns the head of the queue without removing it.
func (q *FifoQueue[T]) Front() (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	v, ok := q.queue.Front()
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Pop removes and returns the head of the queue.
func (q *FifoQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	v, ok := q.queue.PopFront()
	length := q.queue.Len()
	q.mu.Unlock()

	if !ok {
		var zero T
		return zero, false
	}
	q.lengthObserver(length)
	return v.(T), true
}

// Len returns the current length of the queue.
func (q *FifoQueue[T]) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return q.queue.Len()
}
