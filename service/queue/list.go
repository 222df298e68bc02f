package queue

import (
	"container/list"
	"errors"
	"sync"
)

var ErrFull = errors.New("queue is full")

type queue struct {
	mu          sync.Mutex
	isConsuming bool
	limit       int
	l           *list.List
}

// NewQueueService returns a FIFO queue. A limit <= 0 means unbounded.
func NewQueueService(limit int) Service {
	return &queue{l: list.New(), limit: limit}
}

func (q *queue) Add(value interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit > 0 && q.l.Len() >= q.limit {
		return ErrFull
	}
	q.l.PushBack(value)
	return nil
}

func (q *queue) Consume() interface{} {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := q.l.Front()
	if e == nil {
		return nil
	}

	val := e.Value
	q.l.Remove(e)
	return val
}

func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.l.Len()
}

func (q *queue) TryConsuming() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.isConsuming {
		return false
	}
	q.isConsuming = true
	return true
}

func (q *queue) DoneConsuming() {
	q.mu.Lock()
	q.isConsuming = false
	q.mu.Unlock()
}
