// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"cmp"
	"context"
	"sync"

	"github.com/addrummond/heap"
	"github.com/petenewcomb/dagbench/internal/state"
)

// DispatchQueue holds ready units in priority order: lowest key first, and
// among equal keys, first in first out. Any number of goroutines may Put and
// Get concurrently.
type DispatchQueue struct {
	mu     sync.Mutex
	items  heap.Heap[queueItem, heap.Min]
	seq    uint64
	n      int
	closed bool
	signal state.Signal
}

type queueItem struct {
	key int
	seq uint64
	id  UnitID
}

func (a *queueItem) Cmp(b *queueItem) int {
	if c := cmp.Compare(a.key, b.key); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// NewDispatchQueue returns an empty, open queue.
func NewDispatchQueue() *DispatchQueue {
	return &DispatchQueue{}
}

// Put enqueues a unit without blocking. Put panics if the queue has been
// closed.
func (q *DispatchQueue) Put(key int, id UnitID) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		panic("put on closed dispatch queue")
	}
	heap.PushOrderable(&q.items, queueItem{key: key, seq: q.seq, id: id})
	q.seq++
	q.n++
	q.mu.Unlock()
	q.signal.Notify()
}

// Get removes and returns the unit with the lowest key, blocking until one is
// available. Once the queue is closed and empty, Get returns false. If ctx
// ends first, Get returns its error.
func (q *DispatchQueue) Get(ctx context.Context) (UnitID, bool, error) {
	for {
		// Take the wait channel before inspecting the heap so that a Put or
		// Close between the check and the select is not missed.
		wake := q.signal.Wait()
		q.mu.Lock()
		if item, ok := heap.PopOrderable(&q.items); ok {
			q.n--
			q.mu.Unlock()
			return item.id, true, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return "", false, nil
		}
		select {
		case <-wake:
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}
}

// Close marks the queue as finished and wakes all waiting consumers. Units
// already in the queue are still delivered. Close is idempotent.
func (q *DispatchQueue) Close() {
	q.mu.Lock()
	wasClosed := q.closed
	q.closed = true
	q.mu.Unlock()
	if !wasClosed {
		q.signal.Notify()
	}
}

// Len returns the number of units waiting in the queue.
func (q *DispatchQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}
