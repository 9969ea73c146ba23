// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

type unitSet map[UnitID]struct{}

// tracker owns the run's private copy of the dependency graph. An entry in
// forward or reverse exists for exactly those units that have not yet
// completed, so the graph is consumed as the run progresses and an empty
// forward map means every unit has finished.
type tracker struct {
	mu       sync.Mutex
	forward  map[UnitID]unitSet
	reverse  map[UnitID]unitSet
	claimed  unitSet
	enqueued unitSet
	keys     map[UnitID]int
	queue    *DispatchQueue
}

func newTracker(g Graph, keys map[UnitID]int, queue *DispatchQueue) *tracker {
	units := g.Units()
	t := &tracker{
		forward:  make(map[UnitID]unitSet, len(units)),
		reverse:  make(map[UnitID]unitSet, len(units)),
		claimed:  make(unitSet, len(units)),
		enqueued: make(unitSet, len(units)),
		keys:     keys,
		queue:    queue,
	}
	for _, u := range units {
		t.forward[u] = make(unitSet)
		t.reverse[u] = make(unitSet)
	}
	for u, vs := range g.Forward {
		for _, v := range vs {
			t.forward[u][v] = struct{}{}
		}
	}
	for v, us := range g.Reverse {
		for _, u := range us {
			t.reverse[v][u] = struct{}{}
		}
	}
	return t
}

// seed enqueues every unit with no blockers and returns how many there were.
// It must be called before any worker starts.
func (t *tracker) seed() int {
	n := 0
	for _, u := range sortedKeys(t.reverse) {
		if len(t.reverse[u]) == 0 {
			t.enqueue(u)
			n++
		}
	}
	return n
}

func (t *tracker) enqueue(u UnitID) {
	if _, ok := t.enqueued[u]; ok {
		panic(fmt.Sprintf("unit %s enqueued twice", u))
	}
	t.enqueued[u] = struct{}{}
	t.queue.Put(t.keys[u], u)
}

// claim records that a worker is about to execute u. A unit may only be
// claimed once and only after all of its blockers have completed.
func (t *tracker) claim(u UnitID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if blockers, ok := t.reverse[u]; !ok || len(blockers) != 0 {
		panic(fmt.Sprintf("unit %s dispatched with unresolved dependencies", u))
	}
	if _, ok := t.claimed[u]; ok {
		panic(fmt.Sprintf("unit %s dispatched twice", u))
	}
	t.claimed[u] = struct{}{}
}

// complete removes u from the graph, releases its dependents, and enqueues
// any that became ready. It reports whether the graph is now empty.
func (t *tracker) complete(u UnitID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	dependents, ok := t.forward[u]
	if !ok {
		panic(fmt.Sprintf("unit %s completed twice", u))
	}
	delete(t.forward, u)
	delete(t.reverse, u)
	for _, v := range sortedKeys(dependents) {
		blockers, ok := t.reverse[v]
		if !ok {
			continue
		}
		delete(blockers, u)
		if len(blockers) == 0 {
			t.enqueue(v)
		}
	}
	return len(t.forward) == 0
}

// remaining returns the number of units left in each mapping.
func (t *tracker) remaining() (forward, reverse int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.forward), len(t.reverse)
}

// done reports whether every unit has completed.
func (t *tracker) done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.forward) == 0
}

func sortedKeys[M ~map[UnitID]V, V any](m M) []UnitID {
	return slices.Sorted(maps.Keys(m))
}
