// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"cmp"
	"slices"

	"github.com/addrummond/heap"
	"github.com/gammazero/deque"
	"github.com/petenewcomb/dagbench"
)

type readyUnit struct {
	key int
	seq int
	id  dagbench.UnitID
}

func (a *readyUnit) Cmp(b *readyUnit) int {
	if c := cmp.Compare(a.key, b.key); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// DispatchOrder returns the order in which a single worker dispatches the
// workload's units under the given policy. Units released together are
// enqueued in identifier order. Units that can never become ready, because
// they lie on or behind a cycle, are omitted.
func DispatchOrder(w dagbench.Workload, policy dagbench.Policy) ([]dagbench.UnitID, error) {
	units := w.Graph.Units()
	keys := make(map[dagbench.UnitID]int, len(units))
	for _, u := range units {
		k, err := policy.Key(u, w.Payload[u])
		if err != nil {
			return nil, err
		}
		keys[u] = k
	}
	blockers := blockerCounts(w.Graph)

	var ready heap.Heap[readyUnit, heap.Min]
	seq := 0
	push := func(u dagbench.UnitID) {
		heap.PushOrderable(&ready, readyUnit{key: keys[u], seq: seq, id: u})
		seq++
	}
	for _, u := range units {
		if blockers[u] == 0 {
			push(u)
		}
	}
	order := make([]dagbench.UnitID, 0, len(units))
	for {
		next, ok := heap.PopOrderable(&ready)
		if !ok {
			return order, nil
		}
		order = append(order, next.id)
		for _, v := range dependents(w.Graph, next.id) {
			blockers[v]--
			if blockers[v] == 0 {
				push(v)
			}
		}
	}
}

// Depth returns the number of units on the longest dependency chain, which
// bounds how far any amount of parallelism can compress a run. Units on or
// behind a cycle are not counted.
func Depth(g dagbench.Graph) int {
	blockers := blockerCounts(g)
	level := make(map[dagbench.UnitID]int, len(blockers))
	var frontier deque.Deque[dagbench.UnitID]
	for _, u := range g.Units() {
		if blockers[u] == 0 {
			level[u] = 1
			frontier.PushBack(u)
		}
	}
	depth := 0
	for frontier.Len() > 0 {
		u := frontier.PopFront()
		depth = max(depth, level[u])
		for _, v := range dependents(g, u) {
			level[v] = max(level[v], level[u]+1)
			blockers[v]--
			if blockers[v] == 0 {
				frontier.PushBack(v)
			}
		}
	}
	return depth
}

func blockerCounts(g dagbench.Graph) map[dagbench.UnitID]int {
	counts := make(map[dagbench.UnitID]int)
	for _, u := range g.Units() {
		counts[u] = len(distinct(g.Reverse[u]))
	}
	return counts
}

func dependents(g dagbench.Graph, u dagbench.UnitID) []dagbench.UnitID {
	return distinct(g.Forward[u])
}

func distinct(ids []dagbench.UnitID) []dagbench.UnitID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
