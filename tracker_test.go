// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func chainGraph(ids ...UnitID) Graph {
	g := Graph{
		Forward: make(map[UnitID][]UnitID),
		Reverse: make(map[UnitID][]UnitID),
	}
	for i, id := range ids {
		g.Forward[id] = nil
		g.Reverse[id] = nil
		if i > 0 {
			g.Forward[ids[i-1]] = append(g.Forward[ids[i-1]], id)
			g.Reverse[id] = append(g.Reverse[id], ids[i-1])
		}
	}
	return g
}

func drain(t *testing.T, q *DispatchQueue) []UnitID {
	var out []UnitID
	for q.Len() > 0 {
		id, ok, err := q.Get(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		out = append(out, id)
	}
	return out
}

func TestTrackerPropagation(t *testing.T) {
	chk := require.New(t)
	g := chainGraph("a:0", "a:1", "a:2")
	q := NewDispatchQueue()
	tr := newTracker(g, map[UnitID]int{}, q)

	chk.Equal(1, tr.seed())
	chk.Equal([]UnitID{"a:0"}, drain(t, q))

	fwd, rev := tr.remaining()
	chk.Equal(3, fwd)
	chk.Equal(3, rev)

	tr.claim("a:0")
	chk.False(tr.complete("a:0"))
	chk.Equal([]UnitID{"a:1"}, drain(t, q))
	fwd, rev = tr.remaining()
	chk.Equal(2, fwd)
	chk.Equal(2, rev)

	tr.claim("a:1")
	chk.False(tr.complete("a:1"))
	chk.Equal([]UnitID{"a:2"}, drain(t, q))

	tr.claim("a:2")
	chk.True(tr.complete("a:2"))
	chk.Equal(0, q.Len())
	fwd, rev = tr.remaining()
	chk.Equal(0, fwd)
	chk.Equal(0, rev)
	chk.True(tr.done())

	// The caller's graph is untouched.
	chk.Len(g.Forward, 3)
	chk.Equal([]UnitID{"a:1"}, g.Forward["a:0"])
}

func TestTrackerDiamondReleasesOnce(t *testing.T) {
	chk := require.New(t)
	g := Graph{
		Forward: map[UnitID][]UnitID{
			"a:0": {"c:1"},
			"b:0": {"c:1"},
		},
		Reverse: map[UnitID][]UnitID{
			"c:1": {"a:0", "b:0"},
		},
	}
	q := NewDispatchQueue()
	tr := newTracker(g, map[UnitID]int{}, q)

	chk.Equal(2, tr.seed())
	chk.Equal([]UnitID{"a:0", "b:0"}, drain(t, q))

	tr.claim("b:0")
	chk.False(tr.complete("b:0"))
	chk.Equal(0, q.Len())

	tr.claim("a:0")
	chk.False(tr.complete("a:0"))
	chk.Equal([]UnitID{"c:1"}, drain(t, q))

	tr.claim("c:1")
	chk.True(tr.complete("c:1"))
}

func TestTrackerClaimPanics(t *testing.T) {
	chk := require.New(t)
	q := NewDispatchQueue()
	tr := newTracker(chainGraph("a:0", "a:1"), map[UnitID]int{}, q)
	tr.seed()

	chk.PanicsWithValue("unit a:1 dispatched with unresolved dependencies", func() {
		tr.claim("a:1")
	})

	tr.claim("a:0")
	chk.PanicsWithValue("unit a:0 dispatched twice", func() {
		tr.claim("a:0")
	})

	tr.complete("a:0")
	chk.PanicsWithValue("unit a:0 completed twice", func() {
		tr.complete("a:0")
	})
	chk.PanicsWithValue("unit a:0 dispatched with unresolved dependencies", func() {
		tr.claim("a:0")
	})
}

func TestTrackerUsesKeys(t *testing.T) {
	chk := require.New(t)
	g := Graph{
		Forward: map[UnitID][]UnitID{"a:0": nil, "b:0": nil, "c:0": nil},
		Reverse: map[UnitID][]UnitID{},
	}
	q := NewDispatchQueue()
	tr := newTracker(g, map[UnitID]int{"a:0": 3, "b:0": 1, "c:0": 2}, q)
	chk.Equal(3, tr.seed())
	chk.Equal([]UnitID{"b:0", "c:0", "a:0"}, drain(t, q))
}

func TestWorkerCount(t *testing.T) {
	chk := require.New(t)
	chk.Equal(4, Options{Workers: 4}.workerCount(100))
	chk.Equal(10, Options{}.workerCount(10))
	chk.Equal(DefaultMaxWorkers, Options{}.workerCount(1000))
	chk.Equal(3, Options{MaxWorkers: 3}.workerCount(10))
	chk.Equal(1, Options{}.workerCount(0))
}
