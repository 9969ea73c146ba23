// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim_test

import (
	"testing"

	"github.com/petenewcomb/dagbench"
	"github.com/petenewcomb/dagbench/internal/sim"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewWorkload(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		config := sim.DefaultConfig
		w := sim.NewWorkload(t, &config)
		require.NoError(t, dagbench.ValidateWorkload(w.Graph, w.Payload))
		require.NoError(t, w.Graph.CheckAcyclic())
		require.Len(t, w.Payload, len(w.Graph.Units()))
		for id, u := range w.Payload {
			require.NotNil(t, u.Priority)
			for i, c := range u.Calls {
				require.Equal(t, sim.CallContent(id, i), c.Content)
			}
		}
	})
}

var diamond = dagbench.Graph{
	Forward: map[dagbench.UnitID][]dagbench.UnitID{
		"a:0": {"b:1", "c:1"},
		"b:1": {"d:2"},
		"c:1": {"d:2"},
	},
	Reverse: map[dagbench.UnitID][]dagbench.UnitID{
		"b:1": {"a:0"},
		"c:1": {"a:0"},
		"d:2": {"b:1", "c:1"},
	},
}

func TestDispatchOrder(t *testing.T) {
	chk := require.New(t)
	one, two := 1, 2
	w := dagbench.Workload{
		Graph: diamond,
		Payload: dagbench.Payload{
			"a:0": {},
			"b:1": {Priority: &two},
			"c:1": {Priority: &one},
			"d:2": {},
		},
	}

	order, err := sim.DispatchOrder(w, dagbench.Uniform{})
	chk.NoError(err)
	chk.Equal([]dagbench.UnitID{"a:0", "b:1", "c:1", "d:2"}, order)

	_, err = sim.DispatchOrder(w, dagbench.Predefined{})
	var missing *dagbench.MissingPriorityError
	chk.ErrorAs(err, &missing)

	zero := 0
	w.Payload["a:0"] = dagbench.Unit{Priority: &zero}
	w.Payload["d:2"] = dagbench.Unit{Priority: &zero}
	order, err = sim.DispatchOrder(w, dagbench.Predefined{})
	chk.NoError(err)
	chk.Equal([]dagbench.UnitID{"a:0", "c:1", "b:1", "d:2"}, order)

	chk.Equal(3, sim.Depth(diamond))
}

func TestCheckEvents(t *testing.T) {
	chk := require.New(t)
	ev := func(kind sim.EventKind, unit dagbench.UnitID, index int) sim.Event {
		return sim.Event{Kind: kind, Unit: unit, Index: index}
	}

	chk.NoError(sim.CheckEvents(diamond, []sim.Event{
		ev(sim.CallStarted, "a:0", 0), ev(sim.CallFinished, "a:0", 0),
		ev(sim.CallStarted, "b:1", 0), ev(sim.CallStarted, "c:1", 0),
		ev(sim.CallFinished, "c:1", 0), ev(sim.CallFinished, "b:1", 0),
		ev(sim.CallStarted, "d:2", 0), ev(sim.CallFinished, "d:2", 0),
		ev(sim.CallStarted, "d:2", 1), ev(sim.CallFinished, "d:2", 1),
	}))

	chk.ErrorContains(sim.CheckEvents(diamond, []sim.Event{
		ev(sim.CallStarted, "a:0", 0), ev(sim.CallStarted, "b:1", 0),
		ev(sim.CallFinished, "a:0", 0), ev(sim.CallFinished, "b:1", 0),
	}), "before its dependency a:0")

	chk.ErrorContains(sim.CheckEvents(diamond, []sim.Event{
		ev(sim.CallStarted, "a:0", 1),
	}), "expected call 0")

	chk.ErrorContains(sim.CheckEvents(diamond, []sim.Event{
		ev(sim.CallStarted, "a:0", 0), ev(sim.CallStarted, "a:0", 1),
	}), "while another call was running")
}

func TestCheckTimings(t *testing.T) {
	chk := require.New(t)
	timing := func(id dagbench.UnitID, seq int) dagbench.UnitTiming {
		return dagbench.UnitTiming{ID: id, Seq: seq}
	}

	chk.NoError(sim.CheckTimings(diamond, []dagbench.UnitTiming{
		timing("a:0", 0), timing("c:1", 1), timing("b:1", 2), timing("d:2", 3),
	}))
	chk.ErrorContains(sim.CheckTimings(diamond, []dagbench.UnitTiming{
		timing("a:0", 0), timing("d:2", 1), timing("b:1", 2), timing("c:1", 3),
	}), "before its dependency")
	chk.ErrorContains(sim.CheckTimings(diamond, []dagbench.UnitTiming{
		timing("a:0", 0), timing("a:0", 1),
	}), "more than once")
	chk.ErrorContains(sim.CheckTimings(diamond, []dagbench.UnitTiming{
		timing("b:1", 0),
	}), "never was")
}
