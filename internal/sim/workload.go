// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"
	"strconv"

	"github.com/petenewcomb/dagbench"
	"pgregory.net/rapid"
)

// NewWorkload draws a random acyclic workload. Every edge points from a lower
// step to a higher one. Call content is the unit ID followed by #i, which
// [Recorder] uses to attribute calls.
func NewWorkload(t *rapid.T, config *Config) dagbench.Workload {
	actorCount := config.Actors.Draw(t, "ActorCount")
	actors := make([]string, actorCount)
	steps := make([]int, actorCount)
	for a := range actors {
		actors[a] = "actor" + strconv.Itoa(a)
		steps[a] = config.Steps.Draw(t, fmt.Sprintf("%s.StepCount", actors[a]))
	}

	b := newBuilder()
	for a, actor := range actors {
		for s := range steps[a] {
			id := dagbench.NewUnitID(actor, s)
			b.node(id)
			if s > 0 {
				b.edge(dagbench.NewUnitID(actor, s-1), id)
			}
			if s > 1 && config.Skips.Draw(t, fmt.Sprintf("%s.Skip", id)) {
				b.edge(dagbench.NewUnitID(actor, s-2), id)
			}
		}
	}
	for o, to := range actors {
		for s := 1; s < steps[o]; s++ {
			id := dagbench.NewUnitID(to, s)
			n := config.Interactions.Draw(t, fmt.Sprintf("%s.InteractionCount", id))
			for i := range n {
				a := rapid.IntRange(0, actorCount-1).Draw(t, fmt.Sprintf("%s.Interaction%d", id, i))
				if a != o && s-1 < steps[a] {
					b.edge(dagbench.NewUnitID(actors[a], s-1), id)
				}
			}
		}
	}

	payload := make(dagbench.Payload, len(b.graph.Forward))
	for _, id := range b.graph.Units() {
		n := config.Calls.Draw(t, fmt.Sprintf("%s.CallCount", id))
		priority := config.Priority.Draw(t, fmt.Sprintf("%s.Priority", id))
		unit := dagbench.Unit{Priority: &priority}
		for i := range n {
			unit.Calls = append(unit.Calls, dagbench.Call{
				Content:       CallContent(id, i),
				MaxOutputSize: 16,
			})
		}
		payload[id] = unit
	}
	return dagbench.Workload{Graph: b.graph, Payload: payload}
}

// CallContent returns the content NewWorkload gives call i of a unit.
func CallContent(id dagbench.UnitID, i int) string {
	return string(id) + "#" + strconv.Itoa(i)
}

type builder struct {
	graph dagbench.Graph
	seen  map[[2]dagbench.UnitID]bool
}

func newBuilder() *builder {
	return &builder{
		graph: dagbench.Graph{
			Forward: make(map[dagbench.UnitID][]dagbench.UnitID),
			Reverse: make(map[dagbench.UnitID][]dagbench.UnitID),
		},
		seen: make(map[[2]dagbench.UnitID]bool),
	}
}

func (b *builder) node(id dagbench.UnitID) {
	if _, ok := b.graph.Forward[id]; !ok {
		b.graph.Forward[id] = []dagbench.UnitID{}
		b.graph.Reverse[id] = []dagbench.UnitID{}
	}
}

func (b *builder) edge(from, to dagbench.UnitID) {
	b.node(from)
	b.node(to)
	if b.seen[[2]dagbench.UnitID{from, to}] {
		return
	}
	b.seen[[2]dagbench.UnitID{from, to}] = true
	b.graph.Forward[from] = append(b.graph.Forward[from], to)
	b.graph.Reverse[to] = append(b.graph.Reverse[to], from)
}
