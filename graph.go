// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"fmt"
	"slices"

	"github.com/gammazero/toposort"
)

// Graph is the dependency graph document. Forward maps each unit to the units
// it blocks, and Reverse maps each unit to the units blocking it, so that u is
// in Reverse[v] exactly when v is in Forward[u].
//
// A Graph is never mutated by this package. [Run] consumes a private copy.
type Graph struct {
	Forward map[UnitID][]UnitID `json:"forward" yaml:"forward"`
	Reverse map[UnitID][]UnitID `json:"reverse" yaml:"reverse"`
}

// Units returns every unit named as a key of either mapping, sorted.
func (g Graph) Units() []UnitID {
	seen := make(map[UnitID]struct{}, len(g.Forward))
	for u := range g.Forward {
		seen[u] = struct{}{}
	}
	for v := range g.Reverse {
		seen[v] = struct{}{}
	}
	units := make([]UnitID, 0, len(seen))
	for u := range seen {
		units = append(units, u)
	}
	slices.Sort(units)
	return units
}

// EdgeCount returns the number of distinct forward edges.
func (g Graph) EdgeCount() int {
	n := 0
	for _, vs := range g.Forward {
		n += len(dedupe(vs))
	}
	return n
}

// Validate checks that every edge appears in both mappings and that every
// identifier is well formed.
func (g Graph) Validate() error {
	for _, u := range g.Units() {
		if _, _, err := ParseUnitID(string(u)); err != nil {
			return err
		}
	}
	for u, vs := range g.Forward {
		for _, v := range vs {
			if !slices.Contains(g.Reverse[v], u) {
				return &AsymmetricEdgeError{From: u, To: v}
			}
		}
	}
	for v, us := range g.Reverse {
		for _, u := range us {
			if !slices.Contains(g.Forward[u], v) {
				return &AsymmetricEdgeError{From: u, To: v}
			}
		}
	}
	return nil
}

// CheckAcyclic reports whether the graph contains a cycle. The scheduler does
// not call it: a cyclic graph simply stalls there. It is provided as an
// optional pre-flight check.
func (g Graph) CheckAcyclic() error {
	var edges []toposort.Edge
	for _, u := range g.Units() {
		for _, v := range dedupe(g.Forward[u]) {
			if u == v {
				return fmt.Errorf("dependency graph has a cycle: %s depends on itself", u)
			}
			edges = append(edges, toposort.Edge{string(u), string(v)})
		}
	}
	if len(edges) == 0 {
		return nil
	}
	if _, err := toposort.Toposort(edges); err != nil {
		return fmt.Errorf("dependency graph has a cycle: %w", err)
	}
	return nil
}

func dedupe(ids []UnitID) []UnitID {
	if len(ids) < 2 {
		return ids
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
