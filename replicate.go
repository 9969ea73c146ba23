// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import "fmt"

// ReplicateOption customizes [Replicate].
type ReplicateOption func(*replicateOptions)

type replicateOptions struct {
	transform func(replica int, id UnitID, u Unit) Unit
}

// WithUnitTransform applies fn to every replicated unit's payload. The unit
// passed to fn is a deep copy and may be modified freely. It is the hook for
// copy-specific payload adjustments such as translating spatial coordinates so
// that copies do not collide.
func WithUnitTransform(fn func(replica int, id UnitID, u Unit) Unit) ReplicateOption {
	return func(o *replicateOptions) {
		o.transform = fn
	}
}

// Replicate returns k independent copies of the graph and payload. Every
// identifier in copy i has its actor label suffixed with _i, on keys and on
// both edge endpoints, so no edge crosses copies. The inputs are not modified.
//
// Replicate panics if k is less than one, if an identifier is malformed, or if
// a unit in the graph has no payload entry.
func Replicate(g Graph, p Payload, k int, opts ...ReplicateOption) (Graph, Payload) {
	if k < 1 {
		panic("replication count must be at least one")
	}
	var o replicateOptions
	for _, opt := range opts {
		opt(&o)
	}

	units := g.Units()
	out := Graph{
		Forward: make(map[UnitID][]UnitID, k*len(units)),
		Reverse: make(map[UnitID][]UnitID, k*len(units)),
	}
	outPayload := make(Payload, k*len(units))

	for i := range k {
		relabel := func(id UnitID) UnitID {
			r, err := id.Replica(i)
			if err != nil {
				panic(fmt.Sprintf("cannot replicate unit: %v", err))
			}
			return r
		}
		relabelAll := func(ids []UnitID) []UnitID {
			out := make([]UnitID, len(ids))
			for j, id := range ids {
				out[j] = relabel(id)
			}
			return out
		}
		for _, u := range units {
			unit, ok := p[u]
			if !ok {
				panic(fmt.Sprintf("unit %s has no payload", u))
			}
			ru := relabel(u)
			out.Forward[ru] = relabelAll(g.Forward[u])
			out.Reverse[ru] = relabelAll(g.Reverse[u])
			unit = unit.clone()
			if o.transform != nil {
				unit = o.transform(i, ru, unit)
			}
			outPayload[ru] = unit
		}
	}
	return out, outPayload
}
