// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import "sync/atomic"

// Gauge counts work in flight and remembers the highest value it has reached.
type Gauge struct {
	v    atomic.Int64
	peak atomic.Int64
}

// Increment adds one and returns the new value.
func (g *Gauge) Increment() int64 {
	n := g.v.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return n
		}
	}
}

// Decrement subtracts one and returns true if nothing remains in flight.
func (g *Gauge) Decrement() bool {
	n := g.v.Add(-1)
	if n < 0 {
		panic("there was no work in flight")
	}
	return n == 0
}

func (g *Gauge) Load() int64 {
	return g.v.Load()
}

// Peak returns the highest value observed since construction.
func (g *Gauge) Peak() int64 {
	return g.peak.Load()
}
