// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package dagbench replays recorded multi-agent workloads against a
// text-generation backend while honoring the dependencies between them. Each
// work unit is one step of one agent's trajectory and consists of an ordered
// list of generation calls. A unit may not start until every unit it depends
// on has finished, for instance because the agents' earlier steps interacted.
//
// [Run] schedules units across a pool of workers as their dependencies
// resolve, choosing among ready units by a [Policy]. The run consumes a
// private copy of the dependency graph and terminates once the graph is
// empty, so the number of completed units always matches the number of units
// in the graph. [RunBaseline] issues the same calls with no ordering at all
// and provides the throughput ceiling that dependency-aware scheduling is
// measured against.
//
// Larger workloads can be built from a recorded one with [Replicate], which
// produces independent copies of the graph whose units never depend on units
// in another copy.
package dagbench
