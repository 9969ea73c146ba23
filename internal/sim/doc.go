// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package sim generates random dependency-graph workloads for property tests
// and provides a recording backend and a single-worker reference model to
// check scheduler runs against. Generated graphs mirror recorded agent
// trajectories: each actor's steps form a chain, and units may additionally
// depend on other actors' units from earlier steps, which keeps every
// generated graph acyclic.
package sim
