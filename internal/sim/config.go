// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

var DefaultConfig = Config{
	Actors:       BiasedIntConfig{Min: 1, Med: 4, Max: 12},
	Steps:        BiasedIntConfig{Min: 1, Med: 3, Max: 8},
	Calls:        BiasedIntConfig{Min: 0, Med: 1, Max: 3},
	Priority:     BiasedIntConfig{Min: 0, Med: 0, Max: 50},
	Interactions: BiasedIntConfig{Min: 0, Med: 0, Max: 3},
	Skips:        BiasedBoolConfig{Probability: 0.1},
}

type Config struct {
	// Actors is the number of independent trajectories.
	Actors BiasedIntConfig
	// Steps is the length of each actor's trajectory.
	Steps BiasedIntConfig
	// Calls is the number of backend calls in each unit.
	Calls BiasedIntConfig
	// Priority is the predefined priority carried by each unit.
	Priority BiasedIntConfig
	// Interactions is the number of other actors whose previous step each
	// unit waits on.
	Interactions BiasedIntConfig
	// Skips decides whether a unit also depends directly on its actor's step
	// from two steps earlier.
	Skips BiasedBoolConfig
}
