// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"slices"
	"time"
)

// Mode names the way a run treats dependencies.
type Mode string

const (
	// ModeOracle honors the dependency graph.
	ModeOracle Mode = "oracle"

	// ModeLimit ignores the dependency graph and floods the backend with
	// every call at once.
	ModeLimit Mode = "limit"
)

// CallError records a failed call within a unit.
type CallError struct {
	Index int
	Err   error
}

func (e CallError) Error() string {
	return e.Err.Error()
}

func (e CallError) Unwrap() error {
	return e.Err
}

// UnitTiming describes the execution of one unit. Seq is the unit's position
// in dispatch order, starting at zero.
type UnitTiming struct {
	ID     UnitID
	Worker int
	Seq    int
	Start  time.Time
	End    time.Time
	Calls  int
	Errors []CallError
}

// Report summarizes a run. A run that ended early because its context was
// canceled still returns a report covering the units that finished.
type Report struct {
	RunID           string
	Mode            Mode
	Policy          string
	Workers         int
	Start           time.Time
	Duration        time.Duration
	Units           []UnitTiming
	Calls           int64
	FailedCalls     int64
	PeakConcurrency int64
	RemainingUnits  int
}

// DispatchOrder returns the finished units in the order workers claimed them.
func (r *Report) DispatchOrder() []UnitID {
	units := slices.Clone(r.Units)
	slices.SortFunc(units, func(a, b UnitTiming) int {
		return a.Seq - b.Seq
	})
	order := make([]UnitID, len(units))
	for i, u := range units {
		order[i] = u.ID
	}
	return order
}

// Summary is the one-line record printed at the end of a benchmark run.
type Summary struct {
	RunID           string  `json:"run_id"`
	Setting         string  `json:"setting"`
	Policy          string  `json:"policy,omitempty"`
	Workers         int     `json:"workers"`
	Units           int     `json:"units"`
	Calls           int64   `json:"calls"`
	FailedCalls     int64   `json:"failed_calls"`
	PeakConcurrency int64   `json:"peak_concurrency"`
	RemainingUnits  int     `json:"remaining_units"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Summary condenses the report for logging.
func (r *Report) Summary() Summary {
	return Summary{
		RunID:           r.RunID,
		Setting:         string(r.Mode),
		Policy:          r.Policy,
		Workers:         r.Workers,
		Units:           len(r.Units),
		Calls:           r.Calls,
		FailedCalls:     r.FailedCalls,
		PeakConcurrency: r.PeakConcurrency,
		RemainingUnits:  r.RemainingUnits,
		DurationSeconds: r.Duration.Seconds(),
	}
}
