// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/petenewcomb/dagbench/internal/state"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxWorkers caps the derived worker count when Options.Workers is not
// set.
const DefaultMaxWorkers = 256

// Options configures [Run]. The zero value dispatches in arrival order with
// one worker per initially ready unit, up to DefaultMaxWorkers.
type Options struct {
	// Policy orders ready units. Nil selects [Uniform].
	Policy Policy

	// Workers fixes the number of workers. If zero or negative, the count is
	// derived from the number of units that are ready at the start of the
	// run, bounded by MaxWorkers.
	Workers int

	// MaxWorkers bounds the derived worker count. Zero selects
	// DefaultMaxWorkers.
	MaxWorkers int

	Logger   *zap.Logger
	Observer Observer
}

func (o Options) workerCount(ready int) int {
	if o.Workers > 0 {
		return o.Workers
	}
	limit := o.MaxWorkers
	if limit <= 0 {
		limit = DefaultMaxWorkers
	}
	return max(1, min(ready, limit))
}

// Run executes every unit of the workload against the backend, dispatching a
// unit only after all units blocking it have completed. Calls within a unit
// run in order on a single worker. Ready units are dispatched lowest policy
// key first.
//
// A failed call does not stop the run: the error is recorded in the report
// and the unit still counts as complete once all of its calls have been
// attempted. Run returns when every unit has completed or ctx is done, in
// which case it returns ctx.Err() alongside a partial report. A cyclic graph
// never completes, so callers that cannot rule out cycles should either bound
// ctx or use [Graph.CheckAcyclic] first.
func Run(ctx context.Context, w Workload, b Backend, opts Options) (*Report, error) {
	policy := opts.Policy
	if policy == nil {
		policy = Uniform{}
	}
	if b == nil {
		return nil, ErrNoBackend
	}
	if err := ValidateWorkload(w.Graph, w.Payload); err != nil {
		return nil, err
	}
	units := w.Graph.Units()
	keys, err := assignKeys(policy, units, w.Payload)
	if err != nil {
		return nil, err
	}

	queue := NewDispatchQueue()
	tracker := newTracker(w.Graph, keys, queue)
	ready := tracker.seed()
	workers := opts.workerCount(ready)

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	r := &run{
		payload:  w.Payload,
		backend:  b,
		queue:    queue,
		tracker:  tracker,
		logger:   logger,
		observer: observer,
	}
	report := &Report{
		RunID:   runID,
		Mode:    ModeOracle,
		Policy:  policy.Name(),
		Workers: workers,
		Start:   time.Now(),
	}
	logger.Debug("starting run",
		zap.String("policy", policy.Name()),
		zap.Int("units", len(units)),
		zap.Int("ready", ready),
		zap.Int("workers", workers))

	if tracker.done() {
		queue.Close()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		g.Go(func() error {
			return r.work(gctx, i)
		})
	}
	err = g.Wait()

	report.Duration = time.Since(report.Start)
	report.Units = r.timings
	report.Calls = r.calls.Load()
	report.FailedCalls = r.failed.Load()
	report.PeakConcurrency = r.inflight.Peak()
	report.RemainingUnits, _ = tracker.remaining()

	if err != nil {
		logger.Warn("run ended early",
			zap.Int("remaining_units", report.RemainingUnits),
			zap.Error(err))
		return report, err
	}
	logger.Debug("run finished",
		zap.Duration("duration", report.Duration),
		zap.Int64("calls", report.Calls),
		zap.Int64("failed_calls", report.FailedCalls))
	return report, nil
}

// run holds the state shared by the workers of one call to Run.
type run struct {
	payload  Payload
	backend  Backend
	queue    *DispatchQueue
	tracker  *tracker
	logger   *zap.Logger
	observer Observer

	dispatched atomic.Int64
	calls      atomic.Int64
	failed     atomic.Int64
	inflight   state.Gauge

	mu      sync.Mutex
	timings []UnitTiming
}

func (r *run) record(t UnitTiming) {
	r.mu.Lock()
	r.timings = append(r.timings, t)
	r.mu.Unlock()
}
