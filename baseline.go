// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"github.com/petenewcomb/dagbench/internal/state"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// BaselineOptions configures [RunBaseline].
type BaselineOptions struct {
	// Workers bounds the number of concurrent calls. Zero or negative selects
	// eight per CPU.
	Workers int

	// Replicas repeats every call this many times. Zero or negative means
	// once.
	Replicas int

	Logger   *zap.Logger
	Observer Observer
}

type baselineCall struct {
	unit  UnitID
	index int
	call  Call
}

// RunBaseline issues every call in the payload with no ordering constraints,
// bounded only by the worker count. It measures the backend's throughput
// ceiling for comparison with [Run]. Calls carry empty labels.
//
// If ctx ends before every call has been issued, RunBaseline returns
// ctx.Err() with a report of the calls that finished.
func RunBaseline(ctx context.Context, p Payload, b Backend, opts BaselineOptions) (*Report, error) {
	if b == nil {
		return nil, ErrNoBackend
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 8 * runtime.NumCPU()
	}
	replicas := max(opts.Replicas, 1)
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	var pending deque.Deque[baselineCall]
	for range replicas {
		for _, id := range sortedKeys(p) {
			for i, c := range p[id].Calls {
				pending.PushBack(baselineCall{unit: id, index: i, call: c})
			}
		}
	}
	logger.Debug("starting baseline run",
		zap.Int("calls", pending.Len()),
		zap.Int("workers", workers))

	report := &Report{
		RunID:   runID,
		Mode:    ModeLimit,
		Workers: workers,
		Start:   time.Now(),
	}
	var calls, failed atomic.Int64
	var inflight state.Gauge

	wp := pool.New().WithMaxGoroutines(workers)
	for pending.Len() > 0 && ctx.Err() == nil {
		bc := pending.PopFront()
		wp.Go(func() {
			if ctx.Err() != nil {
				return
			}
			inflight.Increment()
			defer inflight.Decrement()
			start := time.Now()
			_, err := invoke(ctx, b, newRequest(Labels{}, bc.call))
			elapsed := time.Since(start)
			if err != nil && ctx.Err() != nil {
				return
			}
			calls.Add(1)
			if err != nil {
				failed.Add(1)
				logger.Warn("call failed",
					zap.String("unit", string(bc.unit)),
					zap.Int("call", bc.index),
					zap.Error(err))
			}
			observer.CallFinished(ctx, bc.unit, bc.index, elapsed, err)
		})
	}
	wp.Wait()

	report.Duration = time.Since(report.Start)
	report.Calls = calls.Load()
	report.FailedCalls = failed.Load()
	report.PeakConcurrency = inflight.Peak()
	if err := ctx.Err(); err != nil {
		return report, err
	}
	logger.Debug("baseline run finished",
		zap.Duration("duration", report.Duration),
		zap.Int64("calls", report.Calls))
	return report, nil
}
