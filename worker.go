// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// work is the body of one worker goroutine. It returns nil once the queue has
// been closed and drained, or the context's error if the run was canceled.
func (r *run) work(ctx context.Context, worker int) error {
	for {
		id, ok, err := r.queue.Get(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		r.tracker.claim(id)
		r.logger.Debug("dispatching unit",
			zap.String("unit", string(id)),
			zap.Int("worker", worker))

		timing, err := r.execute(ctx, worker, id)
		if err != nil {
			// Canceled mid-unit: leave it in the graph so the report shows
			// it as remaining.
			return err
		}
		r.record(timing)
		if r.tracker.complete(id) {
			r.logger.Debug("all units complete")
			r.queue.Close()
		}
	}
}

// execute runs every call of a unit in order. Call failures are recorded in
// the returned timing. An error is returned only if ctx ended first.
func (r *run) execute(ctx context.Context, worker int, id UnitID) (UnitTiming, error) {
	unit := r.payload[id]
	timing := UnitTiming{
		ID:     id,
		Worker: worker,
		Seq:    int(r.dispatched.Add(1) - 1),
		Start:  time.Now(),
	}
	r.inflight.Increment()
	defer r.inflight.Decrement()
	r.observer.UnitStarted(ctx, id, worker)

	labels := labelsFor(id)
	for i, call := range unit.Calls {
		if err := ctx.Err(); err != nil {
			return timing, err
		}
		start := time.Now()
		_, err := invoke(ctx, r.backend, newRequest(labels, call))
		elapsed := time.Since(start)
		if err != nil && ctx.Err() != nil {
			return timing, ctx.Err()
		}
		timing.Calls++
		r.calls.Add(1)
		if err != nil {
			r.failed.Add(1)
			timing.Errors = append(timing.Errors, CallError{Index: i, Err: err})
			r.logger.Warn("call failed",
				zap.String("unit", string(id)),
				zap.Int("call", i),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
		}
		r.observer.CallFinished(ctx, id, i, elapsed, err)
	}
	timing.End = time.Now()
	r.observer.UnitFinished(ctx, timing)
	return timing, nil
}
