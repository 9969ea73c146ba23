// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"context"
	"time"
)

// Observer receives progress notifications from a run. Methods are called
// concurrently from worker goroutines and must not block for long.
type Observer interface {
	// UnitStarted is called after a worker claims a unit and before its first
	// call.
	UnitStarted(ctx context.Context, id UnitID, worker int)

	// CallFinished is called after each backend call, whether or not it
	// failed.
	CallFinished(ctx context.Context, id UnitID, index int, elapsed time.Duration, err error)

	// UnitFinished is called once every call of the unit has been attempted
	// and before its dependents are released.
	UnitFinished(ctx context.Context, timing UnitTiming)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) UnitStarted(context.Context, UnitID, int) {}

func (NopObserver) CallFinished(context.Context, UnitID, int, time.Duration, error) {}

func (NopObserver) UnitFinished(context.Context, UnitTiming) {}

// Observers fans notifications out to each non-nil observer in order.
func Observers(observers ...Observer) Observer {
	var list multiObserver
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	switch len(list) {
	case 0:
		return NopObserver{}
	case 1:
		return list[0]
	default:
		return list
	}
}

type multiObserver []Observer

func (m multiObserver) UnitStarted(ctx context.Context, id UnitID, worker int) {
	for _, o := range m {
		o.UnitStarted(ctx, id, worker)
	}
}

func (m multiObserver) CallFinished(ctx context.Context, id UnitID, index int, elapsed time.Duration, err error) {
	for _, o := range m {
		o.CallFinished(ctx, id, index, elapsed, err)
	}
}

func (m multiObserver) UnitFinished(ctx context.Context, timing UnitTiming) {
	for _, o := range m {
		o.UnitFinished(ctx, timing)
	}
}
