// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package timerp pools timers for code that sleeps many short intervals, such
// as the simulated backend.
package timerp

import (
	"context"
	"sync"
	"time"
)

// Reusing a stopped timer relies on [Go 1.23+ behavior], under which Reset on
// a stopped or expired timer never delivers a stale value.
//
// [Go 1.23+ behavior]: https://pkg.go.dev/time#NewTimer

var pool = sync.Pool{
	New: func() any {
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	},
}

// Sleep blocks for d or until ctx is done, whichever comes first. It returns
// ctx.Err() if the context ended the wait.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := pool.Get().(*time.Timer)
	t.Reset(d)
	defer func() {
		t.Stop()
		pool.Put(t)
	}()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
