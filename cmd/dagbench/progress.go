// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/petenewcomb/dagbench"
	"go.uber.org/zap"
)

// progress logs the fraction of calls finished each time it crosses another
// tenth of the total.
type progress struct {
	dagbench.NopObserver
	logger *zap.Logger
	total  int64
	done   atomic.Int64
	start  time.Time
}

func newProgress(logger *zap.Logger, total int) *progress {
	return &progress{logger: logger, total: int64(total), start: time.Now()}
}

func (p *progress) CallFinished(context.Context, dagbench.UnitID, int, time.Duration, error) {
	n := p.done.Add(1)
	if p.total == 0 {
		return
	}
	if n*10/p.total != (n-1)*10/p.total {
		p.logger.Info("progress",
			zap.Int64("calls", n),
			zap.Int64("total", p.total),
			zap.Duration("elapsed", time.Since(p.start)))
	}
}
