// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otdag

import (
	"context"
	"time"

	"github.com/petenewcomb/dagbench"
	"go.uber.org/zap"
)

// LoggedBackend logs every call at debug level, and failed calls at error
// level, including timing information. A nil logger selects zap.L().
func LoggedBackend(logger *zap.Logger, b dagbench.Backend) dagbench.Backend {
	return dagbench.BackendFunc(func(ctx context.Context, req dagbench.Request) (string, error) {
		logger := orGlobal(logger)
		logger.Debug("Starting call",
			zap.String("trace_id", req.Labels.TraceID()),
			zap.String("component", "otdag"))

		startTime := time.Now()
		out, err := b.Execute(ctx, req)
		duration := time.Since(startTime)

		if err != nil {
			logger.Error("Call failed",
				zap.String("trace_id", req.Labels.TraceID()),
				zap.String("component", "otdag"),
				zap.Duration("duration", duration),
				zap.Error(err))
		} else {
			logger.Debug("Call completed",
				zap.String("trace_id", req.Labels.TraceID()),
				zap.String("component", "otdag"),
				zap.Duration("duration", duration),
				zap.Int("output_size", len(out)))
		}
		return out, err
	})
}

// LoggingObserver logs unit progress. Unit start and finish go to debug
// level. A unit that finished with failed calls is logged at warn level.
func LoggingObserver(logger *zap.Logger) dagbench.Observer {
	return loggingObserver{logger: logger}
}

type loggingObserver struct {
	logger *zap.Logger
}

func (o loggingObserver) UnitStarted(_ context.Context, id dagbench.UnitID, worker int) {
	orGlobal(o.logger).Debug("Starting unit",
		zap.String("unit", string(id)),
		zap.Int("worker", worker),
		zap.String("component", "otdag"))
}

func (o loggingObserver) CallFinished(context.Context, dagbench.UnitID, int, time.Duration, error) {}

func (o loggingObserver) UnitFinished(_ context.Context, timing dagbench.UnitTiming) {
	logger := orGlobal(o.logger)
	fields := []zap.Field{
		zap.String("unit", string(timing.ID)),
		zap.Int("worker", timing.Worker),
		zap.String("component", "otdag"),
		zap.Int("calls", timing.Calls),
		zap.Duration("duration", timing.End.Sub(timing.Start)),
	}
	if len(timing.Errors) > 0 {
		logger.Warn("Unit finished with failed calls",
			append(fields, zap.Int("failed_calls", len(timing.Errors)))...)
		return
	}
	logger.Debug("Unit completed", fields...)
}

func orGlobal(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.L()
	}
	return logger
}
