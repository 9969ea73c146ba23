// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otdag

import (
	"github.com/petenewcomb/dagbench"
	"go.uber.org/zap"
)

// Instrumented adds logging and metrics to a backend and runs every call
// inside a span tagged with its unit.
func Instrumented(logger *zap.Logger, b dagbench.Backend) dagbench.Backend {
	// Inside-out, so the span covers the logging and metrics work too.
	return TracedBackend(MetricsBackend(LoggedBackend(logger, b)))
}

// InstrumentedObserver combines the logging and metrics observers.
func InstrumentedObserver(logger *zap.Logger) dagbench.Observer {
	return dagbench.Observers(LoggingObserver(logger), MetricsObserver())
}
