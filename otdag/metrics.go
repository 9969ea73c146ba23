// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otdag

import (
	"context"
	"time"

	"github.com/petenewcomb/dagbench"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names recorded by MetricsObserver and MetricsBackend.
const (
	UnitsMetric        = "dagbench.units"
	UnitDurationMetric = "dagbench.unit.duration"
	CallsMetric        = "dagbench.calls"
	CallErrorsMetric   = "dagbench.calls.errors"
	CallDurationMetric = "dagbench.call.duration"
)

// MetricsObserver counts completed units and calls and records unit
// durations in seconds. Instruments are created from the global meter
// provider when the observer is constructed.
func MetricsObserver() dagbench.Observer {
	meter := otel.GetMeterProvider().Meter(instrumentationName)
	units, _ := meter.Int64Counter(UnitsMetric)
	unitDuration, _ := meter.Float64Histogram(UnitDurationMetric)
	calls, _ := meter.Int64Counter(CallsMetric)
	callErrors, _ := meter.Int64Counter(CallErrorsMetric)
	return &metricsObserver{
		units:        units,
		unitDuration: unitDuration,
		calls:        calls,
		callErrors:   callErrors,
	}
}

type metricsObserver struct {
	units        metric.Int64Counter
	unitDuration metric.Float64Histogram
	calls        metric.Int64Counter
	callErrors   metric.Int64Counter
}

func (o *metricsObserver) UnitStarted(context.Context, dagbench.UnitID, int) {}

func (o *metricsObserver) CallFinished(ctx context.Context, _ dagbench.UnitID, _ int, _ time.Duration, err error) {
	o.calls.Add(ctx, 1)
	if err != nil {
		o.callErrors.Add(ctx, 1)
	}
}

func (o *metricsObserver) UnitFinished(ctx context.Context, timing dagbench.UnitTiming) {
	o.units.Add(ctx, 1)
	o.unitDuration.Record(ctx, timing.End.Sub(timing.Start).Seconds())
}

// MetricsBackend records the latency of every call, in seconds, tagged with
// whether it failed.
func MetricsBackend(b dagbench.Backend) dagbench.Backend {
	meter := otel.GetMeterProvider().Meter(instrumentationName)
	callDuration, _ := meter.Float64Histogram(CallDurationMetric)
	return dagbench.BackendFunc(func(ctx context.Context, req dagbench.Request) (string, error) {
		startTime := time.Now()
		out, err := b.Execute(ctx, req)
		callDuration.Record(ctx, time.Since(startTime).Seconds(),
			metric.WithAttributes(attribute.Bool("error", err != nil)))
		return out, err
	})
}
