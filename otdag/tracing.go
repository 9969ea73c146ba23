// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otdag

import (
	"context"

	"github.com/petenewcomb/dagbench"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/petenewcomb/dagbench/otdag"

// CallSpanName names the span TracedBackend starts for each call.
const CallSpanName = "dagbench.call"

// TracedBackend starts a span around every call, tagged with the trace ID
// actor:step of the unit the call belongs to.
func TracedBackend(b dagbench.Backend) dagbench.Backend {
	return dagbench.BackendFunc(func(ctx context.Context, req dagbench.Request) (string, error) {
		ctx, span := otel.Tracer(instrumentationName).Start(ctx, CallSpanName,
			trace.WithAttributes(
				attribute.String("trace_id", req.Labels.TraceID()),
				attribute.String("actor", req.Labels.Actor),
				attribute.Int("step", req.Labels.Step),
				attribute.Int("max_output_size", req.MaxOutputSize),
			))
		defer span.End()

		out, err := b.Execute(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return out, err
	})
}
