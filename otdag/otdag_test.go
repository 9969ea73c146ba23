// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otdag_test

import (
	"context"
	"errors"
	"testing"

	"github.com/petenewcomb/dagbench"
	"github.com/petenewcomb/dagbench/otdag"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func twoStepWorkload(fail string) (dagbench.Workload, dagbench.Backend) {
	w := dagbench.Workload{
		Graph: dagbench.Graph{
			Forward: map[dagbench.UnitID][]dagbench.UnitID{"Maria Lopez:3": {"Maria Lopez:4"}, "Maria Lopez:4": {}},
			Reverse: map[dagbench.UnitID][]dagbench.UnitID{"Maria Lopez:3": {}, "Maria Lopez:4": {"Maria Lopez:3"}},
		},
		Payload: dagbench.Payload{
			"Maria Lopez:3": {Calls: []dagbench.Call{{Content: "a", MaxOutputSize: 10}}},
			"Maria Lopez:4": {Calls: []dagbench.Call{{Content: "b", MaxOutputSize: 20}}},
		},
	}
	b := dagbench.BackendFunc(func(ctx context.Context, req dagbench.Request) (string, error) {
		if req.Content == fail {
			return "", errors.New("overloaded")
		}
		return "out", nil
	})
	return w, b
}

func TestTracedBackend(t *testing.T) {
	chk := require.New(t)
	sr := installRecorder(t)
	w, b := twoStepWorkload("b")

	report, err := dagbench.Run(context.Background(), w, otdag.TracedBackend(b), dagbench.Options{})
	chk.NoError(err)
	chk.Equal(int64(1), report.FailedCalls)

	spans := sr.Ended()
	chk.Len(spans, 2)
	for _, span := range spans {
		chk.Equal(otdag.CallSpanName, span.Name())
	}

	first := attrs(spans[0])
	chk.Equal("Maria Lopez:3", first["trace_id"].AsString())
	chk.Equal("Maria Lopez", first["actor"].AsString())
	chk.Equal(int64(3), first["step"].AsInt64())
	chk.Equal(int64(10), first["max_output_size"].AsInt64())
	chk.Equal(codes.Unset, spans[0].Status().Code)

	second := attrs(spans[1])
	chk.Equal("Maria Lopez:4", second["trace_id"].AsString())
	chk.Equal(codes.Error, spans[1].Status().Code)
	chk.Equal("overloaded", spans[1].Status().Description)
}

func TestLoggedBackend(t *testing.T) {
	chk := require.New(t)
	core, logs := observer.New(zapcore.DebugLevel)
	w, b := twoStepWorkload("a")

	_, err := dagbench.Run(context.Background(), w, otdag.LoggedBackend(zap.New(core), b), dagbench.Options{})
	chk.NoError(err)

	failed := logs.FilterMessage("Call failed").All()
	chk.Len(failed, 1)
	chk.Equal("Maria Lopez:3", failed[0].ContextMap()["trace_id"])
	chk.Equal(zapcore.ErrorLevel, failed[0].Level)
	chk.Len(logs.FilterMessage("Call completed").All(), 1)
	chk.Len(logs.FilterMessage("Starting call").All(), 2)
}

func TestLoggingObserver(t *testing.T) {
	chk := require.New(t)
	core, logs := observer.New(zapcore.DebugLevel)
	w, b := twoStepWorkload("b")

	_, err := dagbench.Run(context.Background(), w, b, dagbench.Options{
		Observer: otdag.LoggingObserver(zap.New(core)),
	})
	chk.NoError(err)

	chk.Len(logs.FilterMessage("Starting unit").All(), 2)
	completed := logs.FilterMessage("Unit completed").All()
	chk.Len(completed, 1)
	chk.Equal("Maria Lopez:3", completed[0].ContextMap()["unit"])
	warned := logs.FilterMessage("Unit finished with failed calls").All()
	chk.Len(warned, 1)
	chk.Equal("Maria Lopez:4", warned[0].ContextMap()["unit"])
	chk.Equal(int64(1), warned[0].ContextMap()["failed_calls"])
}

func TestLoggingObserverDefaultsToGlobal(t *testing.T) {
	chk := require.New(t)
	core, logs := observer.New(zapcore.DebugLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	defer undo()

	w, b := twoStepWorkload("")
	_, err := dagbench.Run(context.Background(), w, b, dagbench.Options{Observer: otdag.LoggingObserver(nil)})
	chk.NoError(err)
	chk.Len(logs.FilterMessage("Unit completed").All(), 2)
}

func TestInstrumented(t *testing.T) {
	chk := require.New(t)
	sr := installRecorder(t)
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	w, b := twoStepWorkload("")

	report, err := dagbench.Run(context.Background(), w, otdag.Instrumented(logger, b), dagbench.Options{
		Observer: otdag.InstrumentedObserver(logger),
	})
	chk.NoError(err)
	chk.Equal(int64(2), report.Calls)
	chk.Len(sr.Ended(), 2)
	chk.Len(logs.FilterMessage("Call completed").All(), 2)
	chk.Len(logs.FilterMessage("Unit completed").All(), 2)
}
