// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/petenewcomb/dagbench"
	"github.com/stretchr/testify/require"
)

func TestRunBaselineIssuesEveryCall(t *testing.T) {
	chk := require.New(t)
	w := newWorkload([][2]dagbench.UnitID{{"a:0", "a:1"}, {"a:1", "a:2"}}, "b:0")
	w.Payload["b:0"] = dagbench.Unit{Calls: []dagbench.Call{{Content: "b0"}, {Content: "b1"}}}

	var mu sync.Mutex
	counts := make(map[string]int)
	var labels []dagbench.Labels
	b := dagbench.BackendFunc(func(ctx context.Context, req dagbench.Request) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		counts[req.Content]++
		labels = append(labels, req.Labels)
		return "", nil
	})

	report, err := dagbench.RunBaseline(context.Background(), w.Payload, b, dagbench.BaselineOptions{
		Workers:  3,
		Replicas: 2,
	})
	chk.NoError(err)
	chk.Equal(int64(2*w.Payload.CallCount()), report.Calls)
	chk.Equal(map[string]int{"a:0": 2, "a:1": 2, "a:2": 2, "b0": 2, "b1": 2}, counts)
	for _, l := range labels {
		chk.Equal(dagbench.Labels{}, l)
	}
	chk.Equal(dagbench.ModeLimit, report.Mode)
	chk.Equal(3, report.Workers)
	chk.LessOrEqual(report.PeakConcurrency, int64(3))
	chk.Empty(report.Units)
}

func TestRunBaselineMatchesRunCallCount(t *testing.T) {
	chk := require.New(t)
	w := newWorkload([][2]dagbench.UnitID{{"a:0", "a:1"}, {"b:0", "a:1"}, {"a:1", "c:2"}})
	var log callLog

	oracle, err := dagbench.Run(context.Background(), w, log.backend(), dagbench.Options{})
	chk.NoError(err)
	limit, err := dagbench.RunBaseline(context.Background(), w.Payload, log.backend(), dagbench.BaselineOptions{})
	chk.NoError(err)
	chk.Equal(oracle.Calls, limit.Calls)
	chk.Positive(limit.Workers)
}

func TestRunBaselineFailures(t *testing.T) {
	chk := require.New(t)
	w := newWorkload(nil, "a:0", "b:0")
	b := dagbench.BackendFunc(func(ctx context.Context, req dagbench.Request) (string, error) {
		if req.Content == "a:0" {
			return "", errors.New("rejected")
		}
		return "ok", nil
	})
	var o countingObserver
	report, err := dagbench.RunBaseline(context.Background(), w.Payload, b, dagbench.BaselineOptions{Observer: &o})
	chk.NoError(err)
	chk.Equal(int64(2), report.Calls)
	chk.Equal(int64(1), report.FailedCalls)
	chk.Equal(2, o.calls)
}

func TestRunBaselineCanceled(t *testing.T) {
	chk := require.New(t)
	w := newWorkload(nil, "a:0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var log callLog
	report, err := dagbench.RunBaseline(ctx, w.Payload, log.backend(), dagbench.BaselineOptions{})
	chk.ErrorIs(err, context.Canceled)
	chk.Zero(report.Calls)
	chk.Empty(log.snapshot())

	_, err = dagbench.RunBaseline(context.Background(), w.Payload, nil, dagbench.BaselineOptions{})
	chk.ErrorIs(err, dagbench.ErrNoBackend)
}
