// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/petenewcomb/dagbench"
	"github.com/petenewcomb/dagbench/internal/timerp"
)

type EventKind int

const (
	CallStarted EventKind = iota
	CallFinished
)

// Event is one observation made by a Recorder.
type Event struct {
	Kind   EventKind
	Unit   dagbench.UnitID
	Index  int
	Labels dagbench.Labels
}

// Recorder is a backend that logs the start and finish of every call. Calls
// must carry content produced by [CallContent].
type Recorder struct {
	// Delay, if set, chooses how long each call takes.
	Delay func(req dagbench.Request) time.Duration
	// Fail, if set, chooses an error for each call to return.
	Fail func(req dagbench.Request) error

	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Execute(ctx context.Context, req dagbench.Request) (string, error) {
	unit, index, err := parseContent(req.Content)
	if err != nil {
		return "", err
	}
	r.append(Event{Kind: CallStarted, Unit: unit, Index: index, Labels: req.Labels})
	if r.Delay != nil {
		if err := timerp.Sleep(ctx, r.Delay(req)); err != nil {
			return "", err
		}
	}
	r.append(Event{Kind: CallFinished, Unit: unit, Index: index, Labels: req.Labels})
	if r.Fail != nil {
		if err := r.Fail(req); err != nil {
			return "", err
		}
	}
	return "ok", nil
}

func (r *Recorder) append(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func parseContent(content string) (dagbench.UnitID, int, error) {
	i := strings.LastIndexByte(content, '#')
	if i < 0 {
		return "", 0, fmt.Errorf("call content %q does not identify a unit", content)
	}
	index, err := strconv.Atoi(content[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("call content %q does not identify a call: %w", content, err)
	}
	return dagbench.UnitID(content[:i]), index, nil
}

// CheckEvents verifies a recorded event log against the graph: every call of
// a unit runs after every call of every unit blocking it has finished, and a
// unit's calls run one at a time in order.
func CheckEvents(g dagbench.Graph, events []Event) error {
	firstStart := make(map[dagbench.UnitID]int)
	lastFinish := make(map[dagbench.UnitID]int)
	next := make(map[dagbench.UnitID]int)
	running := make(map[dagbench.UnitID]bool)
	for i, e := range events {
		switch e.Kind {
		case CallStarted:
			if running[e.Unit] {
				return fmt.Errorf("event %d: unit %s started call %d while another call was running", i, e.Unit, e.Index)
			}
			if e.Index != next[e.Unit] {
				return fmt.Errorf("event %d: unit %s started call %d, expected call %d", i, e.Unit, e.Index, next[e.Unit])
			}
			running[e.Unit] = true
			if _, ok := firstStart[e.Unit]; !ok {
				firstStart[e.Unit] = i
			}
		case CallFinished:
			running[e.Unit] = false
			next[e.Unit]++
			lastFinish[e.Unit] = i
		}
	}
	for u, vs := range g.Forward {
		for _, v := range vs {
			finish, ok := lastFinish[u]
			if !ok {
				continue
			}
			if start, ok := firstStart[v]; ok && start < finish {
				return fmt.Errorf("unit %s started at event %d before its dependency %s finished at event %d", v, start, u, finish)
			}
		}
	}
	return nil
}

// CheckTimings verifies that every unit was dispatched after all of the units
// blocking it, using the dispatch sequence numbers in a report.
func CheckTimings(g dagbench.Graph, timings []dagbench.UnitTiming) error {
	seq := make(map[dagbench.UnitID]int, len(timings))
	for _, t := range timings {
		if _, ok := seq[t.ID]; ok {
			return fmt.Errorf("unit %s dispatched more than once", t.ID)
		}
		seq[t.ID] = t.Seq
	}
	for u, vs := range g.Forward {
		for _, v := range vs {
			su, okU := seq[u]
			sv, okV := seq[v]
			if okV && !okU {
				return fmt.Errorf("unit %s dispatched although its dependency %s never was", v, u)
			}
			if okV && sv <= su {
				return fmt.Errorf("unit %s dispatched at %d before its dependency %s at %d", v, sv, u, su)
			}
		}
	}
	return nil
}
