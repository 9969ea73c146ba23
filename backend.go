// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"context"
	"fmt"
	"strconv"
)

// Backend executes text-generation calls. Implementations must be safe for
// concurrent use by multiple workers.
type Backend interface {
	Execute(ctx context.Context, req Request) (string, error)
}

// BackendFunc adapts an ordinary function to the Backend interface.
type BackendFunc func(ctx context.Context, req Request) (string, error)

func (f BackendFunc) Execute(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Request is a single call as presented to a Backend.
type Request struct {
	Content       string
	MaxOutputSize int
	Stop          []string
	IgnoreEOS     bool
	Labels        Labels
}

// Labels identify the unit a call belongs to, for backends that trace calls.
// The no-dependency baseline leaves them at their zero value.
type Labels struct {
	Actor string
	Step  int
}

// TraceID returns the actor:step label of the originating unit.
func (l Labels) TraceID() string {
	return l.Actor + ":" + strconv.Itoa(l.Step)
}

func labelsFor(id UnitID) Labels {
	actor, step, err := ParseUnitID(string(id))
	if err != nil {
		return Labels{Actor: string(id)}
	}
	return Labels{Actor: actor, Step: step}
}

func newRequest(labels Labels, c Call) Request {
	return Request{
		Content:       c.Content,
		MaxOutputSize: c.MaxOutputSize,
		Stop:          c.Stop,
		IgnoreEOS:     c.IgnoreEOS,
		Labels:        labels,
	}
}

// invoke calls the backend, converting a panic into an error so that one
// misbehaving call cannot strand the unit's dependents.
func invoke(ctx context.Context, b Backend, req Request) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrBackendPanic, p)
		}
	}()
	return b.Execute(ctx, req)
}
