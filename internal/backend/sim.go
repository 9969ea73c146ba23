// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package backend

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/petenewcomb/dagbench"
	"github.com/petenewcomb/dagbench/internal/timerp"
)

// ErrSimulatedFailure is returned by a Sim backend for calls selected by its
// failure rate.
const ErrSimulatedFailure = constError("simulated backend failure")

type constError string

func (e constError) Error() string {
	return string(e)
}

// Sim stands in for a generation server. Each call takes Latency plus
// PerToken for every requested output token and answers with a fixed string.
type Sim struct {
	Latency  time.Duration
	PerToken time.Duration

	// FailRate is the fraction of calls, between 0 and 1, that fail. Which
	// calls fail depends only on their content and Seed, so repeated runs of
	// the same workload fail the same calls.
	FailRate float64
	Seed     uint32
}

func (s *Sim) Execute(ctx context.Context, req dagbench.Request) (string, error) {
	d := s.Latency + time.Duration(req.MaxOutputSize)*s.PerToken
	if err := timerp.Sleep(ctx, d); err != nil {
		return "", err
	}
	if s.fails(req.Content) {
		return "", ErrSimulatedFailure
	}
	return strings.Repeat("x", min(req.MaxOutputSize, 16)), nil
}

func (s *Sim) fails(content string) bool {
	if s.FailRate <= 0 {
		return false
	}
	h := fnv.New32a()
	var seed [4]byte
	seed[0] = byte(s.Seed)
	seed[1] = byte(s.Seed >> 8)
	seed[2] = byte(s.Seed >> 16)
	seed[3] = byte(s.Seed >> 24)
	h.Write(seed[:])
	h.Write([]byte(content))
	return float64(h.Sum32())/float64(1<<32) < s.FailRate
}
