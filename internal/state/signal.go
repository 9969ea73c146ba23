// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import "sync/atomic"

// Signal is a broadcast notification. Each call to Notify closes the channel
// returned by all earlier calls to Wait and installs a fresh one. The zero
// value is ready to use.
type Signal struct {
	ch atomic.Pointer[chan struct{}]
}

// Wait returns a channel that will be closed by the next Notify.
func (s *Signal) Wait() <-chan struct{} {
	p := s.ch.Load()
	if p == nil {
		ch := make(chan struct{})
		if s.ch.CompareAndSwap(nil, &ch) {
			return ch
		}
		p = s.ch.Load()
	}
	return *p
}

// Notify wakes every goroutine blocked on a channel from Wait.
func (s *Signal) Notify() {
	ch := make(chan struct{})
	old := s.ch.Swap(&ch)
	if old != nil {
		close(*old)
	}
}
