// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package tcp

import (
	"time"

	"github.com/momentics/spws/api"
)

// Timer adapts time.Timer to api.Timer.
type Timer struct {
	t      *time.Timer
	postFn func(api.Event)
}

// NewTimer constructs a Timer that posts its events through post
// (typically a Handshake's Post method).
func NewTimer(post func(api.Event)) *Timer {
	return &Timer{postFn: post}
}

// Start implements api.Timer.
func (tm *Timer) Start(d time.Duration) {
	tm.t = time.AfterFunc(d, func() {
		tm.postFn(api.Event{Type: api.EvTimerFired})
	})
}

// Stop implements api.Timer. Always followed by EvTimerStopped, even
// if the timer had already fired or was never started, per contract.
func (tm *Timer) Stop() {
	if tm.t != nil {
		tm.t.Stop()
		tm.t = nil
	}
	tm.postFn(api.Event{Type: api.EvTimerStopped})
}

// Idle implements api.Timer.
func (tm *Timer) Idle() bool {
	return tm.t == nil
}
