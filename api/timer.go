// Package api
// Author: momentics
//
// Timer contract for the handshake-wide timeout. Adapted from the
// Scheduler contract elsewhere in this codebase family, narrowed to the
// single start/stop/idle shape the handshake state machine needs.

package api

import "time"

// Timer abstracts the single-shot, restartable timer a Handshake uses to
// bound the entire opening-handshake exchange. Start arms (or re-arms)
// the timer for d; it must deliver exactly one EvTimerFired event via
// the owning Handshake's event queue if it is not stopped first. Stop
// requests cancellation; the caller must wait for the resulting
// EvTimerStopped event before treating the timer as idle again.
type Timer interface {
	// Start arms the timer to fire after d.
	Start(d time.Duration)

	// Stop requests cancellation of a running timer. Always followed by
	// an EvTimerStopped event, even if the timer had already fired or
	// was never started.
	Stop()

	// Idle reports whether the timer is currently stopped and not
	// pending delivery of any event.
	Idle() bool
}
