// File: protocol/handshake/eventqueue.go
// Author: momentics <momentics@gmail.com>
//
// The handshake never holds a direct reference back to its socket or
// timer; instead those collaborators post events into this inbox, and
// the owner drains it by calling pump after each post. This breaks the
// cyclic socket<->machine reference the state machine would otherwise
// need, per the message-passing model the subsystem is built around.

package handshake

import (
	"github.com/eapache/queue"

	"github.com/momentics/spws/api"
)

// eventQueue is a single-threaded FIFO inbox. Nothing in this type is
// safe for concurrent use: the machine that owns it is cooperative and
// single-threaded by design, so no locking is needed or provided.
type eventQueue struct {
	q *queue.Queue
}

func newEventQueue() *eventQueue {
	return &eventQueue{q: queue.New()}
}

// post enqueues an event raised by a collaborator (socket, timer).
func (eq *eventQueue) post(ev api.Event) {
	eq.q.Add(ev)
}

// pump drains every event currently queued, invoking handle for each
// in FIFO order. A handler that itself posts new events will see those
// drained in the same pump call, which mirrors "runs to completion
// between suspension points": the machine never returns to its caller
// with events left unprocessed.
func (eq *eventQueue) pump(handle func(api.Event)) {
	for eq.q.Length() > 0 {
		ev := eq.q.Peek().(api.Event)
		eq.q.Remove()
		handle(ev)
	}
}
