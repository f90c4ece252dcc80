// File: protocol/handshake/machine.go
// Author: momentics <momentics@gmail.com>
//
// The cooperative, single-threaded state machine driving one opening
// handshake exchange to completion. Collaborators (socket, timer) never
// call into Handshake directly; they post events through Post, which
// drains the inbox to completion before returning (see eventqueue.go).

package handshake

import (
	"time"

	"github.com/momentics/spws/api"
)

// Mode selects which side of the exchange a Handshake plays.
type Mode int

const (
	ModeClient Mode = iota
	ModeServer
)

// Outcome is the single value a Handshake reports on completion.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeError
)

type state int

const (
	stateIdle state = iota
	stateServerRecv
	stateServerReply
	stateClientSend
	stateClientRecv
	stateStoppingTimerError
	stateStoppingTimerDone
	stateStopping
	stateDone
)

// DefaultTimeout bounds an entire opening-handshake exchange.
const DefaultTimeout = 5 * time.Second

// minServerInitialRead is the length of the shortest syntactically
// complete client opening request this parser will accept: a GET line
// plus the five required headers (Host and Sec-WebSocket-Key with empty
// values, the other three with the values the parser requires),
// terminated by CRLF CRLF.
const minServerInitialRead = len("GET / HTTP/1.1\r\n" +
	"Host: \r\n" +
	"Upgrade: websocket\r\n" +
	"Connection: Upgrade\r\n" +
	"Sec-WebSocket-Key: \r\n" +
	"Sec-WebSocket-Version: 13\r\n" +
	"\r\n")

// minClientInitialRead is the length of the shortest syntactically
// complete server response: a status line with no reason phrase,
// terminated immediately by CRLF CRLF.
const minClientInitialRead = len("HTTP/1.1 101 \r\n\r\n")

// Handshake drives one RFC 6455 opening-handshake exchange. Not safe
// for concurrent use: Post must be called from a single goroutine (the
// owning event loop) at a time, matching the single-threaded
// cooperative scheduling model the subsystem is built around.
type Handshake struct {
	state state
	mode  Mode

	socket   api.Socket
	timer    api.Timer
	pipebase api.PipeBase
	rng      api.RNG
	events   *eventQueue

	recvBuf []byte
	recvPos int

	host     string
	resource string

	expectedAccept [acceptKeyLen]byte
	responseCode   ResponseCode
	timedOut       bool

	onComplete func(Outcome)
	prevOwner  any
}

// New constructs a Handshake in the IDLE state. recvBufCapacity must
// be large enough to hold the largest opening handshake this instance
// will ever accept; a peer that does not terminate its message within
// that capacity fails with RCTooBig (server side) or a dropped
// connection (client side).
func New(recvBufCapacity int) *Handshake {
	return NewWithBuffer(make([]byte, recvBufCapacity))
}

// NewWithBuffer constructs a Handshake in the IDLE state using buf as
// its receive buffer, rather than allocating a fresh one. buf's
// capacity bounds the largest opening handshake this instance will
// ever accept, exactly as recvBufCapacity does for New. Callers that
// pool backing arrays across many Handshake instances (see
// pool.SimpleBytePool and transport/tcp's listener) use this instead
// of New.
func NewWithBuffer(buf []byte) *Handshake {
	return &Handshake{
		state:   stateIdle,
		events:  newEventQueue(),
		recvBuf: buf,
	}
}

// IsIdle reports whether this instance is available to Start a new
// exchange.
func (h *Handshake) IsIdle() bool { return h.state == stateIdle }

// Term tears down an idle instance. Precondition: IsIdle().
func (h *Handshake) Term() {
	assertf(h.state == stateIdle, "Term called while not idle")
}

// Done reports whether this instance has reached a terminal state —
// either DONE (onComplete has fired) or IDLE again (cancellation via
// Stop completed). An owner's event dispatcher can poll this after
// each Post to know when it may stop forwarding further events.
func (h *Handshake) Done() bool {
	return h.state == stateDone || h.state == stateIdle
}

// ResponseCode reports the RFC 6455 response code this exchange
// settled on. Only meaningful once Done(); RCNull beforehand or if
// the exchange never reached a protocol-level reply (e.g. it timed
// out or hit a transport error first).
func (h *Handshake) ResponseCode() ResponseCode { return h.responseCode }

// TimedOut reports whether this exchange's terminal failure was
// DefaultTimeout (or StartTimeout's override) expiring, as opposed to
// a transport error or a protocol-level rejection. Only meaningful
// once Done() and the outcome was OutcomeError.
func (h *Handshake) TimedOut() bool { return h.timedOut }

// Reset returns a completed (DONE) instance to IDLE so its owner may
// hand it back to a pool. Precondition: state is DONE, i.e. the
// instance's onComplete callback has already fired.
func (h *Handshake) Reset() {
	assertf(h.state == stateDone, "Reset called while not done")
	h.recvPos = 0
	h.state = stateIdle
}

// RecvBuffer exposes the backing array a Socket implementation must
// write into for EvRecvComplete payloads to line up with this
// instance's own bookkeeping. Callers construct their concrete Socket
// adapter against this slice before calling Start.
func (h *Handshake) RecvBuffer() []byte { return h.recvBuf }

// Start begins a client or server opening-handshake exchange over
// socket, which is borrowed until the exchange completes, bounded by
// DefaultTimeout. resource is the request-target URI and is required
// in ModeClient. host is the Host header value sent (ModeClient); in
// ModeServer it is stored but not used, and the peer's Host header is
// not validated against it. onComplete is invoked exactly once,
// synchronously, from within a Post call.
func (h *Handshake) Start(
	socket api.Socket,
	timer api.Timer,
	pipebase api.PipeBase,
	rng api.RNG,
	mode Mode,
	resource, host string,
	onComplete func(Outcome),
) {
	h.StartTimeout(socket, timer, pipebase, rng, mode, resource, host, DefaultTimeout, onComplete)
}

// StartTimeout is Start with an explicit handshake timeout in place of
// DefaultTimeout. A non-positive timeout falls back to DefaultTimeout.
func (h *Handshake) StartTimeout(
	socket api.Socket,
	timer api.Timer,
	pipebase api.PipeBase,
	rng api.RNG,
	mode Mode,
	resource, host string,
	timeout time.Duration,
	onComplete func(Outcome),
) {
	assertf(h.IsIdle(), "Start called while not idle")
	assertf(mode != ModeClient || resource != "", "Start: resource required in client mode")

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	h.socket = socket
	h.timer = timer
	h.pipebase = pipebase
	h.rng = rng
	h.mode = mode
	h.host = host
	h.resource = resource
	h.onComplete = onComplete
	h.recvPos = 0
	h.responseCode = RCNull
	h.timedOut = false
	h.prevOwner = socket.SwapOwner(h)

	h.timer.Start(timeout)

	switch mode {
	case ModeClient:
		h.state = stateClientSend
		req, expected := buildClientRequest(h.rng, h.host, h.resource, h.pipebase.LocalSPType())
		h.expectedAccept = expected
		if err := h.socket.Send([][]byte{req}); err != nil {
			h.failImmediate()
		}
	case ModeServer:
		h.state = stateServerRecv
		if minServerInitialRead > len(h.recvBuf) {
			h.replyAndStop(RCTooBig, serverHeaders{})
			return
		}
		if err := h.socket.Recv(minServerInitialRead); err != nil {
			h.failImmediate()
		}
	default:
		assertf(false, "Start: invalid mode %d", mode)
	}
}

// Stop initiates graceful cancellation. A no-op from IDLE or DONE.
func (h *Handshake) Stop() {
	if h.state == stateIdle || h.state == stateDone {
		return
	}
	h.state = stateStopping
	h.timer.Stop()
}

// Post delivers one event raised by a collaborator and runs the
// machine to completion — including any further events that handling
// it raises — before returning.
func (h *Handshake) Post(ev api.Event) {
	h.events.post(ev)
	h.events.pump(h.dispatch)
}

func (h *Handshake) dispatch(ev api.Event) {
	switch h.state {
	case stateServerRecv:
		h.handleServerRecv(ev)
	case stateServerReply:
		h.handleServerReply(ev)
	case stateClientSend:
		h.handleClientSend(ev)
	case stateClientRecv:
		h.handleClientRecv(ev)
	case stateStoppingTimerError, stateStoppingTimerDone:
		h.handleStoppingTimer(ev)
	case stateStopping:
		h.handleStopping(ev)
	case stateIdle, stateDone:
		// A straggling event can race a Stop or a prior completion;
		// ignore rather than assert, since the collaborator cannot
		// know the machine reached a terminal state before posting.
	}
}

func (h *Handshake) handleServerRecv(ev api.Event) {
	switch ev.Type {
	case api.EvRecvComplete:
		n, _ := ev.Payload.(int)
		h.recvPos += n

		res, parsed, rc := parseClientOpening(h.recvBuf[:h.recvPos], h.pipebase)
		switch res {
		case resultValid, resultInvalid:
			h.replyAndStop(rc, parsed)
		case resultRecvMore:
			next := nextReadLen(h.recvBuf[:h.recvPos])
			if h.recvPos+next > len(h.recvBuf) {
				h.replyAndStop(RCTooBig, parsed)
				return
			}
			if err := h.socket.Recv(next); err != nil {
				h.failImmediate()
			}
		}
	case api.EvSocketShutdown:
		// Per the transition table: ignored in this state.
	case api.EvSocketError, api.EvTimerFired:
		h.timedOut = ev.Type == api.EvTimerFired
		h.state = stateStoppingTimerError
		h.timer.Stop()
	}
}

func (h *Handshake) replyAndStop(rc ResponseCode, parsed serverHeaders) {
	h.responseCode = rc
	reply := buildServerReply(rc, parsed)
	h.state = stateServerReply
	if err := h.socket.Send([][]byte{reply}); err != nil {
		h.failImmediate()
	}
}

func (h *Handshake) handleServerReply(ev api.Event) {
	switch ev.Type {
	case api.EvSendComplete:
		if h.responseCode == RCOK {
			h.state = stateStoppingTimerDone
		} else {
			h.state = stateStoppingTimerError
		}
		h.timer.Stop()
	case api.EvSocketError, api.EvTimerFired:
		h.timedOut = ev.Type == api.EvTimerFired
		h.state = stateStoppingTimerError
		h.timer.Stop()
	}
}

func (h *Handshake) handleClientSend(ev api.Event) {
	switch ev.Type {
	case api.EvSendComplete:
		h.state = stateClientRecv
		if err := h.socket.Recv(minClientInitialRead); err != nil {
			h.failImmediate()
		}
	case api.EvSocketError, api.EvTimerFired:
		h.timedOut = ev.Type == api.EvTimerFired
		h.state = stateStoppingTimerError
		h.timer.Stop()
	}
}

func (h *Handshake) handleClientRecv(ev api.Event) {
	switch ev.Type {
	case api.EvRecvComplete:
		n, _ := ev.Payload.(int)
		h.recvPos += n

		res, _, rc := parseServerResponse(h.recvBuf[:h.recvPos], h.expectedAccept)
		h.responseCode = rc
		switch res {
		case resultValid:
			h.state = stateStoppingTimerDone
			h.timer.Stop()
		case resultInvalid:
			h.state = stateStoppingTimerError
			h.timer.Stop()
		case resultRecvMore:
			next := nextReadLen(h.recvBuf[:h.recvPos])
			if h.recvPos+next > len(h.recvBuf) {
				h.state = stateStoppingTimerError
				h.timer.Stop()
				return
			}
			if err := h.socket.Recv(next); err != nil {
				h.failImmediate()
			}
		}
	case api.EvSocketError, api.EvTimerFired:
		h.timedOut = ev.Type == api.EvTimerFired
		h.state = stateStoppingTimerError
		h.timer.Stop()
	}
}

func (h *Handshake) handleStoppingTimer(ev api.Event) {
	if ev.Type != api.EvTimerStopped {
		// Socket activity racing the timer shutdown is ignored; only
		// EvTimerStopped unblocks the terminal transition.
		return
	}
	if h.state == stateStoppingTimerError {
		h.leave(OutcomeError)
	} else {
		h.leave(OutcomeOK)
	}
}

func (h *Handshake) handleStopping(ev api.Event) {
	if ev.Type != api.EvTimerStopped {
		return
	}
	if h.socket != nil {
		h.socket.SwapOwner(h.prevOwner)
	}
	h.socket = nil
	h.timer = nil
	h.pipebase = nil
	h.state = stateIdle
	cb := h.onComplete
	h.onComplete = nil
	if cb != nil {
		cb(OutcomeError)
	}
}

// leave performs the shutdown protocol shared by both timer-confirmed
// terminal transitions: return socket ownership to the prior owner,
// clear transient collaborator references, and raise the single
// completion event.
func (h *Handshake) leave(outcome Outcome) {
	if h.socket != nil {
		h.socket.SwapOwner(h.prevOwner)
	}
	h.socket = nil
	h.timer = nil
	h.pipebase = nil
	h.state = stateDone
	cb := h.onComplete
	h.onComplete = nil
	if cb != nil {
		cb(outcome)
	}
}

// failImmediate handles a synchronous error returned directly from a
// Send/Recv call (as opposed to one delivered later as EvSocketError).
func (h *Handshake) failImmediate() {
	h.state = stateStoppingTimerError
	h.timer.Stop()
}

// nextReadLen implements the dribble-read rule: find the longest
// suffix of buf that is a prefix of CRLF CRLF, and return exactly
// enough more bytes to complete the terminator. Always in [1, 4].
func nextReadLen(buf []byte) int {
	term := crlfcrlf
	maxSuffix := len(term) - 1
	if maxSuffix > len(buf) {
		maxSuffix = len(buf)
	}
	for k := maxSuffix; k > 0; k-- {
		if suffixEquals(buf, term[:k]) {
			return len(term) - k
		}
	}
	return len(term)
}

func suffixEquals(buf []byte, prefix string) bool {
	if len(prefix) > len(buf) {
		return false
	}
	suffix := buf[len(buf)-len(prefix):]
	for i := 0; i < len(prefix); i++ {
		if suffix[i] != prefix[i] {
			return false
		}
	}
	return true
}
