// Package fake
// Author: momentics <momentics@gmail.com>
//
// Deterministic test doubles for the api.Socket / api.Timer / api.RNG
// collaborators a Handshake drives. Adapted from the mutex-protected,
// Set*-configurable fake transport used elsewhere in this codebase
// family, narrowed to the handshake subsystem's async completion shape:
// every operation here resolves synchronously and immediately posts
// its completion event, which is sufficient to drive a Handshake
// end-to-end from within a single test call.
package fake

import (
	"sync"

	"github.com/momentics/spws/api"
)

// Socket is a fake api.Socket backed by a caller-supplied buffer (the
// Handshake's own RecvBuffer()) and a preloaded inbound byte stream.
// Not safe for concurrent use beyond the single-threaded cooperative
// model the real subsystem assumes.
type Socket struct {
	mu sync.Mutex

	buf     []byte
	written int
	inbound []byte

	recvErr  error
	sendErr  error
	maxChunk int // 0 means unlimited

	sent  [][]byte
	owner any

	post func(api.Event)
}

// NewSocket constructs a fake Socket that writes received bytes into
// buf, starting at offset 0. buf should be the same slice the
// Handshake under test returns from RecvBuffer().
func NewSocket(buf []byte) *Socket {
	return &Socket{buf: buf}
}

// SetPost registers the callback invoked with each completion event —
// typically a Handshake's Post method.
func (s *Socket) SetPost(f func(api.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.post = f
}

// SetInbound replaces the bytes future Recv calls will deliver.
func (s *Socket) SetInbound(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbound = append([]byte(nil), data...)
}

// SetRecvError makes the next single Recv call fail synchronously with
// err, then clears itself.
func (s *Socket) SetRecvError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recvErr = err
}

// SetSendError makes the next single Send call fail synchronously with
// err, then clears itself.
func (s *Socket) SetSendError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErr = err
}

// SetMaxChunk caps how many bytes a single Recv call delivers,
// regardless of how many were requested, simulating a slow peer
// trickling bytes in over many reads (0 means unlimited).
func (s *Socket) SetMaxChunk(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxChunk = n
}

// SentData returns every buffer Send has been called with, in order.
func (s *Socket) SentData() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sent))
	copy(out, s.sent)
	return out
}

// Owner returns the current owner, as last set by SwapOwner.
func (s *Socket) Owner() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Recv implements api.Socket.
func (s *Socket) Recv(n int) error {
	s.mu.Lock()
	if s.recvErr != nil {
		err := s.recvErr
		s.recvErr = nil
		s.mu.Unlock()
		return err
	}
	take := n
	if take > len(s.inbound) {
		take = len(s.inbound)
	}
	if s.maxChunk > 0 && take > s.maxChunk {
		take = s.maxChunk
	}
	if take == 0 {
		// No data available: a real socket would leave this read
		// pending rather than complete it with zero bytes. The test
		// driving this fake is expected to feed more inbound data (or
		// raise shutdown/error) to unblock it.
		s.mu.Unlock()
		return nil
	}
	copy(s.buf[s.written:], s.inbound[:take])
	s.inbound = s.inbound[take:]
	s.written += take
	post := s.post
	s.mu.Unlock()

	if post != nil {
		post(api.Event{Type: api.EvRecvComplete, Payload: take})
	}
	return nil
}

// Send implements api.Socket.
func (s *Socket) Send(bufs [][]byte) error {
	s.mu.Lock()
	if s.sendErr != nil {
		err := s.sendErr
		s.sendErr = nil
		s.mu.Unlock()
		return err
	}
	for _, b := range bufs {
		cp := append([]byte(nil), b...)
		s.sent = append(s.sent, cp)
	}
	post := s.post
	s.mu.Unlock()

	if post != nil {
		post(api.Event{Type: api.EvSendComplete})
	}
	return nil
}

// SwapOwner implements api.Socket.
func (s *Socket) SwapOwner(newOwner any) (previousOwner any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previousOwner = s.owner
	s.owner = newOwner
	return previousOwner
}

// RaiseShutdown posts EvSocketShutdown, simulating a peer-initiated close.
func (s *Socket) RaiseShutdown() {
	s.mu.Lock()
	post := s.post
	s.mu.Unlock()
	if post != nil {
		post(api.Event{Type: api.EvSocketShutdown})
	}
}

// RaiseError posts EvSocketError, simulating an I/O failure detected
// outside of a Recv/Send call.
func (s *Socket) RaiseError() {
	s.mu.Lock()
	post := s.post
	s.mu.Unlock()
	if post != nil {
		post(api.Event{Type: api.EvSocketError})
	}
}
