// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package tcp

import (
	"io"
	"net"

	"github.com/momentics/spws/api"
)

// Socket adapts a net.Conn to api.Socket. Recv/Send each run one
// blocking syscall on its own goroutine and post the completion event
// back through postFn once it returns — satisfying the "async,
// completes by delivering an event" contract without an OS-level
// async I/O facility. The handshake machine only ever has one Recv or
// one Send outstanding at a time, so no synchronization is needed
// around the shared recv buffer offset.
type Socket struct {
	conn    net.Conn
	buf     []byte
	written int
	owner   any
	postFn  func(api.Event)
}

// NewSocket constructs a Socket writing received bytes into recvBuf
// (typically a Handshake's own RecvBuffer()) and posting completion
// events through post (typically a Handshake's Post method).
func NewSocket(conn net.Conn, recvBuf []byte, post func(api.Event)) *Socket {
	return &Socket{conn: conn, buf: recvBuf, postFn: post}
}

// Recv implements api.Socket.
func (s *Socket) Recv(n int) error {
	go func() {
		end := s.written + n
		if end > len(s.buf) {
			end = len(s.buf)
		}
		nread, err := s.conn.Read(s.buf[s.written:end])
		if err != nil {
			if err == io.EOF {
				s.postFn(api.Event{Type: api.EvSocketShutdown})
			} else {
				s.postFn(api.Event{Type: api.EvSocketError, Payload: err})
			}
			return
		}
		s.written += nread
		s.postFn(api.Event{Type: api.EvRecvComplete, Payload: nread})
	}()
	return nil
}

// Send implements api.Socket.
func (s *Socket) Send(bufs [][]byte) error {
	go func() {
		for _, b := range bufs {
			if _, err := s.conn.Write(b); err != nil {
				s.postFn(api.Event{Type: api.EvSocketError, Payload: err})
				return
			}
		}
		s.postFn(api.Event{Type: api.EvSendComplete})
	}()
	return nil
}

// SwapOwner implements api.Socket.
func (s *Socket) SwapOwner(newOwner any) (previousOwner any) {
	previousOwner, s.owner = s.owner, newOwner
	return previousOwner
}
