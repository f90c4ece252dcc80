// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package client dials a TCP connection and drives it through the
// client-role opening handshake before handing the raw net.Conn back
// to the caller. Post-handshake SP framing is out of scope here, per
// the handshake subsystem's own scope boundary; the returned conn is
// ready for an upper layer to frame traffic on.
package client

import (
	"fmt"
	"net"
	"time"

	"github.com/momentics/spws/api"
	"github.com/momentics/spws/protocol/handshake"
	"github.com/momentics/spws/transport/tcp"
)

// DialConfig configures a single client-role handshake attempt.
type DialConfig struct {
	Addr     string        // TCP address to dial (e.g. "host:port")
	Host     string        // Host header value; defaults to Addr if empty
	Resource string        // request-target path, e.g. "/sp"
	LocalSP  api.SPType    // this peer's own SP socket type
	RecvCap  int           // opening-handshake receive buffer capacity
	Timeout  time.Duration // handshake timeout; 0 uses handshake.DefaultTimeout
}

// Dial opens a TCP connection to cfg.Addr and performs the client-role
// opening handshake. On success it returns the net.Conn, ready for SP
// framing by the caller; on failure it closes the connection and
// returns an error wrapping api.ErrHandshakeFailed, unwrappable via
// errors.As into an *api.Error carrying the specific ErrorCode.
func Dial(cfg *DialConfig) (net.Conn, error) {
	conn, err := net.Dial("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", cfg.Addr, err)
	}
	if err := tcp.TuneConn(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: tune conn: %w", err)
	}

	host := cfg.Host
	if host == "" {
		host = cfg.Addr
	}

	h := handshake.New(cfg.RecvCap)

	// Serialize events from the Recv/Send goroutines and the timer's
	// AfterFunc callback through a single dispatcher, since Handshake
	// is not safe for concurrent Post calls. See transport/tcp's
	// listener for the server-side analogue of this pattern: terminal
	// is set by onComplete itself, on this same dispatcher goroutine,
	// so the dispatcher never races main's own h.Reset() below by
	// reading h.state through Done() after the exchange has ended.
	events := make(chan api.Event, 4)
	terminal := false
	post := func(ev api.Event) { events <- ev }
	go func() {
		for ev := range events {
			h.Post(ev)
			if terminal {
				return
			}
		}
	}()

	sock := tcp.NewSocket(conn, h.RecvBuffer(), post)
	timer := tcp.NewTimer(post)

	result := make(chan handshake.Outcome, 1)
	h.StartTimeout(sock, timer, api.PeerTable{Local: cfg.LocalSP}, api.CryptoRNG{}, handshake.ModeClient,
		cfg.Resource, host, cfg.Timeout,
		func(outcome handshake.Outcome) {
			terminal = true
			result <- outcome
		})

	outcome := <-result
	failErr := errorFromOutcome(h)
	h.Reset()
	h.Term()
	if outcome != handshake.OutcomeOK {
		conn.Close()
		return nil, failErr
	}
	return conn, nil
}

// errorFromOutcome builds the error Dial returns on failure, reading
// h's terminal detail before the caller resets it. The result always
// unwraps to api.ErrHandshakeFailed for callers matching on the
// sentinel, and to an *api.Error carrying a specific ErrorCode for
// callers that want the detail (errors.As).
func errorFromOutcome(h *handshake.Handshake) error {
	code, msg := api.ErrCodeInternal, "opening handshake failed"
	switch {
	case h.TimedOut():
		code, msg = api.ErrCodeTimeout, "opening handshake timed out"
	case h.ResponseCode() != handshake.RCNull && h.ResponseCode() != handshake.RCOK:
		code, msg = api.ErrCodeInvalidArgument, "peer rejected opening handshake"
	}
	structured := api.NewError(code, msg).WithContext("response_code", int(h.ResponseCode()))
	return fmt.Errorf("%w: %w", api.ErrHandshakeFailed, structured)
}
