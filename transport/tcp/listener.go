// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp provides the accept loop that runs every inbound
// connection through the opening handshake before handing it to the
// caller.

package tcp

import (
	"fmt"
	"net"
	"time"

	"github.com/momentics/spws/api"
	"github.com/momentics/spws/pool"
	"github.com/momentics/spws/protocol/handshake"
)

// maxOutstandingHandshakes sizes the SimpleBytePool backing fresh
// Handshake instances: a reasonable bound on concurrent in-flight
// opening handshakes before the pool falls back to ad hoc allocation.
const maxOutstandingHandshakes = 256

// ListenerConfig holds configuration for the TCP listener.
type ListenerConfig struct {
	Addr     string              // TCP address to bind (e.g., ":9001")
	LocalSP  api.SPType          // the server's own SP socket type
	RecvCap  int                 // opening-handshake receive buffer capacity
	Timeout  time.Duration       // per-connection handshake timeout; 0 uses handshake.DefaultTimeout
	Logger   api.Logger          // diagnostic sink; nil uses api.DefaultLogger
	OnReady  func(conn net.Conn) // invoked once a handshake completes OK; owns conn afterward
}

func (cfg *ListenerConfig) logf(format string, args ...any) {
	logger := cfg.Logger
	if logger == nil {
		logger = api.DefaultLogger
	}
	logger(format, args...)
}

// Serve opens the TCP listening socket and runs the accept loop,
// driving each connection through a pooled Handshake before handing
// successful ones to cfg.OnReady. Rejected or failed connections are
// closed.
func Serve(cfg *ListenerConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("tcp listen failed: %w", err)
	}
	defer ln.Close()

	// SimpleBytePool supplies the backing array each freshly-created
	// Handshake keeps as its receive buffer for the rest of its life
	// in hsPool; recycling happens at the Handshake level (Reset),
	// not by returning individual buffers here.
	bufPool := pool.NewSimpleBytePool(maxOutstandingHandshakes, cfg.RecvCap)
	hsPool := pool.NewSyncPool(func() *handshake.Handshake {
		return handshake.NewWithBuffer(bufPool.Get())
	})

	for {
		conn, err := ln.Accept()
		if err != nil {
			cfg.logf("tcp: accept error: %v", err)
			continue
		}
		go acceptOne(conn, cfg, hsPool)
	}
}

func acceptOne(conn net.Conn, cfg *ListenerConfig, hsPool *pool.SyncPool[*handshake.Handshake]) {
	if err := TuneConn(conn); err != nil {
		cfg.logf("tcp: socket tuning failed: %v", err)
	}

	h := hsPool.Get()

	// Serialize events from the Recv/Send goroutines and the timer's
	// AfterFunc callback through a single dispatcher, since Handshake
	// is not safe for concurrent Post calls. terminal is set by
	// onComplete itself, which always runs synchronously on this very
	// dispatcher goroutine (Socket/Timer only ever post to the events
	// channel, never call h.Post directly) — so the dispatcher never
	// needs to read h's own state to know when to stop, and in
	// particular never reads it after h has been returned to hsPool
	// and possibly handed to, and mutated by, a different acceptOne.
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

	sock := NewSocket(conn, h.RecvBuffer(), post)
	timer := NewTimer(post)

	h.StartTimeout(sock, timer, api.PeerTable{Local: cfg.LocalSP}, api.CryptoRNG{}, handshake.ModeServer, "", "", cfg.Timeout,
		func(outcome handshake.Outcome) {
			terminal = true
			h.Reset()
			hsPool.Put(h)
			if outcome != handshake.OutcomeOK {
				conn.Close()
				return
			}
			if cfg.OnReady != nil {
				cfg.OnReady(conn)
			} else {
				conn.Close()
			}
		})
}
