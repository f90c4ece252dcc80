// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package server exposes the server-role half of the opening handshake
// as a small, application-facing facade over transport/tcp's accept
// loop. Post-handshake SP framing is out of scope here, per the
// handshake subsystem's own scope boundary; OnReady receives a raw
// net.Conn ready for an upper layer to frame traffic on.
package server

import (
	"net"
	"time"

	"github.com/momentics/spws/api"
	"github.com/momentics/spws/transport/tcp"
)

// DefaultRecvCap is used by Config.RecvCap when left at zero: a few
// KiB, comfortably larger than a minimal valid opening handshake plus
// realistic headers.
const DefaultRecvCap = 4096

// Config configures a listening server.
type Config struct {
	Addr    string        // TCP address to bind (e.g. ":9001")
	LocalSP api.SPType    // this server's own SP socket type
	RecvCap int           // opening-handshake receive buffer capacity; 0 uses DefaultRecvCap
	Timeout time.Duration // per-connection handshake timeout; 0 uses handshake.DefaultTimeout
	Logger  api.Logger    // diagnostic sink; nil uses api.DefaultLogger
	OnReady func(conn net.Conn)
}

// ListenAndServe binds cfg.Addr and runs the accept loop, taking every
// inbound connection through the opening handshake before invoking
// cfg.OnReady with the upgraded connection. It returns only if binding
// cfg.Addr fails; accept errors are logged and the loop continues.
func ListenAndServe(cfg *Config) error {
	recvCap := cfg.RecvCap
	if recvCap == 0 {
		recvCap = DefaultRecvCap
	}
	return tcp.Serve(&tcp.ListenerConfig{
		Addr:    cfg.Addr,
		LocalSP: cfg.LocalSP,
		RecvCap: recvCap,
		Timeout: cfg.Timeout,
		Logger:  cfg.Logger,
		OnReady: cfg.OnReady,
	})
}
