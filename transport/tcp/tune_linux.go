// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package tcp

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// TuneConn disables Nagle's algorithm on conn so handshake bytes are not
// held back waiting for a full segment. Non-TCP conns (e.g. net.Pipe in
// tests) are left untouched.
func TuneConn(conn net.Conn) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return fmt.Errorf("tcp: syscall conn: %w", err)
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	})
	if err != nil {
		return fmt.Errorf("tcp: control: %w", err)
	}
	if sockErr != nil {
		return fmt.Errorf("tcp: setsockopt TCP_NODELAY: %w", sockErr)
	}
	return nil
}
