// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp adapts net.Conn to the async api.Socket/api.Timer
// contracts protocol/handshake drives, and runs the accept loop that
// takes every inbound connection through a pooled Handshake before
// handing it off to the caller.
package tcp
