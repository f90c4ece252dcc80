// Package handshake implements the RFC 6455 WebSocket opening handshake
// used to bootstrap Scalability-Protocol (SP) message streams over an
// already-connected byte-stream socket, in either client or server
// role, negotiating an SP sub-protocol identifier.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The package is a small protocol stack in its own right:
//
//   - scanner.go    token/value matching over a byte-buffer cursor
//   - parser.go     incremental client-request / server-response parsing
//   - builder.go    request/reply wire-format formatting
//   - acceptkey.go  Sec-WebSocket-Accept derivation (SHA-1 + Base64)
//   - spmap.go      the static SP sub-protocol token <-> socket-type table
//   - eventqueue.go the event inbox a Handshake is driven through
//   - machine.go    the Handshake state machine tying all of the above
//     to an external api.Socket/api.Timer/api.PipeBase/api.RNG
//
// It depends on no general-purpose HTTP library: the parser, SHA-1, and
// Base64 routines are hand-rolled (core/sha1, core/base64) by design,
// not as a stdlib-avoidance default — see DESIGN.md.
package handshake
