// File: protocol/handshake/builder.go
// Author: momentics <momentics@gmail.com>
//
// Formats the two handshake wire messages: the client's opening GET
// request and the server's 101/400 reply.

package handshake

import (
	"strings"

	"github.com/momentics/spws/api"
	"github.com/momentics/spws/core/base64"
)

const clientKeyRawLen = 16  // bytes of entropy in a Sec-WebSocket-Key
const clientKeyB64Len = 24 // base64.EncodedLen(16)

// buildClientRequest generates a random Sec-WebSocket-Key via rng,
// formats the GET Upgrade request for host/resource advertising
// localType's sub-protocol token, and returns both the wire bytes and
// the accept key the caller must later validate the server's response
// against.
func buildClientRequest(rng api.RNG, host, resource string, localType api.SPType) (req []byte, expectedAccept [acceptKeyLen]byte) {
	var raw [clientKeyRawLen]byte
	rng.Generate(raw[:])

	var scratch [clientKeyB64Len + 1]byte
	n, err := base64.Encode(scratch[:], raw[:])
	assertf(err == nil && n == clientKeyB64Len, "buildClientRequest: unexpected key encoding length")
	key := scratch[:clientKeyB64Len]

	token, ok := spTokenForID(localType)
	assertf(ok, "buildClientRequest: no SP token for local socket type %d", localType)

	var b strings.Builder
	b.WriteString("GET ")
	b.WriteString(resource)
	b.WriteString(" HTTP/1.1\r\n")
	b.WriteString("Host: ")
	b.WriteString(host)
	b.WriteString(crlf)
	b.WriteString("Upgrade: websocket\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	b.WriteString("Sec-WebSocket-Key: ")
	b.Write(key)
	b.WriteString(crlf)
	b.WriteString("Sec-WebSocket-Version: 13\r\n")
	b.WriteString("Sec-WebSocket-Protocol: ")
	b.WriteString(token)
	b.WriteString(crlfcrlf)

	return []byte(b.String()), deriveAcceptKey(key)
}

// failureReason maps a non-OK response code to the human-readable
// phrase the reference implementation places after "HTTP/1.1 400 ".
func failureReason(rc ResponseCode) string {
	switch rc {
	case RCTooBig:
		return "Opening Handshake Too Long"
	case RCWSProto:
		return "Cannot Have Body"
	case RCWSVersion:
		return "Unsupported WebSocket Version"
	case RCNNProto:
		return "Missing nanomsg Required Headers"
	case RCNotPeer:
		return "Incompatible Socket Type"
	case RCUnknownType:
		return "Unrecognized Socket Type"
	default:
		assertf(false, "failureReason: unreachable response code %d", rc)
		return ""
	}
}

// buildServerReply formats the server's reply to a parsed client
// opening request. On success (rc == RCOK) it echoes the client's
// Sec-WebSocket-Protocol token verbatim; on failure it echoes the
// client's Sec-WebSocket-Version field next to the human-readable
// reason for rc.
func buildServerReply(rc ResponseCode, h serverHeaders) []byte {
	var b strings.Builder
	if rc == RCOK {
		accept := deriveAcceptKey(h.key.Data)
		b.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
		b.WriteString("Upgrade: websocket\r\n")
		b.WriteString("Connection: Upgrade\r\n")
		b.WriteString("Sec-WebSocket-Accept: ")
		b.Write(accept[:])
		b.WriteString(crlf)
		if h.protocol.present() {
			b.WriteString("Sec-WebSocket-Protocol: ")
			b.Write(h.protocol.Data)
			b.WriteString(crlf)
		}
		b.WriteString(crlf)
		return []byte(b.String())
	}

	b.WriteString("HTTP/1.1 400 ")
	b.WriteString(failureReason(rc))
	b.WriteString(crlf)
	if h.version.present() {
		b.WriteString("Sec-WebSocket-Version: ")
		b.Write(h.version.Data)
		b.WriteString(crlf)
	}
	b.WriteString(crlf)
	return []byte(b.String())
}
