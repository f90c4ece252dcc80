// File: protocol/handshake/parser.go
// Author: momentics <momentics@gmail.com>
//
// Incremental parse of the HTTP/1.1-like opening handshake into a set
// of named header slices. Both entry points share the same
// header-matching loop shape; they return RECV_MORE until the
// terminating CRLF CRLF sequence is present in the buffer, after which
// parsing is deterministic and returns VALID or INVALID in one step.

package handshake

import "github.com/momentics/spws/api"

type parseResult int

const (
	resultInvalid parseResult = iota
	resultValid
	resultRecvMore
)

// ResponseCode selects the server's reply on a failed (or successful)
// parse. Preserved verbatim from the reference implementation,
// including the two reserved/unreachable members: RCUnused2 is never
// assigned by this parser, and RCNNProto has no code path that
// produces it (see DESIGN.md's Open Questions) — neither
// should be given a new trigger.
type ResponseCode int

const (
	RCOK ResponseCode = iota
	RCTooBig
	RCWSProto
	RCWSVersion
	RCUnused2
	RCNNProto
	RCNotPeer
	RCUnknownType
	RCNull
)

// serverHeaders is the parsed header view produced by parseClientOpening.
type serverHeaders struct {
	uri, host, origin, key, upgrade, connection, version, protocol, extensions slice
}

// clientHeaders is the parsed header view produced by parseServerResponse.
type clientHeaders struct {
	statusCode, reasonPhrase, server, acceptKey, upgrade, connection, version, protocol, extensions slice
}

const crlf = "\r\n"
const crlfcrlf = "\r\n\r\n"

// parseClientOpening parses an HTTP/1.1 GET Upgrade request out of buf
// (the valid prefix of the receive buffer), validates it against RFC
// 6455 and SP compatibility (via pipebase), and reports the outcome.
func parseClientOpening(buf []byte, pipebase api.PipeBase) (parseResult, serverHeaders, ResponseCode) {
	if indexFrom(buf, crlfcrlf, 0) < 0 {
		return resultRecvMore, serverHeaders{}, RCNull
	}

	c := &cursor{buf: buf}
	if matchToken(c, "GET ", false, false) != match {
		return resultInvalid, serverHeaders{}, RCWSProto
	}
	uri, res := matchValue(c, " ", false, false)
	if res != match {
		return resultInvalid, serverHeaders{}, RCWSProto
	}
	if matchToken(c, "HTTP/1.1", false, false) != match {
		return resultInvalid, serverHeaders{}, RCWSProto
	}
	if matchToken(c, crlf, false, false) != match {
		return resultInvalid, serverHeaders{}, RCWSProto
	}

	h := serverHeaders{uri: uri}
	if ok := scanHeaders(c, map[string]*slice{
		"Host:":                     &h.host,
		"Origin:":                   &h.origin,
		"Sec-WebSocket-Key:":        &h.key,
		"Upgrade:":                  &h.upgrade,
		"Connection:":               &h.connection,
		"Sec-WebSocket-Version:":    &h.version,
		"Sec-WebSocket-Protocol:":   &h.protocol,
		"Sec-WebSocket-Extensions:": &h.extensions,
	}); !ok {
		return resultInvalid, h, RCWSProto
	}

	if !h.host.present() || !h.upgrade.present() || !h.connection.present() ||
		!h.key.present() || !h.version.present() {
		return resultInvalid, h, RCWSProto
	}
	if validateValue("13", h.version, true) != match {
		return resultInvalid, h, RCWSVersion
	}
	if validateValue("websocket", h.upgrade, true) != match {
		return resultInvalid, h, RCWSProto
	}
	if validateValue("Upgrade", h.connection, true) != match {
		return resultInvalid, h, RCWSProto
	}

	var spID api.SPType
	if h.protocol.present() {
		id, ok := spIDForToken(h.protocol.Data)
		if !ok {
			return resultInvalid, h, RCUnknownType
		}
		spID = id
	} else {
		spID = api.SPPair
	}
	if !pipebase.IsPeer(spID) {
		return resultInvalid, h, RCNotPeer
	}
	return resultValid, h, RCOK
}

// parseServerResponse parses an HTTP/1.1 status-line response and
// validates it against RFC 6455 and the pre-computed expected accept
// key. The non-standard "-Server" header name suffixes below are
// preserved verbatim from the reference implementation; see
// DESIGN.md's Open Question decisions.
func parseServerResponse(buf []byte, expectedAcceptKey [acceptKeyLen]byte) (parseResult, clientHeaders, ResponseCode) {
	if indexFrom(buf, crlfcrlf, 0) < 0 {
		return resultRecvMore, clientHeaders{}, RCNull
	}

	c := &cursor{buf: buf}
	if matchToken(c, "HTTP/1.1 ", false, false) != match {
		return resultInvalid, clientHeaders{}, RCWSProto
	}
	status, res := matchValue(c, " ", false, false)
	if res != match {
		return resultInvalid, clientHeaders{}, RCWSProto
	}
	reason, res := matchValue(c, crlf, false, true)
	if res != match {
		return resultInvalid, clientHeaders{}, RCWSProto
	}

	h := clientHeaders{statusCode: status, reasonPhrase: reason}
	if ok := scanHeaders(c, map[string]*slice{
		"Server:":                        &h.server,
		"Sec-WebSocket-Accept:":          &h.acceptKey,
		"Upgrade:":                       &h.upgrade,
		"Connection:":                    &h.connection,
		"Sec-WebSocket-Version-Server:":  &h.version,
		"Sec-WebSocket-Protocol-Server:": &h.protocol,
		"Sec-WebSocket-Extensions:":      &h.extensions,
	}); !ok {
		return resultInvalid, h, RCWSProto
	}

	if !h.statusCode.present() || !h.upgrade.present() || !h.connection.present() || !h.acceptKey.present() {
		return resultInvalid, h, RCWSProto
	}
	if validateValue("101", h.statusCode, false) != match {
		return resultInvalid, h, RCWSProto
	}
	if validateValue("websocket", h.upgrade, true) != match {
		return resultInvalid, h, RCWSProto
	}
	if validateValue("Upgrade", h.connection, true) != match {
		return resultInvalid, h, RCWSProto
	}
	if validateValue(string(expectedAcceptKey[:]), h.acceptKey, true) != match {
		return resultInvalid, h, RCWSProto
	}
	return resultValid, h, RCOK
}

// scanHeaders drives the header loop shared by both parse entry
// points: repeatedly try each recognized field name (case-insensitive)
// and capture its value; an unrecognized header is skipped to its
// terminating CRLF. The loop ends when a bare CRLF is matched. Returns
// false if the headers section is malformed (no terminator reachable).
func scanHeaders(c *cursor, fields map[string]*slice) bool {
	for {
		if matchToken(c, crlf, false, false) == match {
			return true
		}
		matched := false
		for name, dst := range fields {
			if matchToken(c, name, true, false) == match {
				v, res := matchValue(c, crlf, true, true)
				if res != match {
					return false
				}
				*dst = v
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		// Unknown header: skip to its terminating CRLF.
		if _, res := matchValue(c, crlf, false, false); res != match {
			return false
		}
	}
}
