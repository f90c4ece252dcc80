// File: protocol/handshake/spmap.go
// Author: momentics <momentics@gmail.com>
//
// The static, closed SP sub-protocol map: a bidirectional table between
// SP socket-type IDs and "x-<family>-<role>" HTTP sub-protocol tokens.
// Lookup is linear; the table never changes size at runtime, so a
// linear scan over 10 entries is simpler and just as fast as a map.

package handshake

import "github.com/momentics/spws/api"

type spMapEntry struct {
	id    api.SPType
	token string
}

var spMap = [...]spMapEntry{
	{api.SPPair, "x-nanomsg-pair"},
	{api.SPReq, "x-nanomsg-req"},
	{api.SPRep, "x-nanomsg-rep"},
	{api.SPPub, "x-nanomsg-pub"},
	{api.SPSub, "x-nanomsg-sub"},
	{api.SPSurveyor, "x-nanomsg-surveyor"},
	{api.SPRespondent, "x-nanomsg-respondent"},
	{api.SPPush, "x-nanomsg-push"},
	{api.SPPull, "x-nanomsg-pull"},
	{api.SPBus, "x-nanomsg-bus"},
}

// spTokenForID returns the sub-protocol token for an SP socket-type ID.
// ok is false iff the local pipe base reports a socket type this
// subsystem does not know about — a programmer error, since every SP
// socket type must have a token (see 4.E, "must be present — a
// programmer-error otherwise").
func spTokenForID(id api.SPType) (token string, ok bool) {
	for _, e := range spMap {
		if e.id == id {
			return e.token, true
		}
	}
	return "", false
}

// spIDForToken is a case-insensitive reverse lookup used by the server
// parser to map the client's Sec-WebSocket-Protocol token back to an
// SP socket-type ID.
func spIDForToken(token []byte) (id api.SPType, ok bool) {
	for _, e := range spMap {
		if eqASCII(token, []byte(e.token), true) {
			return e.id, true
		}
	}
	return 0, false
}
