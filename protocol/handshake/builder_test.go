package handshake

import (
	"strings"
	"testing"

	"github.com/momentics/spws/api"
)

type fixedRNG struct{ b byte }

func (f fixedRNG) Generate(buf []byte) {
	for i := range buf {
		buf[i] = f.b
	}
}

func TestBuildClientRequestShape(t *testing.T) {
	req, accept := buildClientRequest(fixedRNG{0x42}, "example.com", "/pair", api.SPReq)
	s := string(req)
	if !strings.HasPrefix(s, "GET /pair HTTP/1.1\r\n") {
		t.Fatalf("bad request line: %q", s)
	}
	if !strings.Contains(s, "Host: example.com\r\n") {
		t.Fatalf("missing Host: %q", s)
	}
	if !strings.Contains(s, "Sec-WebSocket-Protocol: x-nanomsg-req\r\n") {
		t.Fatalf("missing protocol token: %q", s)
	}
	if !strings.HasSuffix(s, crlfcrlf) {
		t.Fatalf("missing terminator: %q", s)
	}
	if len(accept) != acceptKeyLen {
		t.Fatalf("accept key len = %d", len(accept))
	}

	res, h, rc := parseClientOpening(req, api.PeerTable{Local: api.SPRep})
	if res != resultValid || rc != RCOK {
		t.Fatalf("built request failed to reparse: res=%v rc=%v", res, rc)
	}
	if deriveAcceptKey(h.key.Data) != accept {
		t.Fatal("accept key mismatch between builder and derivation from parsed key")
	}
}

func TestBuildServerReplySuccessRoundTrips(t *testing.T) {
	req, expectedAccept := buildClientRequest(fixedRNG{0x7}, "h", "/", api.SPPub)
	_, h, rc := parseClientOpening(req, api.PeerTable{Local: api.SPSub})
	if rc != RCOK {
		t.Fatalf("setup: rc=%v", rc)
	}
	reply := buildServerReply(rc, h)
	res, ch, crc := parseServerResponse(reply, expectedAccept)
	if res != resultValid || crc != RCOK {
		t.Fatalf("reply failed to parse: res=%v rc=%v", res, crc)
	}
	if string(ch.acceptKey.Data) != string(expectedAccept[:]) {
		t.Fatalf("accept mismatch: got %q want %q", ch.acceptKey.Data, expectedAccept[:])
	}
}

func TestBuildServerReplyFailureReasons(t *testing.T) {
	cases := []struct {
		rc     ResponseCode
		reason string
	}{
		{RCTooBig, "Opening Handshake Too Long"},
		{RCWSProto, "Cannot Have Body"},
		{RCWSVersion, "Unsupported WebSocket Version"},
		{RCNNProto, "Missing nanomsg Required Headers"},
		{RCNotPeer, "Incompatible Socket Type"},
		{RCUnknownType, "Unrecognized Socket Type"},
	}
	h := serverHeaders{version: slice{Data: []byte("13")}}
	for _, c := range cases {
		reply := string(buildServerReply(c.rc, h))
		want := "HTTP/1.1 400 " + c.reason + "\r\n"
		if !strings.HasPrefix(reply, want) {
			t.Fatalf("rc=%v: got %q, want prefix %q", c.rc, reply, want)
		}
		if !strings.Contains(reply, "Sec-WebSocket-Version: 13\r\n") {
			t.Fatalf("rc=%v: missing echoed version: %q", c.rc, reply)
		}
	}
}
