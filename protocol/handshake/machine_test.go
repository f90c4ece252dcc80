package handshake

import (
	"strings"
	"testing"

	"github.com/momentics/spws/api"
	"github.com/momentics/spws/fake"
)

func newWiredServer(t *testing.T, bufCap int) (*Handshake, *fake.Socket, *fake.Timer) {
	t.Helper()
	h := New(bufCap)
	sock := fake.NewSocket(h.RecvBuffer())
	timer := fake.NewTimer()
	sock.SetPost(h.Post)
	timer.SetPost(h.Post)
	return h, sock, timer
}

func startServer(h *Handshake, sock *fake.Socket, timer *fake.Timer, local api.SPType) (outcome Outcome, done bool) {
	h.Start(sock, timer, api.PeerTable{Local: local}, fake.RNG{}, ModeServer, "", "", func(o Outcome) {
		outcome, done = o, true
	})
	return outcome, done
}

// Scenario 1: happy path, REQ client <-> REP server.
func TestEndToEndHappyPathReqRep(t *testing.T) {
	req := clientReq("Sec-WebSocket-Protocol: x-nanomsg-req\r\n")
	h, sock, timer := newWiredServer(t, 4096)
	sock.SetInbound(req)

	outcome, done := startServer(h, sock, timer, api.SPRep)
	if !done || outcome != OutcomeOK {
		t.Fatalf("done=%v outcome=%v, want OK", done, outcome)
	}
	sent := sock.SentData()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	reply := string(sent[0])
	if !strings.HasPrefix(reply, "HTTP/1.1 101 Switching Protocols\r\n") {
		t.Fatalf("reply = %q", reply)
	}
	if !strings.Contains(reply, "Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n") {
		t.Fatalf("accept key missing/wrong: %q", reply)
	}
	if timer.Idle() == false {
		t.Fatal("timer should be stopped on completion")
	}
	if sock.Owner() != nil {
		t.Fatalf("owner should be restored to nil (the original caller), got %v", sock.Owner())
	}
}

// Scenario 2: version mismatch.
func TestEndToEndVersionMismatch(t *testing.T) {
	req := []byte("GET /pair HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 8\r\n" +
		"\r\n")
	h, sock, timer := newWiredServer(t, 4096)
	sock.SetInbound(req)

	outcome, done := startServer(h, sock, timer, api.SPPair)
	if !done || outcome != OutcomeError {
		t.Fatalf("done=%v outcome=%v, want ERROR", done, outcome)
	}
	reply := string(sock.SentData()[0])
	if !strings.HasPrefix(reply, "HTTP/1.1 400 Unsupported WebSocket Version\r\n") {
		t.Fatalf("reply = %q", reply)
	}
	if !strings.Contains(reply, "Sec-WebSocket-Version: 8\r\n") {
		t.Fatalf("reply did not echo version: %q", reply)
	}
}

// Scenario 3: incompatible peer. PUB client against a REQ server.
func TestEndToEndIncompatiblePeer(t *testing.T) {
	req := clientReq("Sec-WebSocket-Protocol: x-nanomsg-pub\r\n")
	h, sock, timer := newWiredServer(t, 4096)
	sock.SetInbound(req)

	outcome, done := startServer(h, sock, timer, api.SPReq)
	if !done || outcome != OutcomeError {
		t.Fatalf("done=%v outcome=%v, want ERROR", done, outcome)
	}
	reply := string(sock.SentData()[0])
	if !strings.HasPrefix(reply, "HTTP/1.1 400 Incompatible Socket Type\r\n") {
		t.Fatalf("reply = %q", reply)
	}
}

// Scenario 4: absent protocol header. PAIR local succeeds, REQ local fails.
func TestEndToEndAbsentProtocolHeader(t *testing.T) {
	req := clientReq("")

	h1, sock1, timer1 := newWiredServer(t, 4096)
	sock1.SetInbound(req)
	outcome, done := startServer(h1, sock1, timer1, api.SPPair)
	if !done || outcome != OutcomeOK {
		t.Fatalf("PAIR: done=%v outcome=%v, want OK", done, outcome)
	}

	h2, sock2, timer2 := newWiredServer(t, 4096)
	sock2.SetInbound(req)
	outcome2, done2 := startServer(h2, sock2, timer2, api.SPReq)
	if !done2 || outcome2 != OutcomeError {
		t.Fatalf("REQ: done=%v outcome=%v, want ERROR (NOTPEER)", done2, outcome2)
	}
	reply := string(sock2.SentData()[0])
	if !strings.HasPrefix(reply, "HTTP/1.1 400 Incompatible Socket Type\r\n") {
		t.Fatalf("reply = %q", reply)
	}
}

// Scenario 5: dribble read, one byte delivered per Recv call.
func TestEndToEndDribbleRead(t *testing.T) {
	req := clientReq("Sec-WebSocket-Protocol: x-nanomsg-req\r\n")
	h, sock, timer := newWiredServer(t, 4096)
	sock.SetInbound(req)
	sock.SetMaxChunk(1)

	outcome, done := startServer(h, sock, timer, api.SPRep)
	if !done || outcome != OutcomeOK {
		t.Fatalf("done=%v outcome=%v, want OK", done, outcome)
	}
}

// Scenario 6: overflow. Client sends headers with no CRLF CRLF ever.
func TestEndToEndOverflow(t *testing.T) {
	filler := strings.Repeat("A", 2000)
	h, sock, timer := newWiredServer(t, 300)
	sock.SetInbound([]byte(filler))

	outcome, done := startServer(h, sock, timer, api.SPPair)
	if !done || outcome != OutcomeError {
		t.Fatalf("done=%v outcome=%v, want ERROR", done, outcome)
	}
	reply := string(sock.SentData()[0])
	if !strings.HasPrefix(reply, "HTTP/1.1 400 Opening Handshake Too Long\r\n") {
		t.Fatalf("reply = %q", reply)
	}
}

// Client-side round trip: exercises ModeClient against a crafted
// server response, including the expected-accept-key check. The
// response must be preloaded before Start, since this fake transport
// resolves every operation synchronously within the call that issues it.
func TestEndToEndClientSideRoundTrip(t *testing.T) {
	rng := fake.RNG{Fill: 0x9}
	_, expectedAccept := buildClientRequest(rng, "example.com", "/pair", api.SPReq)
	resp := []byte("HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + string(expectedAccept[:]) + "\r\n" +
		"\r\n")

	h := New(4096)
	sock := fake.NewSocket(h.RecvBuffer())
	timer := fake.NewTimer()
	sock.SetPost(h.Post)
	timer.SetPost(h.Post)
	sock.SetInbound(resp)

	var outcome Outcome
	var done bool
	h.Start(sock, timer, api.PeerTable{Local: api.SPReq}, rng, ModeClient, "/pair", "example.com",
		func(o Outcome) { outcome, done = o, true })

	if !done || outcome != OutcomeOK {
		t.Fatalf("done=%v outcome=%v, want OK", done, outcome)
	}
	if len(sock.SentData()) != 1 {
		t.Fatalf("client did not send exactly one request: %d", len(sock.SentData()))
	}
}

func TestNextReadLenWithinBounds(t *testing.T) {
	cases := []struct {
		buf  string
		want int
	}{
		{"", 4},
		{"x", 4},
		{"x\r", 3},
		{"x\r\n", 2},
		{"x\r\n\r", 1},
	}
	for _, c := range cases {
		got := nextReadLen([]byte(c.buf))
		if got != c.want {
			t.Errorf("nextReadLen(%q) = %d, want %d", c.buf, got, c.want)
		}
		if got < 1 || got > 4 {
			t.Errorf("nextReadLen(%q) = %d out of [1,4]", c.buf, got)
		}
	}
}

func TestStopFromMidflightReturnsToIdle(t *testing.T) {
	h, sock, timer := newWiredServer(t, 4096)
	sock.SetInbound([]byte("GET /pair HTTP/1.1\r\n")) // incomplete, stays in SERVER_RECV

	var outcome Outcome
	var done bool
	h.Start(sock, timer, api.PeerTable{Local: api.SPPair}, fake.RNG{}, ModeServer, "", "",
		func(o Outcome) { outcome, done = o, true })

	h.Stop()
	if !done || outcome != OutcomeError {
		t.Fatalf("done=%v outcome=%v, want ERROR after Stop", done, outcome)
	}
	if !h.IsIdle() {
		t.Fatal("Stop's cancellation path must return straight to IDLE, not DONE")
	}
}
