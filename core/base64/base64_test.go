package base64_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/momentics/spws/core/base64"
)

func TestEncodeKnownVector(t *testing.T) {
	out := make([]byte, base64.EncodedLen(len("the sample nonce"))+1)
	n, err := base64.Encode(out, []byte("the sample nonce"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out[:n]); got != "dGhlIHNhbXBsZSBub25jZQ==" {
		t.Errorf("got %q", got)
	}
}

func TestRoundTripRandomKeys(t *testing.T) {
	for i := 0; i < 64; i++ {
		k := make([]byte, 16)
		rand.Read(k)

		enc := make([]byte, base64.EncodedLen(len(k))+1)
		n, err := base64.Encode(enc, k)
		if err != nil {
			t.Fatal(err)
		}

		dec := make([]byte, base64.DecodedLen(n))
		dn, err := base64.Decode(dec, enc[:n])
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(dec[:dn], k) {
			t.Errorf("round trip mismatch: %x vs %x", dec[:dn], k)
		}
	}
}

func TestDecodeIgnoresInterspersedWhitespace(t *testing.T) {
	in := []byte("dGhl\r\n IHNh bXBs\tZSBub25jZQ==")
	dec := make([]byte, base64.DecodedLen(len(in)))
	n, err := base64.Decode(dec, in)
	if err != nil {
		t.Fatal(err)
	}
	if string(dec[:n]) != "the sample nonce" {
		t.Errorf("got %q", string(dec[:n]))
	}
}

func TestDecodeStopsAtNonAlphabetByte(t *testing.T) {
	in := []byte("aGVsbG8!garbage")
	dec := make([]byte, base64.DecodedLen(len(in)))
	n, err := base64.Decode(dec, in)
	if err != nil {
		t.Fatal(err)
	}
	if string(dec[:n]) != "hello" {
		t.Errorf("got %q", string(dec[:n]))
	}
}

func TestEncodeNoBufsLeavesOutputUntouched(t *testing.T) {
	out := []byte{0xAA, 0xAA, 0xAA}
	orig := append([]byte(nil), out...)
	_, err := base64.Encode(out, []byte("too long for this buffer"))
	if err != base64.ErrNoBufs {
		t.Fatalf("expected ErrNoBufs, got %v", err)
	}
	if !bytes.Equal(out, orig) {
		t.Errorf("output buffer was modified on overflow: %x", out)
	}
}

func TestDecodeNoBufs(t *testing.T) {
	out := make([]byte, 1)
	_, err := base64.Decode(out, []byte("aGVsbG8="))
	if err != base64.ErrNoBufs {
		t.Fatalf("expected ErrNoBufs, got %v", err)
	}
}
