package sha1_test

import (
	"fmt"
	"testing"

	"github.com/momentics/spws/core/sha1"
)

func TestVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"The quick brown fox jumps over the lazy dog", "2fd4e1c67a2d28fced849ee1bb76e7391b93eb12"},
	}
	for _, c := range cases {
		got := sha1.Sum20([]byte(c.in))
		gotHex := fmt.Sprintf("%x", got[:])
		if gotHex != c.want {
			t.Errorf("Sum20(%q) = %s, want %s", c.in, gotHex, c.want)
		}
	}
}

func TestIncrementalWritesMatchOneShot(t *testing.T) {
	msg := []byte("the sample nonce0123456789the sample nonce0123456789")
	oneShot := sha1.Sum20(msg)

	h := sha1.New()
	for _, b := range msg {
		h.Write([]byte{b})
	}
	incremental := h.Sum()

	if oneShot != incremental {
		t.Errorf("incremental digest mismatch: %x vs %x", incremental, oneShot)
	}
}

func TestResetReusesHasher(t *testing.T) {
	h := sha1.New()
	h.Write([]byte("abc"))
	_ = h.Sum()
	h.Reset()
	h.Write([]byte(""))
	got := h.Sum()
	want := sha1.Sum20(nil)
	if got != want {
		t.Errorf("after Reset, got %x want %x", got, want)
	}
}

func TestLongInputSpansMultipleBlocks(t *testing.T) {
	msg := make([]byte, 1000)
	for i := range msg {
		msg[i] = byte(i)
	}
	h := sha1.New()
	h.Write(msg[:300])
	h.Write(msg[300:700])
	h.Write(msg[700:])
	got := h.Sum()
	want := sha1.Sum20(msg)
	if got != want {
		t.Errorf("chunked write mismatch: %x vs %x", got, want)
	}
}
