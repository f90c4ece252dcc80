package handshake

import "testing"

func TestDeriveAcceptKeyRFC6455Example(t *testing.T) {
	got := deriveAcceptKey([]byte("dGhlIHNhbXBsZSBub25jZQ=="))
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if string(got[:]) != want {
		t.Fatalf("got %q, want %q", got[:], want)
	}
}
