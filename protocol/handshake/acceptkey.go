// File: protocol/handshake/acceptkey.go
// Author: momentics <momentics@gmail.com>
//
// Sec-WebSocket-Accept derivation per RFC 6455 §4.2.2: concatenate the
// client's raw (still-Base64) Sec-WebSocket-Key bytes with the fixed
// magic GUID, SHA-1 the result, then Base64-encode the 20-byte digest.

package handshake

import (
	"github.com/momentics/spws/core/base64"
	"github.com/momentics/spws/core/sha1"
)

// magicGUID is the fixed ASCII string RFC 6455 mandates.
const magicGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// acceptKeyLen is the fixed length of a derived accept key: 28 Base64
// characters (20 bytes -> ceil(20/3)*4 == 28, with one '=' pad).
const acceptKeyLen = 28

// deriveAcceptKey computes the expected Sec-WebSocket-Accept value for
// the given raw (Base64-text) Sec-WebSocket-Key bytes.
func deriveAcceptKey(key []byte) [acceptKeyLen]byte {
	h := sha1.New()
	h.Write(key)
	h.Write([]byte(magicGUID))
	digest := h.Sum()

	// base64.Encode wants room for a trailing null terminator beyond
	// the encoded length, so scratch is one byte larger than the key.
	var scratch [acceptKeyLen + 1]byte
	n, err := base64.Encode(scratch[:], digest[:])
	// digest is always 20 bytes, so EncodedLen(20) == 28 always holds;
	// this can only fail if acceptKeyLen itself is wrong.
	assertf(err == nil && n == acceptKeyLen, "deriveAcceptKey: unexpected encoded length")
	var out [acceptKeyLen]byte
	copy(out[:], scratch[:acceptKeyLen])
	return out
}
