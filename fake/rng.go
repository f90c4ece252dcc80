package fake

// RNG is a fake api.RNG returning a fixed repeating byte, for
// deterministic Sec-WebSocket-Key generation in tests.
type RNG struct {
	Fill byte
}

// Generate implements api.RNG.
func (r RNG) Generate(buf []byte) {
	for i := range buf {
		buf[i] = r.Fill
	}
}
