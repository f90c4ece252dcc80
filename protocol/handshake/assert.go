// File: protocol/handshake/assert.go
// Author: momentics <momentics@gmail.com>
//
// assertf is the single place programmer errors (invalid (state,
// event) pairs, precondition violations) fail loudly, per the error
// taxonomy's item 6.

package handshake

import "fmt"

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("handshake: "+format, args...))
	}
}
