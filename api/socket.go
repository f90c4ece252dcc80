// Package api
// Author: momentics <momentics@gmail.com>
//
// Socket abstracts the asynchronous byte-stream connection a Handshake
// drives without ever blocking. Adapted from the NetConn contract used
// elsewhere in this codebase family, reshaped for async completion
// semantics: Recv/Send never return data directly, they schedule work
// whose completion is posted back as an api.Event.

package api

// Socket is the asynchronous byte-stream transport a Handshake borrows
// for the duration of one opening-handshake exchange.
type Socket interface {
	// Recv schedules a read of up to n bytes into the caller's receive
	// buffer (the Socket implementation is expected to know where that
	// buffer is, typically because it was constructed against it).
	// Completion is posted as EvRecvComplete (payload: bytes read) or
	// EvSocketError/EvSocketShutdown.
	Recv(n int) error

	// Send schedules an async write of the concatenation of bufs.
	// Completion is posted as EvSendComplete or EvSocketError.
	Send(bufs [][]byte) error

	// SwapOwner transfers ownership of the socket to newOwner and
	// returns the previous owner (nil if there was none). A Handshake
	// calls this once on start (owner -> handshake) and once more on
	// its terminal transition (handshake -> owner), per the shutdown
	// protocol in the handshake state machine's design.
	SwapOwner(newOwner any) (previousOwner any)
}
