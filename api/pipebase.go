// Package api
// Author: momentics <momentics@gmail.com>
//
// PipeBase exposes the local SP socket type and peer-compatibility
// predicate the handshake subsystem consumes from the upper SP pipe
// layer. That layer is out of scope for this subsystem (spec §1); this
// file only declares the boundary it is consumed through.

package api

// SPType enumerates the closed set of Scalability-Protocol socket
// types the sub-protocol map (see protocol/handshake) knows about.
type SPType int

const (
	SPPair SPType = iota
	SPReq
	SPRep
	SPPub
	SPSub
	SPSurveyor
	SPRespondent
	SPPush
	SPPull
	SPBus
)

// PipeBase is the upper SP pipe abstraction a Handshake queries to
// decide sub-protocol compatibility.
type PipeBase interface {
	// LocalSPType returns the SP socket type of the local endpoint
	// bringing up this connection.
	LocalSPType() SPType

	// IsPeer reports whether a remote endpoint of the given SP type may
	// interoperate with the local socket (e.g. REQ.IsPeer(REP) == true).
	IsPeer(remote SPType) bool
}
