// Package api
// Author: momentics <momentics@gmail.com>
//
// PeerTable is a reference PipeBase: a static SP compatibility table
// standing in for a full SP socket-layer implementation (out of scope
// for this subsystem). It lets client/ and server/ exercise the
// handshake subsystem end-to-end without depending on one.

package api

var spPeerOf = map[SPType]SPType{
	SPReq:        SPRep,
	SPRep:        SPReq,
	SPPub:        SPSub,
	SPSub:        SPPub,
	SPSurveyor:   SPRespondent,
	SPRespondent: SPSurveyor,
	SPPush:       SPPull,
	SPPull:       SPPush,
}

// PeerTable implements PipeBase against the static table above. PAIR
// and BUS are reflexive: a PAIR only peers with another PAIR, a BUS
// only with another BUS.
type PeerTable struct {
	Local SPType
}

// LocalSPType implements PipeBase.
func (p PeerTable) LocalSPType() SPType { return p.Local }

// IsPeer implements PipeBase.
func (p PeerTable) IsPeer(remote SPType) bool {
	if p.Local == SPPair || p.Local == SPBus {
		return remote == p.Local
	}
	return spPeerOf[p.Local] == remote
}
