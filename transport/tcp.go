package transport

import (
	"net"

	"github.com/mpcouple/coupler/errs"
)

// Acceptor listens for incoming rank connections from a single peer
// participant and hands each one back keyed by the connecting rank,
// pairing with the ranks that dial in via RequestConnection.
type Acceptor struct {
	participant string
	rank        int
	ln          net.Listener
}

// Listen opens a TCP listener a peer's ranks will dial into.
func Listen(participant string, rank int, addr string) (*Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errs.Transport(participant, rank, err)
	}
	return &Acceptor{participant: participant, rank: rank, ln: ln}, nil
}

// Addr returns the listener's bound address, useful when addr was ":0".
func (a *Acceptor) Addr() string { return a.ln.Addr().String() }

// AcceptConnection blocks for a single incoming connection and returns a
// Transport wrapping it, along with the peer rank announced in the
// handshake's initial int.
func (a *Acceptor) AcceptConnection() (*Transport, int, error) {
	conn, err := a.ln.Accept()
	if err != nil {
		return nil, 0, errs.Transport(a.participant, a.rank, err)
	}
	t := Wrap(a.participant, a.rank, conn)
	peerRank, err := t.ReceiveInt()
	if err != nil {
		return nil, 0, err
	}
	return t, peerRank, nil
}

// Close stops accepting new connections.
func (a *Acceptor) Close() error { return a.ln.Close() }

// RequestConnection dials a peer's Acceptor and announces selfRank as the
// handshake's first int, matching the pairing AcceptConnection expects.
func RequestConnection(participant string, selfRank int, addr string) (*Transport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errs.Transport(participant, selfRank, err)
	}
	t := Wrap(participant, selfRank, conn)
	if err := t.SendInt(selfRank); err != nil {
		return nil, err
	}
	return t, nil
}
