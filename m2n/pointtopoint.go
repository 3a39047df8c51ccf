package m2n

import (
	"github.com/mpcouple/coupler/mesh"
	"github.com/mpcouple/coupler/transport"
)

// PointToPoint implements DistributedCommunication with direct channels
// between every sender/receiver rank pair the partition subsystem's
// FeedbackMap says are relevant — no master bottleneck, at the cost of up
// to O(R²) channels for R ranks per participant (bounded in practice by
// geometric locality).
type PointToPoint struct {
	// Channels is keyed by peer rank: receiver ranks when used to Send,
	// sender ranks when used to Receive.
	Channels map[int]*transport.Transport
	// LocalMesh is this rank's own filtered mesh (global indices resolve
	// local vertex position -> global vertex index).
	LocalMesh *mesh.Mesh
	// VertexReceivers maps a global vertex index to the receiver ranks
	// that need it — send operations deliver each vertex's value to
	// every rank that listed that vertex as relevant. Required on the
	// sending side only.
	VertexReceivers map[int][]int
	// ExpectedSenders lists the remote ranks Receive must hear from
	// before returning. Required on the receiving side only.
	ExpectedSenders []int
	GlobalCount     int
	Constraint      mesh.Constraint
}

// Send routes each local vertex's value only to the receiver ranks that
// listed it as relevant, over a direct channel per receiver.
func (p *PointToPoint) Send(rank int, values []float64, dim int) error {
	byReceiver := make(map[int]rankSlice)
	for i, v := range p.LocalMesh.Vertices {
		for _, recv := range p.VertexReceivers[v.GlobalIndex] {
			rs := byReceiver[recv]
			rs.globalIdx = append(rs.globalIdx, v.GlobalIndex)
			rs.values = append(rs.values, values[i*dim:(i+1)*dim]...)
			byReceiver[recv] = rs
		}
	}
	for recv, rs := range byReceiver {
		ch, ok := p.Channels[recv]
		if !ok {
			continue
		}
		if err := ch.SendIntArray(rs.globalIdx); err != nil {
			return err
		}
		if err := ch.SendDoubleArray(rs.values); err != nil {
			return err
		}
	}
	return nil
}

// Receive blocks until every expected sender has delivered its slice,
// resequences by global vertex index applying the constraint's duplicate
// policy, and returns this rank's slice in local vertex order.
func (p *PointToPoint) Receive(rank int, dim int) ([]float64, error) {
	contributions := make(map[int][]contribution, len(p.LocalMesh.Vertices))
	for _, sender := range p.ExpectedSenders {
		ch, ok := p.Channels[sender]
		if !ok {
			continue
		}
		idx, err := ch.ReceiveIntArray()
		if err != nil {
			return nil, err
		}
		vals, err := ch.ReceiveDoubleArray()
		if err != nil {
			return nil, err
		}
		for i, gi := range idx {
			contributions[gi] = append(contributions[gi], contribution{
				rank:   sender,
				values: vals[i*dim : (i+1)*dim],
			})
		}
	}

	flat := resequence(p.GlobalCount, dim, contributions, p.Constraint)
	out := make([]float64, len(p.LocalMesh.Vertices)*dim)
	for i, v := range p.LocalMesh.Vertices {
		copy(out[i*dim:(i+1)*dim], flat[v.GlobalIndex*dim:(v.GlobalIndex+1)*dim])
	}
	return out, nil
}
