package partition

import (
	"github.com/mpcouple/coupler/comm"
	"github.com/mpcouple/coupler/mesh"
	"github.com/mpcouple/coupler/transport"
)

// ProvidedPartition is the role a mesh's owning participant plays: compute
// each of its ranks' bounding boxes, gather them at the master, and hand
// the peer's master both the box set and the global mesh.
type ProvidedPartition struct {
	Group []*comm.IntraComm // one handle per local rank
	Mesh  *mesh.Mesh         // the global mesh this participant owns
}

// ComputeBoxes gathers every local rank's bounding box at rank 0. local is
// this rank's box from the participant's own per-rank decomposition of its
// mesh (supplied by the solver integration, since mesh ownership and domain decomposition are
// the solver's business, not this package's).
func (p *ProvidedPartition) ComputeBoxes(rank int, local mesh.BoundingBox) []mesh.BoundingBox {
	gathered := p.Group[rank].Gather(rank, local)
	if rank != 0 {
		return nil
	}
	out := make([]mesh.BoundingBox, len(gathered))
	for i, v := range gathered {
		out[i] = v.(mesh.BoundingBox)
	}
	return out
}

// SendToPeer is called by the provided side's master once: it writes the
// bounding-box set followed by the full global mesh across t, handing its
// peer everything needed to filter and own the mesh.
func SendToPeer(t *transport.Transport, meshID int, boxes []mesh.BoundingBox, m *mesh.Mesh) error {
	if err := t.SendInt(len(boxes)); err != nil {
		return err
	}
	for _, bb := range boxes {
		if err := t.SendDoubleArray(bb.Min); err != nil {
			return err
		}
		if err := t.SendDoubleArray(bb.Max); err != nil {
			return err
		}
	}
	return transport.SendMeshHandshake(t, m.Name, meshID, m)
}
