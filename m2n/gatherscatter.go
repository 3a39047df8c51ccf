package m2n

import (
	"github.com/mpcouple/coupler/comm"
	"github.com/mpcouple/coupler/mesh"
	"github.com/mpcouple/coupler/transport"
)

// GatherScatter implements DistributedCommunication by gathering every
// local secondary rank's slice at its own master via IntraComm, sending
// one array across Transport to the peer's master, and having that master
// scatter by global-index mapping. No rank ever talks directly to a
// remote rank other than through the two masters.
//
// acceptPreConnection/requestPreConnection/broadcastSend* are deliberately
// absent: their behavior is unspecified, and this implementation treats
// that capability as an unsupported probe rather than guessing at
// semantics — see GatherScatter.PreConnect.
type GatherScatter struct {
	Group       []*comm.IntraComm // this side's local ranks
	LocalMeshes []*mesh.Mesh      // this side's local rank meshes, by rank
	GlobalCount int               // global vertex count on this mesh
	Constraint  mesh.Constraint
	Peer        *transport.Transport // master-to-master channel, valid on rank 0 only
}

// PreConnect reports that pre-connection setup is not a supported
// capability of this implementation.
func (g *GatherScatter) PreConnect() error {
	return errUnsupported
}

// Send gathers rank's local slice at master (ordered by this rank's
// GlobalIndex mapping), and — once every local rank has contributed — the
// master sends the assembled global array to the peer across Peer.
func (g *GatherScatter) Send(rank int, values []float64, dim int) error {
	gi := globalIndices(g.LocalMeshes[rank])
	gathered := g.Group[rank].Gather(rank, rankSlice{globalIdx: gi, values: values})
	if rank != 0 {
		return nil
	}
	contributions := make(map[int][]contribution, g.GlobalCount)
	for r, raw := range gathered {
		rs := raw.(rankSlice)
		for i, idx := range rs.globalIdx {
			contributions[idx] = append(contributions[idx], contribution{
				rank:   r,
				values: rs.values[i*dim : (i+1)*dim],
			})
		}
	}
	flat := resequence(g.GlobalCount, dim, contributions, g.Constraint)
	return g.Peer.SendDoubleArray(flat)
}

// Receive has the master read the assembled global array from Peer, then
// scatters each rank its slice in that rank's own local-vertex order.
func (g *GatherScatter) Receive(rank int, dim int) ([]float64, error) {
	var perRank []any
	if rank == 0 {
		flat, err := g.Peer.ReceiveDoubleArray()
		if err != nil {
			return nil, err
		}
		perRank = make([]any, len(g.Group))
		for r, m := range g.LocalMeshes {
			slice := make([]float64, len(m.Vertices)*dim)
			for i, v := range m.Vertices {
				copy(slice[i*dim:(i+1)*dim], flat[v.GlobalIndex*dim:(v.GlobalIndex+1)*dim])
			}
			perRank[r] = slice
		}
	}
	result := g.Group[rank].Scatter(rank, perRank, nil)
	if result == nil {
		return nil, nil
	}
	return result.([]float64), nil
}

type rankSlice struct {
	globalIdx []int
	values    []float64
}

func globalIndices(m *mesh.Mesh) []int {
	out := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.GlobalIndex
	}
	return out
}
