// Package m2n realizes the boundary data exchange between two already
// partitioned meshes on two participants: gather/scatter through a
// single master-to-master channel, or direct point-to-point channels
// between every sender/receiver rank pair the partition subsystem's
// FeedbackMap says are relevant.
package m2n

import "github.com/mpcouple/coupler/mesh"

// DistributedCommunication is the contract both m2n implementations share:
// send/receive a vertex-major array with dim components per local vertex.
// Receive blocks until all expected bytes have arrived.
type DistributedCommunication interface {
	// Send delivers this rank's local slice of values (vertex-major, dim
	// components per vertex) to the peer side.
	Send(rank int, values []float64, dim int) error
	// Receive blocks until this rank's slice of values has arrived from
	// the peer side.
	Receive(rank int, dim int) ([]float64, error)
}

// resequence lays out contributions keyed by global vertex index into a
// dense, vertex-major buffer, applying the constraint's duplicate policy
// when more than one contribution targets the same vertex: conservative
// constraints sum, consistent constraints keep the contribution from the
// highest rank id (last-writer-wins, tie-broken by rank).
func resequence(globalVertexCount, dim int, contributions map[int][]contribution, constraint mesh.Constraint) []float64 {
	out := make([]float64, globalVertexCount*dim)
	bestRank := make([]int, globalVertexCount)
	for i := range bestRank {
		bestRank[i] = -1
	}
	for gi, cs := range contributions {
		for _, c := range cs {
			switch constraint {
			case mesh.Conservative:
				for d := 0; d < dim; d++ {
					out[gi*dim+d] += c.values[d]
				}
			default: // Consistent
				if c.rank >= bestRank[gi] {
					bestRank[gi] = c.rank
					copy(out[gi*dim:gi*dim+dim], c.values)
				}
			}
		}
	}
	return out
}

type contribution struct {
	rank   int
	values []float64
}
