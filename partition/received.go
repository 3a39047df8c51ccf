package partition

import (
	"github.com/mpcouple/coupler/comm"
	"github.com/mpcouple/coupler/mesh"
	"github.com/mpcouple/coupler/transport"
)

// PeerBoxSet is what the received side learns from SendToPeer: the
// provided side's per-rank bounding boxes and its global mesh.
type PeerBoxSet struct {
	Boxes []mesh.BoundingBox
	Mesh  *mesh.Mesh
}

// ReceiveFromProvider decodes what SendToPeer wrote, rebuilding a plain
// global mesh (vertices only — edges/faces/data are the solver's concern
// on the provided side and are not re-sent across the boundary).
func ReceiveFromProvider(t *transport.Transport, participant string, rank int, dimensions int) (*PeerBoxSet, error) {
	n, err := t.ReceiveInt()
	if err != nil {
		return nil, err
	}
	boxes := make([]mesh.BoundingBox, n)
	for i := range boxes {
		min, err := t.ReceiveDoubleArray()
		if err != nil {
			return nil, err
		}
		max, err := t.ReceiveDoubleArray()
		if err != nil {
			return nil, err
		}
		boxes[i] = mesh.BoundingBox{Min: min, Max: max}
	}
	hs, err := transport.ReceiveMeshHandshake(t, participant, rank, dimensions)
	if err != nil {
		return nil, err
	}
	m, err := mesh.New(hs.Participant, hs.Dimensions)
	if err != nil {
		return nil, err
	}
	for i, c := range hs.VertexCoords {
		v, err := m.AddVertex(c)
		if err != nil {
			return nil, err
		}
		v.GlobalIndex = i
	}
	return &PeerBoxSet{Boxes: boxes, Mesh: m}, nil
}

// ReceivedPartition is the role a mesh's reading participant plays: filter
// the provided side's global mesh down to what each local rank needs,
// assign ownership, and work out which remote ranks each local rank talks
// to.
type ReceivedPartition struct {
	Group        []*comm.IntraComm
	SafetyFactor float64
	Filter       GeometricFilter
}

// Compute applies the configured GeometricFilter and returns, for each
// local rank, its filtered local mesh. rankBoxes[r] is local rank r's own
// bounding box (the solver's local domain decomposition on this side).
func (rp *ReceivedPartition) Compute(global *mesh.Mesh, rankBoxes []mesh.BoundingBox) ([]*mesh.Mesh, error) {
	n := len(rankBoxes)
	out := make([]*mesh.Mesh, n)

	switch rp.Filter {
	case NoFilter:
		for r := 0; r < n; r++ {
			m, err := cloneWholeMesh(global)
			if err != nil {
				return nil, err
			}
			out[r] = m
		}
	case FilterFirst:
		// Master filters per receiver rank and hands each its own slice —
		// modeled directly since our IntraComm collectives move whole
		// values, not wire bytes; the point of FilterFirst (minimizing
		// bytes transferred) still holds in a real deployment where rank 0
		// is the one with the full global mesh and everyone else is remote.
		for r := 0; r < n; r++ {
			kept := FilterVertices(global, rankBoxes[r], rp.SafetyFactor)
			m, err := filteredMesh(global.Name, global.Dimensions, kept)
			if err != nil {
				return nil, err
			}
			out[r] = m
			clearTags(global)
		}
	case BroadcastFilter:
		for r := 0; r < n; r++ {
			kept := FilterVertices(global, rankBoxes[r], rp.SafetyFactor)
			m, err := filteredMesh(global.Name, global.Dimensions, kept)
			if err != nil {
				return nil, err
			}
			out[r] = m
			clearTags(global)
		}
	}
	return out, nil
}

func clearTags(m *mesh.Mesh) {
	for _, v := range m.Vertices {
		v.Tagged = false
	}
}

func cloneWholeMesh(global *mesh.Mesh) (*mesh.Mesh, error) {
	m, err := mesh.New(global.Name, global.Dimensions)
	if err != nil {
		return nil, err
	}
	for _, v := range global.Vertices {
		nv, err := m.AddVertex(v.Coords)
		if err != nil {
			return nil, err
		}
		nv.GlobalIndex = v.GlobalIndex
		nv.Tagged = true
	}
	return m, nil
}

// AssignOwnership runs the ownership policy over the per-rank filtered
// meshes and writes the result back: each vertex's Owner flag is set on
// exactly the mesh copy of its owning rank, and every rank's mesh gets the
// resulting VertexDistribution/VertexOffsets.
func AssignOwnership(localMeshes []*mesh.Mesh, numGlobalVertices int) map[int]int {
	candidates := make(map[int][]int)
	for r, m := range localMeshes {
		for _, v := range m.Vertices {
			candidates[v.GlobalIndex] = append(candidates[v.GlobalIndex], r)
		}
	}
	owner := AssignOwners(candidates, numGlobalVertices, len(localMeshes))

	ownerByRankLocal := make([]map[int]bool, len(localMeshes))
	for r, m := range localMeshes {
		ownerByRankLocal[r] = make(map[int]bool, len(m.Vertices))
		for li, v := range m.Vertices {
			isOwner := owner[v.GlobalIndex] == r
			v.Owner = isOwner
			ownerByRankLocal[r][li] = isOwner
		}
	}
	dist, offsets := VertexDistribution(ownerByRankLocal)
	for _, m := range localMeshes {
		m.VertexDistribution = dist
		m.VertexOffsets = offsets
	}
	return owner
}

// FeedbackMap routes m2n exchanges: it maps a provided-side sender rank to
// the set of received-side receiver ranks that need data from it.
type FeedbackMap map[int][]int

// ComputeFeedback determines, for each local (receiving) rank, which
// remote (providing) ranks' boxes, inflated by safetyFactor, intersect
// that rank's own bounding box in rankBoxes — the
// request half of the feedback protocol, run locally before anything is
// sent back across the wire.
func ComputeFeedback(localMeshes []*mesh.Mesh, rankBoxes []mesh.BoundingBox, peerBoxes []mesh.BoundingBox, safetyFactor float64) [][]int {
	needs := make([][]int, len(localMeshes))
	for r := range localMeshes {
		var remote []int
		for pr, pb := range peerBoxes {
			if rankBoxes[r].Intersects(pb, safetyFactor) {
				remote = append(remote, pr)
			}
		}
		needs[r] = remote
	}
	return needs
}

// InvertFeedback is run on the provided side's master once it has received
// every local receiver rank's need-list: it builds the FeedbackMap
// (sender-rank -> receiver-ranks) that m2n uses as its routing table.
func InvertFeedback(needsByReceiver [][]int) FeedbackMap {
	fm := make(FeedbackMap)
	for receiver, senders := range needsByReceiver {
		for _, sender := range senders {
			fm[sender] = append(fm[sender], receiver)
		}
	}
	return fm
}
