// Package partition reconciles a received participant's vertex
// distribution with the bounding-box geometry of its peer: the
// provided side publishes per-rank boxes and its global mesh, the received
// side filters that mesh down to what each of its ranks actually needs and
// assigns exactly one owner rank to every resulting vertex.
package partition

import "github.com/mpcouple/coupler/mesh"

// GeometricFilter selects how a received mesh is reduced to the vertices a
// rank actually needs.
type GeometricFilter int

const (
	// NoFilter keeps every rank's full copy of the mesh — used for global
	// mappings such as RBF that need the whole boundary.
	NoFilter GeometricFilter = iota
	// FilterFirst has the master filter per receiver rank and send only
	// each rank's filtered slice, minimizing wire volume.
	FilterFirst
	// BroadcastFilter has the master broadcast the full mesh and every
	// rank filter locally, minimizing master CPU at the cost of network.
	BroadcastFilter
)

// FilterVertices returns the vertices of m that lie within box inflated by
// safetyFactor, tagging each one Tagged=true as a side effect — the filtered
// subset is marked in place on the shared Vertex values rather than being
// copied into a new slice.
func FilterVertices(m *mesh.Mesh, box mesh.BoundingBox, safetyFactor float64) []*mesh.Vertex {
	inflated := box.Inflated(safetyFactor)
	var kept []*mesh.Vertex
	for _, v := range m.Vertices {
		if inflated.Contains(v.Coords) {
			v.Tagged = true
			kept = append(kept, v)
		}
	}
	return kept
}

// filteredMesh builds a new mesh containing a copy of the kept vertices
// (preserving their GlobalIndex) from a source mesh, the way a received
// rank's local slice is a genuinely separate Mesh from the provided side's
// global one.
func filteredMesh(name string, dimensions int, kept []*mesh.Vertex) (*mesh.Mesh, error) {
	out, err := mesh.New(name, dimensions)
	if err != nil {
		return nil, err
	}
	for _, v := range kept {
		nv, err := out.AddVertex(v.Coords)
		if err != nil {
			return nil, err
		}
		nv.GlobalIndex = v.GlobalIndex
		nv.Tagged = true
	}
	return out, nil
}
