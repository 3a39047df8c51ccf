package mesh

import "github.com/google/uuid"

// Vertex is a point on a mesh with a stable local id, a global index
// assigned by the partition subsystem, and ownership/tagging flags used
// during geometric filtering.
type Vertex struct {
	ID     int       // stable id within this mesh
	Coords []float64 // 2 or 3 components

	GlobalIndex int  // valid only after partitioning
	Owner       bool // true on exactly one rank in the owning group
	Tagged      bool // filtered in during geometric reduction

	Normal []float64
}

// Edge connects two vertices.
type Edge struct {
	ID     int
	V      [2]*Vertex
	Normal []float64
}

// Triangle is a face bounded by three edges already present in the mesh.
type Triangle struct {
	ID     int
	E      [3]*Edge
	Normal []float64
}

func (t *Triangle) vertices() []*Vertex {
	return orderedFaceVertices(t.E[:])
}

// Quad is a face bounded by four edges already present in the mesh.
//
// MakeConvex rewrites the endpoints of Quad.E's existing edges in place
// and reports whether the result is convex. The endpoints are unspecified
// on a false return — callers must not depend on them surviving a failed
// convexity check.
type Quad struct {
	ID     int
	E      [4]*Edge
	Normal []float64
}

func (q *Quad) vertices() []*Vertex {
	return orderedFaceVertices(q.E[:])
}

// Constraint selects the accumulation policy a receiver applies when more
// than one sender delivers a value for the same vertex.
type Constraint int

const (
	// Consistent data is pointwise: last-writer-wins, tie-broken by rank id.
	Consistent Constraint = iota
	// Conservative data is integral-preserving: duplicate contributions sum.
	Conservative
)

// Data is a named scalar or vector field living on a Mesh. Dimension is 1
// for a scalar field or Mesh.Dimensions for a vector field. Values is laid
// out vertex-major: Values[i*Dimension : (i+1)*Dimension] is vertex i's
// value.
type Data struct {
	ID        uuid.UUID
	Name      string
	Dimension int
	Mesh      *Mesh
	Values    []float64

	Constraint Constraint
}
