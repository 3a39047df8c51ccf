// Package mesh defines the value types a coupled participant exchanges
// boundary data over: vertices, edges, faces, named data fields, and the
// bounding-box geometry used by the partition subsystem.
//
// Everything here is a plain value container. Computing physics, storage
// indices (R-trees, kd-trees) and mapping numerics live outside this
// package; mesh only owns topology and the per-rank distribution metadata
// the partition subsystem fills in.
package mesh

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Mesh is a named surface discretization plus the data fields living on it.
//
// Dimensions is fixed for the mesh's lifetime and must be 2 or 3. Edge and
// face ids are dense within the mesh. VertexDistribution and VertexOffsets
// stay empty until the partition subsystem runs.
type Mesh struct {
	ID         uuid.UUID
	Name       string
	Dimensions int

	Vertices  []*Vertex
	Edges     []*Edge
	Triangles []*Triangle
	Quads     []*Quad
	Data      []*Data

	// VertexDistribution maps rank-in-group -> ordered local indices of
	// that rank's globally owned vertices.
	VertexDistribution map[int][]int
	// VertexOffsets[i] is the sum of owned vertex counts on ranks 0..i-1.
	VertexOffsets []int

	nextEdgeID int
	nextFaceID int
}

// New creates an empty mesh of the given dimensionality (2 or 3).
func New(name string, dimensions int) (*Mesh, error) {
	if dimensions != 2 && dimensions != 3 {
		return nil, errors.Errorf("mesh %q: dimensions must be 2 or 3, got %d", name, dimensions)
	}
	return &Mesh{
		ID:                 uuid.New(),
		Name:               name,
		Dimensions:         dimensions,
		VertexDistribution: make(map[int][]int),
	}, nil
}

// AddVertex appends a new vertex at the given coordinates and returns it.
// Coordinates must match the mesh's dimensionality.
func (m *Mesh) AddVertex(coords []float64) (*Vertex, error) {
	if len(coords) != m.Dimensions {
		return nil, errors.Errorf("mesh %q: vertex has %d coords, want %d", m.Name, len(coords), m.Dimensions)
	}
	v := &Vertex{
		ID:     len(m.Vertices),
		Coords: append([]float64{}, coords...),
		Normal: make([]float64, m.Dimensions),
	}
	m.Vertices = append(m.Vertices, v)
	return v, nil
}

// AddEdge creates a new edge between two vertices already in the mesh.
func (m *Mesh) AddEdge(a, b *Vertex) *Edge {
	e := &Edge{ID: m.nextEdgeID, V: [2]*Vertex{a, b}, Normal: make([]float64, m.Dimensions)}
	m.nextEdgeID++
	m.Edges = append(m.Edges, e)
	return e
}

// AddTriangle creates a new triangular face from three edges already in the
// mesh. Returns an error if an edge was not created on this mesh.
func (m *Mesh) AddTriangle(e0, e1, e2 *Edge) (*Triangle, error) {
	for _, e := range []*Edge{e0, e1, e2} {
		if e.ID >= m.nextEdgeID || e.ID < 0 || m.Edges[e.ID] != e {
			return nil, errors.Errorf("mesh %q: triangle references unknown edge id %d", m.Name, e.ID)
		}
	}
	t := &Triangle{ID: m.nextFaceID, E: [3]*Edge{e0, e1, e2}, Normal: make([]float64, m.Dimensions)}
	m.nextFaceID++
	m.Triangles = append(m.Triangles, t)
	return t, nil
}

// AddQuad creates a new quadrilateral face from four edges already in the
// mesh.
func (m *Mesh) AddQuad(e0, e1, e2, e3 *Edge) (*Quad, error) {
	for _, e := range []*Edge{e0, e1, e2, e3} {
		if e.ID >= m.nextEdgeID || e.ID < 0 {
			return nil, errors.Errorf("mesh %q: quad references unknown edge id %d", m.Name, e.ID)
		}
	}
	q := &Quad{ID: m.nextFaceID, E: [4]*Edge{e0, e1, e2, e3}, Normal: make([]float64, m.Dimensions)}
	m.nextFaceID++
	m.Quads = append(m.Quads, q)
	return q, nil
}

// AddData registers a new named field on this mesh with the given
// dimension (1 for scalar, Mesh.Dimensions for vector) and returns it.
// Values are not allocated until AllocateDataValues is called.
func (m *Mesh) AddData(name string, dimension int) *Data {
	d := &Data{ID: uuid.New(), Name: name, Dimension: dimension, Mesh: m}
	m.Data = append(m.Data, d)
	return d
}

// AllocateDataValues (re)sizes every Data field's value buffer to
// len(Vertices) * Data.Dimension, preserving existing values where the
// vertex count hasn't shrunk and zero-filling the rest.
func (m *Mesh) AllocateDataValues() {
	for _, d := range m.Data {
		want := len(m.Vertices) * d.Dimension
		if len(d.Values) == want {
			continue
		}
		grown := make([]float64, want)
		copy(grown, d.Values)
		d.Values = grown
	}
}

// ComputeBoundingBox returns the axis-aligned bounding box over every
// vertex currently in the mesh.
func (m *Mesh) ComputeBoundingBox() BoundingBox {
	bb := NewBoundingBox(m.Dimensions)
	for _, v := range m.Vertices {
		bb.ExpandByVertex(v)
	}
	return bb
}

// ComputeNormals accumulates face normals into their constituent edges and
// vertices and renormalizes, the way a surface mesh's geometric normals are
// derived from its triangulation. In a 3D mesh the faces are Triangles and
// Quads; in a 2D mesh there are no Triangles or Quads at all — the Edges
// themselves are the faces, and each one's normal accumulates directly
// into its two vertices. Order of accumulation affects the result only in
// the last ULP; callers comparing normals should use a tolerance.
func (m *Mesh) ComputeNormals() error {
	for _, v := range m.Vertices {
		v.Normal = make([]float64, m.Dimensions)
	}
	for _, e := range m.Edges {
		e.Normal = make([]float64, m.Dimensions)
	}

	if m.Dimensions == 2 {
		for _, e := range m.Edges {
			n := edgeNormal2D(e)
			copy(e.Normal, n)
			for _, v := range e.V {
				addInPlace(v.Normal, n)
			}
		}
	}

	for _, t := range m.Triangles {
		n, err := triangleNormal(t, m.Dimensions)
		if err != nil {
			return err
		}
		for _, e := range t.E {
			addInPlace(e.Normal, n)
		}
		for _, v := range t.vertices() {
			addInPlace(v.Normal, n)
		}
	}
	for _, q := range m.Quads {
		n, err := quadNormal(q, m.Dimensions)
		if err != nil {
			return err
		}
		for _, e := range q.E {
			addInPlace(e.Normal, n)
		}
		for _, v := range q.vertices() {
			addInPlace(v.Normal, n)
		}
	}

	if m.Dimensions == 2 || m.Dimensions == 3 {
		for _, e := range m.Edges {
			normalize(e.Normal)
		}
	}
	for _, v := range m.Vertices {
		normalize(v.Normal)
	}
	return nil
}

func addInPlace(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}
