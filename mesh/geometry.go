package mesh

import (
	"math"

	"github.com/pkg/errors"
)

func normalize(v []float64) {
	var sumSq float64
	for _, c := range v {
		sumSq += c * c
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] /= norm
	}
}

func sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func cross3(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// orderedFaceVertices walks edges' shared endpoints to recover the face's
// vertices in consecutive boundary order, starting from edges[0].V[0].
// Dedicated to faces whose edges form a single closed loop (triangles,
// quads) — callers that need an area-weighted normal depend on this order
// to form correct edge vectors, which a dedup-only pass (e.g. through a
// map keyed by vertex id) cannot guarantee.
func orderedFaceVertices(edges []*Edge) []*Vertex {
	n := len(edges)
	if n == 0 {
		return nil
	}
	used := make([]bool, n)
	used[0] = true
	out := make([]*Vertex, 0, n)
	out = append(out, edges[0].V[0])
	cur := edges[0].V[1]
	for len(out) < n {
		out = append(out, cur)
		if len(out) == n {
			break
		}
		found := false
		for i, e := range edges {
			if used[i] {
				continue
			}
			switch {
			case e.V[0].ID == cur.ID:
				cur = e.V[1]
			case e.V[1].ID == cur.ID:
				cur = e.V[0]
			default:
				continue
			}
			used[i] = true
			found = true
			break
		}
		if !found {
			break
		}
	}
	return out
}

// triangleNormal computes an area-weighted normal for a triangular face.
// In 2D the "normal" is the perpendicular to the single contributing edge.
func triangleNormal(t *Triangle, dimensions int) ([]float64, error) {
	vs := t.vertices()
	if len(vs) != 3 {
		return nil, errors.Errorf("triangle %d: expected 3 distinct vertices, got %d", t.ID, len(vs))
	}
	switch dimensions {
	case 3:
		e1 := sub(vs[1].Coords, vs[0].Coords)
		e2 := sub(vs[2].Coords, vs[0].Coords)
		n := cross3(e1, e2)
		for i := range n {
			n[i] *= 0.5
		}
		return n, nil
	case 2:
		e := sub(vs[1].Coords, vs[0].Coords)
		return []float64{e[1], -e[0]}, nil
	default:
		return nil, errors.Errorf("triangle normal undefined for dimension %d", dimensions)
	}
}

// edgeNormal2D computes the unnormalized outward normal of an edge acting
// as a face in a 2D mesh (2D meshes have no triangles or quads; their
// edges are the boundary faces).
func edgeNormal2D(e *Edge) []float64 {
	d := sub(e.V[1].Coords, e.V[0].Coords)
	return []float64{d[1], -d[0]}
}

// quadNormal computes an area-weighted normal for a planar quad face,
// approximated as the sum of the two triangle normals of its diagonal
// split.
func quadNormal(q *Quad, dimensions int) ([]float64, error) {
	vs := q.vertices()
	if len(vs) != 4 {
		return nil, errors.Errorf("quad %d: expected 4 distinct vertices, got %d", q.ID, len(vs))
	}
	if dimensions != 3 {
		return nil, errors.Errorf("quad normal only defined for 3D meshes, got dimension %d", dimensions)
	}
	e1 := sub(vs[1].Coords, vs[0].Coords)
	e2 := sub(vs[3].Coords, vs[0].Coords)
	n1 := cross3(e1, e2)

	e3 := sub(vs[3].Coords, vs[2].Coords)
	e4 := sub(vs[1].Coords, vs[2].Coords)
	n2 := cross3(e3, e4)

	n := make([]float64, 3)
	for i := range n {
		n[i] = 0.25 * (n1[i] + n2[i])
	}
	return n, nil
}

// MakeConvex rewrites each of q.E's existing edges' endpoints in place so
// the four edges trace a convex polygon in consecutive order, and reports
// whether a convex ordering was found. The edges themselves (their ID,
// Normal, and membership in Mesh.Edges) are preserved — only their V
// endpoints are reassigned. On a false return the endpoints are
// unspecified — callers must not rely on them.
func (q *Quad) MakeConvex() bool {
	vs := q.vertices()
	if len(vs) != 4 {
		return false
	}
	// Try every rotation/reflection of the 4 vertices and accept the first
	// one whose consecutive cross products keep a consistent sign.
	perms := [][4]int{
		{0, 1, 2, 3}, {0, 1, 3, 2}, {0, 2, 1, 3},
		{0, 2, 3, 1}, {0, 3, 1, 2}, {0, 3, 2, 1},
	}
	for _, p := range perms {
		ordered := [4]*Vertex{vs[p[0]], vs[p[1]], vs[p[2]], vs[p[3]]}
		if isConvex2D(ordered) {
			for i := 0; i < 4; i++ {
				q.E[i].V = [2]*Vertex{ordered[i], ordered[(i+1)%4]}
			}
			return true
		}
	}
	return false
}

func isConvex2D(vs [4]*Vertex) bool {
	n := len(vs)
	sign := 0.0
	for i := 0; i < n; i++ {
		a, b, c := vs[i], vs[(i+1)%n], vs[(i+2)%n]
		e1 := sub(b.Coords[:2], a.Coords[:2])
		e2 := sub(c.Coords[:2], b.Coords[:2])
		cz := e1[0]*e2[1] - e1[1]*e2[0]
		if cz == 0 {
			continue
		}
		if sign == 0 {
			sign = cz
		} else if (sign > 0) != (cz > 0) {
			return false
		}
	}
	return sign != 0
}
