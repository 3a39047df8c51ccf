package mesh

import "math"

// BoundingBox is an axis-aligned min/max box, one pair per dimension.
type BoundingBox struct {
	Min []float64
	Max []float64
}

// NewBoundingBox returns an empty bounding box (Min=+Inf, Max=-Inf per
// axis) ready to be expanded.
func NewBoundingBox(dimensions int) BoundingBox {
	bb := BoundingBox{Min: make([]float64, dimensions), Max: make([]float64, dimensions)}
	for i := 0; i < dimensions; i++ {
		bb.Min[i] = math.Inf(1)
		bb.Max[i] = math.Inf(-1)
	}
	return bb
}

// ExpandByVertex grows the box, if necessary, to contain v.
func (bb *BoundingBox) ExpandByVertex(v *Vertex) {
	for i, c := range v.Coords {
		if c < bb.Min[i] {
			bb.Min[i] = c
		}
		if c > bb.Max[i] {
			bb.Max[i] = c
		}
	}
}

// Empty reports whether the box has never been expanded.
func (bb BoundingBox) Empty() bool {
	for i := range bb.Min {
		if bb.Min[i] > bb.Max[i] {
			return true
		}
	}
	return false
}

// Inflated returns a copy of bb expanded outward by factor on every side,
// relative to the box's own extent per dimension. A factor of 0 returns an
// identical copy.
func (bb BoundingBox) Inflated(factor float64) BoundingBox {
	out := BoundingBox{Min: append([]float64{}, bb.Min...), Max: append([]float64{}, bb.Max...)}
	for i := range out.Min {
		extent := out.Max[i] - out.Min[i]
		pad := extent * factor
		out.Min[i] -= pad
		out.Max[i] += pad
	}
	return out
}

// Intersects reports whether bb and other overlap in every dimension,
// after other is inflated by safetyFactor. This is the predicate the
// received-side partition role uses to decide whether a remote rank's box
// is relevant to a local rank.
func (bb BoundingBox) Intersects(other BoundingBox, safetyFactor float64) bool {
	if bb.Empty() || other.Empty() {
		return false
	}
	inflated := other.Inflated(safetyFactor)
	for i := range bb.Min {
		if bb.Max[i] < inflated.Min[i] || bb.Min[i] > inflated.Max[i] {
			return false
		}
	}
	return true
}

// Contains reports whether point lies within bb (inclusive bounds).
func (bb BoundingBox) Contains(point []float64) bool {
	for i, c := range point {
		if c < bb.Min[i] || c > bb.Max[i] {
			return false
		}
	}
	return true
}
