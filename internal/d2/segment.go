package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Segment is a line segment from A to B.
type Segment struct {
	A, B r2.Vec
}

// Bounds returns the bounding box of the segment.
func (s Segment) Bounds() Box {
	return Box{Min: MinElem(s.A, s.B), Max: MaxElem(s.A, s.B)}
}

// Intersect returns the intersection point of two segments and true if they
// intersect. Collinear overlapping segments report the first shared endpoint.
func (s Segment) Intersect(o Segment) (r2.Vec, bool) {
	const eps = 1e-12
	if !s.Bounds().Overlaps(o.Bounds()) {
		return r2.Vec{}, false
	}
	r := r2.Sub(s.B, s.A)
	q := r2.Sub(o.B, o.A)
	den := r2.Cross(r, q)
	ao := r2.Sub(o.A, s.A)
	if math.Abs(den) < eps {
		if math.Abs(r2.Cross(ao, r)) > eps {
			return r2.Vec{}, false // parallel, not collinear.
		}
		for _, p := range [...]r2.Vec{o.A, o.B, s.A, s.B} {
			if s.contains(p) && o.contains(p) {
				return p, true
			}
		}
		return r2.Vec{}, false
	}
	t := r2.Cross(ao, q) / den
	u := r2.Cross(ao, r) / den
	if t < -eps || t > 1+eps || u < -eps || u > 1+eps {
		return r2.Vec{}, false
	}
	return r2.Add(s.A, r2.Scale(t, r)), true
}

// contains reports whether p lies within the bounds of a segment it is collinear with.
func (s Segment) contains(p r2.Vec) bool {
	return s.Bounds().Contains(p)
}
