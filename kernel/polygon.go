package kernel

import (
	"math"

	"github.com/soypat/mould/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// polygon is a closed polygon. Distance is exact, the sign comes from the
// winding number so both orientations are accepted.
type polygon struct {
	vertex []r2.Vec // closed: last equals first.
	vector []r2.Vec // unit edge directions.
	length []float64
	bb     r2.Box
}

func newPolygon(vertex []r2.Vec) *polygon {
	n := len(vertex)
	if n < 3 {
		panic("polygon needs 3 or more vertices")
	}
	s := polygon{vertex: append([]r2.Vec(nil), vertex...)}
	if s.vertex[0] != s.vertex[n-1] {
		s.vertex = append(s.vertex, s.vertex[0])
	}
	nsegs := len(s.vertex) - 1
	s.vector = make([]r2.Vec, nsegs)
	s.length = make([]float64, nsegs)
	bb := d2.Set(s.vertex).Bounds()
	for i := 0; i < nsegs; i++ {
		l := r2.Sub(s.vertex[i+1], s.vertex[i])
		s.length[i] = r2.Norm(l)
		if s.length[i] > 0 {
			s.vector[i] = r2.Scale(1/s.length[i], l)
		}
	}
	s.bb = r2.Box(bb)
	return &s
}

func (s *polygon) Evaluate(p r2.Vec) float64 {
	dd := math.MaxFloat64 // squared distance to the boundary
	wn := 0               // winding number
	nsegs := len(s.vertex) - 1
	pb := r2.Sub(p, s.vertex[0])
	for i := 0; i < nsegs; i++ {
		a := s.vertex[i]
		b := s.vertex[i+1]
		pa := pb
		pb = r2.Sub(p, b)
		t := r2.Dot(pa, s.vector[i])
		dn := r2.Dot(pa, r2.Vec{X: s.vector[i].Y, Y: -s.vector[i].X})
		switch {
		case t < 0:
			dd = math.Min(dd, r2.Norm2(pa))
		case t > s.length[i]:
			dd = math.Min(dd, r2.Norm2(pb))
		default:
			dd = math.Min(dd, dn*dn)
		}
		// See: http://geomalgorithms.com/a03-_inclusion.html
		if a.Y <= p.Y {
			if b.Y > p.Y && dn < 0 {
				wn++
			}
		} else if b.Y <= p.Y && dn > 0 {
			wn--
		}
	}
	d := math.Sqrt(dd)
	if wn != 0 {
		return -d
	}
	return d
}

func (s *polygon) Bounds() r2.Box { return s.bb }

// area returns the signed area of the polygon, positive when counter-clockwise.
func (s *polygon) area() float64 {
	var a float64
	for i := 0; i < len(s.vertex)-1; i++ {
		a += r2.Cross(s.vertex[i], s.vertex[i+1])
	}
	return a / 2
}

// selfIntersects reports whether two non-adjacent edges of the polygon intersect.
func (s *polygon) selfIntersects() bool {
	nsegs := len(s.vertex) - 1
	for i := 0; i < nsegs; i++ {
		si := d2.Segment{A: s.vertex[i], B: s.vertex[i+1]}
		for j := i + 2; j < nsegs; j++ {
			if i == 0 && j == nsegs-1 {
				continue // closing edge is adjacent to the first.
			}
			if _, ok := si.Intersect(d2.Segment{A: s.vertex[j], B: s.vertex[j+1]}); ok {
				return true
			}
		}
	}
	return false
}

// inradius estimates the radius of the largest disc inside the polygon by
// sampling the distance on a grid.
func (s *polygon) inradius() float64 {
	const n = 64
	size := d2.Box(s.bb).Size()
	var best float64
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			p := r2.Vec{
				X: s.bb.Min.X + size.X*float64(i)/n,
				Y: s.bb.Min.Y + size.Y*float64(j)/n,
			}
			best = math.Max(best, -s.Evaluate(p))
		}
	}
	return best
}

// meridian returns the full cross section through the axis of a revolved
// closed wire. Edges lying on the axis are not boundary once revolved, so the
// chain of edges off the axis is mirrored across it to close the section
// instead. Wires that do not lie on the axis along exactly one stretch are
// returned as is.
func meridian(pts []r2.Vec) []r2.Vec {
	n := len(pts)
	onAxis := func(i int) bool {
		return pts[i%n].X == 0 && pts[(i+1)%n].X == 0
	}
	start, stretches := -1, 0
	for i := 0; i < n; i++ {
		if onAxis(i) && !onAxis(i+1) {
			start = (i + 1) % n
			stretches++
		}
	}
	if stretches != 1 {
		return pts
	}
	chain := []r2.Vec{pts[start]}
	for k := 0; k < n; k++ {
		i := (start + k) % n
		if onAxis(i) {
			break
		}
		chain = append(chain, pts[(i+1)%n])
	}
	out := append([]r2.Vec(nil), chain...)
	for i := len(chain) - 2; i >= 1; i-- {
		out = append(out, r2.Vec{X: -chain[i].X, Y: chain[i].Y})
	}
	return out
}
