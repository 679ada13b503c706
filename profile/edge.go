package profile

import (
	"math"

	"github.com/soypat/mould/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Edge is the segment of the profile that ends at point Index+1. Line edges
// keep their control points equal to their endpoints.
type Edge struct {
	Index          int
	Kind           SegmentKind
	P0, P1, P2, P3 r2.Vec
}

func edgeOf(index int, from, to Point) Edge {
	e := Edge{Index: index, Kind: to.Kind, P0: from.Pos, P3: to.Pos}
	if to.Kind == Curve {
		e.P1, e.P2 = to.CP1, to.CP2
	} else {
		e.P1, e.P2 = from.Pos, to.Pos
	}
	return e
}

// At evaluates the edge at parameter t in [0,1]. Lines are interpolated
// linearly so samples are evenly spaced.
func (e Edge) At(t float64) r2.Vec {
	// Endpoints must be exact for planar face selection.
	switch t {
	case 0:
		return e.P0
	case 1:
		return e.P3
	}
	if e.Kind != Curve {
		return d2.Lerp(e.P0, e.P3, t)
	}
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return r2.Vec{
		X: a*e.P0.X + b*e.P1.X + c*e.P2.X + d*e.P3.X,
		Y: a*e.P0.Y + b*e.P1.Y + c*e.P2.Y + d*e.P3.Y,
	}
}

// Sample returns n points evenly spaced in parameter along the edge,
// endpoints included. n less than 2 is treated as 2.
func (e Edge) Sample(n int) []r2.Vec {
	if n < 2 {
		n = 2
	}
	pts := make([]r2.Vec, n)
	for i := range pts {
		pts[i] = e.At(float64(i) / float64(n-1))
	}
	return pts
}

// Segments approximates the edge with n straight segments (1 for lines).
func (e Edge) Segments(n int) []d2.Segment {
	if e.Kind != Curve || n < 1 {
		n = 1
	}
	segs := make([]d2.Segment, n)
	prev := e.P0
	for i := range segs {
		next := e.At(float64(i+1) / float64(n))
		segs[i] = d2.Segment{A: prev, B: next}
		prev = next
	}
	return segs
}

// Bounds returns the exact bounding box of the edge. For curves the box
// includes interior extrema, which may lie outside the endpoints' box.
func (e Edge) Bounds() r2.Box {
	bb := d2.Box{Min: d2.MinElem(e.P0, e.P3), Max: d2.MaxElem(e.P0, e.P3)}
	if e.Kind != Curve {
		return r2.Box(bb)
	}
	var roots [4]float64
	ts := append(roots[:0], extrema(e.P0.X, e.P1.X, e.P2.X, e.P3.X)...)
	ts = append(ts, extrema(e.P0.Y, e.P1.Y, e.P2.Y, e.P3.Y)...)
	for _, t := range ts {
		bb = bb.Include(e.At(t))
	}
	return r2.Box(bb)
}

// extrema returns parameters in (0,1) where the derivative of the 1D cubic
// bezier with coefficients p0..p3 vanishes.
func extrema(p0, p1, p2, p3 float64) []float64 {
	const eps = 1e-12
	c0 := p1 - p0
	c1 := p2 - p1
	c2 := p3 - p2
	a := c0 - 2*c1 + c2
	b := 2 * (c1 - c0)
	c := c0
	var ts []float64
	keep := func(t float64) {
		if t > 0 && t < 1 {
			ts = append(ts, t)
		}
	}
	if math.Abs(a) < eps {
		if math.Abs(b) > eps {
			keep(-c / b)
		}
		return ts
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return ts
	}
	sq := math.Sqrt(disc)
	keep((-b + sq) / (2 * a))
	keep((-b - sq) / (2 * a))
	return ts
}
