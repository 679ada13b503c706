package kernel

import (
	"math"

	"github.com/soypat/mould/internal/d2"
	"github.com/soypat/mould/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// sdf3 is a signed distance bound: negative inside, and never changing
// faster than the distance between two points.
type sdf3 interface {
	Evaluate(p r3.Vec) float64
	Bounds() r3.Box
}

type sdf2 interface {
	Evaluate(p r2.Vec) float64
	Bounds() r2.Box
}

// revolution is a full solid of revolution of a meridian section about Z.
type revolution struct {
	section sdf2
	bb      r3.Box
}

func revolve(s sdf2) *revolution {
	bb := s.Bounds()
	l := math.Max(math.Abs(bb.Min.X), math.Abs(bb.Max.X))
	return &revolution{
		section: s,
		bb: r3.Box{
			Min: r3.Vec{X: -l, Y: -l, Z: bb.Min.Y},
			Max: r3.Vec{X: l, Y: l, Z: bb.Max.Y},
		},
	}
}

func (s *revolution) Evaluate(p r3.Vec) float64 {
	return s.section.Evaluate(r2.Vec{X: math.Hypot(p.X, p.Y), Y: p.Z})
}

func (s *revolution) Bounds() r3.Box { return s.bb }

// box is an axis aligned box.
type box struct {
	center, half r3.Vec
}

func (s *box) Evaluate(p r3.Vec) float64 {
	q := r3.Sub(d3.AbsElem(r3.Sub(p, s.center)), s.half)
	outside := r3.Norm(d3.MaxElem(q, r3.Vec{}))
	return outside + math.Min(math.Max(q.X, math.Max(q.Y, q.Z)), 0)
}

func (s *box) Bounds() r3.Box {
	return r3.Box{Min: r3.Sub(s.center, s.half), Max: r3.Add(s.center, s.half)}
}

type sphere struct {
	center r3.Vec
	radius float64
}

func (s *sphere) Evaluate(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, s.center)) - s.radius
}

func (s *sphere) Bounds() r3.Box {
	d := d3.Elem(s.radius)
	return r3.Box{Min: r3.Sub(s.center, d), Max: r3.Add(s.center, d)}
}

// cylinder is a Z aligned cylinder between heights z0 and z1.
type cylinder struct {
	axis   r2.Vec
	radius float64
	z0, z1 float64
}

func (s *cylinder) Evaluate(p r3.Vec) float64 {
	r := math.Hypot(p.X-s.axis.X, p.Y-s.axis.Y)
	hz := 0.5 * (s.z1 - s.z0)
	return sdfBox2d(r2.Vec{X: r, Y: p.Z - (s.z0 + hz)}, r2.Vec{X: s.radius, Y: hz})
}

func (s *cylinder) Bounds() r3.Box {
	return r3.Box{
		Min: r3.Vec{X: s.axis.X - s.radius, Y: s.axis.Y - s.radius, Z: s.z0},
		Max: r3.Vec{X: s.axis.X + s.radius, Y: s.axis.Y + s.radius, Z: s.z1},
	}
}

// sdfBox2d is the exact distance to a box of half size s centered at the origin.
func sdfBox2d(p, s r2.Vec) float64 {
	q := r2.Sub(d2.AbsElem(p), s)
	outside := r2.Norm(d2.MaxElem(q, r2.Vec{}))
	return outside + math.Min(math.Max(q.X, q.Y), 0)
}

type union struct {
	a, b sdf3
	bb   r3.Box
}

func newUnion(a, b sdf3) *union {
	bb := d3.Box(a.Bounds()).Extend(d3.Box(b.Bounds()))
	return &union{a: a, b: b, bb: r3.Box(bb)}
}

func (s *union) Evaluate(p r3.Vec) float64 {
	return math.Min(s.a.Evaluate(p), s.b.Evaluate(p))
}

func (s *union) Bounds() r3.Box { return s.bb }

// diff is a minus b.
type diff struct {
	a, b sdf3
}

func (s *diff) Evaluate(p r3.Vec) float64 {
	return math.Max(s.a.Evaluate(p), -s.b.Evaluate(p))
}

func (s *diff) Bounds() r3.Box { return s.a.Bounds() }

// offset grows a shape by distance, shrinking it when negative.
type offset struct {
	s        sdf3
	distance float64
	bb       r3.Box
}

func newOffset(s sdf3, distance float64) *offset {
	bb := d3.Box(s.Bounds())
	if distance > 0 {
		bb = bb.Enlarge(distance)
	}
	return &offset{s: s, distance: distance, bb: r3.Box(bb)}
}

func (s *offset) Evaluate(p r3.Vec) float64 {
	return s.s.Evaluate(p) - s.distance
}

func (s *offset) Bounds() r3.Box { return s.bb }

// slab keeps the part of a shape between heights zmin and zmax. Either may be infinite.
type slab struct {
	s          sdf3
	zmin, zmax float64
}

func (s *slab) Evaluate(p r3.Vec) float64 {
	d := s.s.Evaluate(p)
	d = math.Max(d, p.Z-s.zmax)
	return math.Max(d, s.zmin-p.Z)
}

func (s *slab) Bounds() r3.Box {
	bb := s.s.Bounds()
	bb.Min.Z = math.Max(bb.Min.Z, s.zmin)
	bb.Max.Z = math.Min(bb.Max.Z, s.zmax)
	return bb
}
