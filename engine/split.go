package engine

import (
	"github.com/soypat/mould/kernel"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// seams are the unit directions of the split planes' half lines, counter
// clockwise from +X. The pour hole sits on seams[0].
var seams = [4]r2.Vec{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}}

// halfSpace is the region on one side of the X=0 or Y=0 plane.
type halfSpace struct {
	axis int // 0 for X, 1 for Y
	sign float64
}

// piece is one sector of a split part. It spans counter clockwise from seam
// from to seam to, and is produced by removing the half spaces in cut.
type piece struct {
	name     string
	from, to int
	cut      []halfSpace
}

var (
	halves = []piece{
		{name: "front", from: 0, to: 2, cut: []halfSpace{{1, -1}}},
		{name: "back", from: 2, to: 0, cut: []halfSpace{{1, 1}}},
	}
	quarters = []piece{
		{name: "front-right", from: 0, to: 1, cut: []halfSpace{{1, -1}, {0, -1}}},
		{name: "front-left", from: 1, to: 2, cut: []halfSpace{{1, -1}, {0, 1}}},
		{name: "back-left", from: 2, to: 3, cut: []halfSpace{{1, 1}, {0, 1}}},
		{name: "back-right", from: 3, to: 0, cut: []halfSpace{{1, 1}, {0, -1}}},
	}
)

// PieceNames returns the names of the pieces a part is split into.
func PieceNames(splitCount int) []string {
	pcs := pieces(splitCount)
	names := make([]string, len(pcs))
	for i, pc := range pcs {
		names[i] = pc.name
	}
	return names
}

func pieces(splitCount int) []piece {
	if splitCount == 4 {
		return quarters
	}
	return halves
}

func (g *generation) pieces() []piece { return pieces(g.params.SplitCount) }

// box returns an oversized box filling the half space.
func (h halfSpace) box(size float64) r3.Box {
	b := r3.Box{
		Min: r3.Vec{X: -size, Y: -size, Z: -size},
		Max: r3.Vec{X: size, Y: size, Z: size},
	}
	switch {
	case h.axis == 0 && h.sign < 0:
		b.Max.X = 0
	case h.axis == 0:
		b.Min.X = 0
	case h.sign < 0:
		b.Max.Y = 0
	default:
		b.Min.Y = 0
	}
	return b
}

// cutPiece removes the half spaces of pc from s. The same cut serves every
// split part.
func (g *generation) cutPiece(s *kernel.Shape, pc piece, d dims) (*kernel.Shape, error) {
	size := extent(d)
	for _, h := range pc.cut {
		b, err := g.track(g.k.Box(h.box(size)))
		if err != nil {
			return nil, err
		}
		s, err = g.track(g.k.Cut(s, b))
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// key adds a ridge on the seam pc starts at and a groove on the seam it ends
// at. The pour hole seam carries neither.
func (g *generation) key(s *kernel.Shape, pc piece, d dims) (*kernel.Shape, error) {
	z := (d.ringBottom + d.ringTop) / 2
	r := ringMid(d)
	ridge := g.tuning.RidgeRadius
	if pc.from != 0 {
		c := r2.Scale(r, seams[pc.from])
		bump, err := g.track(g.k.Sphere(r3.Vec{X: c.X, Y: c.Y, Z: z}, ridge))
		if err != nil {
			return nil, err
		}
		if s, err = g.track(g.k.Fuse(s, bump)); err != nil {
			return nil, err
		}
	}
	if pc.to != 0 {
		c := r2.Scale(r, seams[pc.to])
		groove, err := g.track(g.k.Sphere(r3.Vec{X: c.X, Y: c.Y, Z: z}, ridge+g.params.AssemblyClearance))
		if err != nil {
			return nil, err
		}
		if s, err = g.track(g.k.Cut(s, groove)); err != nil {
			return nil, err
		}
	}
	return s, nil
}
