package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Hollow turns a revolved solid into a shell of uniform wall thickness and
// removes the planar faces lying exactly at height faceZ to open it. Face
// selection is exact: faceZ must equal a vertex height of the revolved wire.
//
// A positive thickness grows the wall inward, keeping the outer surface. A
// negative thickness grows it outward so the inner surface of the shell is
// the surface of s.
func (k *Kernel) Hollow(s *Shape, faceZ, thickness float64) (out *Shape, err error) {
	const op = "hollow"
	defer guard(op, &err)
	if err := checkShape(op, s); err != nil {
		return nil, err
	}
	if thickness == 0 || math.IsNaN(thickness) || math.IsInf(thickness, 0) {
		return nil, newError(op, ErrInvalid, "thickness %g", thickness)
	}
	if s.section == nil {
		return nil, newError(op, ErrUnsupported, "shape is not a solid of revolution")
	}
	found := false
	for _, f := range s.faces {
		found = found || f.Z == faceZ
	}
	if !found {
		return nil, newError(op, ErrNoFace, "no planar face at height %v", faceZ)
	}
	if s.section.selfIntersects() {
		return nil, newError(op, ErrDegenerate, "section intersects itself, offset is undefined")
	}
	bb := s.s.Bounds()
	top := faceZ == bb.Max.Z
	if !top && faceZ != bb.Min.Z {
		return nil, newError(op, ErrUnsupported, "face at %v is not on the top or bottom of the solid", faceZ)
	}
	zmin, zmax := math.Inf(-1), math.Inf(1)
	if top {
		zmax = faceZ
	} else {
		zmin = faceZ
	}

	if thickness < 0 {
		// The grown wall is clipped flat at the face plane, which leaves the
		// removed face open.
		wall := &slab{s: newOffset(s.s, -thickness), zmin: zmin, zmax: zmax}
		return k.newShape(&diff{a: wall, b: s.s}, nil, nil), nil
	}

	closed := s.section.vertex[:len(s.section.vertex)-1]
	if r := newPolygon(meridian(closed)).inradius(); thickness >= r {
		return nil, newError(op, ErrDegenerate, "inward thickness %g consumes the solid (inradius about %g)", thickness, r)
	}
	// Extend the section through the removed face so the inner offset
	// leaves no wall there.
	h := 2 * thickness
	if !top {
		h = -h
	}
	ext := newPolygon(meridian(extendFace(closed, faceZ, h)))
	cavity := newOffset(revolve(ext), -thickness)
	return k.newShape(&diff{a: s.s, b: cavity}, nil, nil), nil
}

// extendFace moves every run of consecutive vertices at height z outward by
// h: the run's inner vertices are dropped and its ends are joined through
// two vertices at height z+h.
func extendFace(pts []r2.Vec, z, h float64) []r2.Vec {
	n := len(pts)
	start := -1
	for i, p := range pts {
		if p.Y != z {
			start = i
			break
		}
	}
	if start < 0 {
		return pts
	}
	out := make([]r2.Vec, 0, n+2)
	for k := 0; k < n; {
		p := pts[(start+k)%n]
		if p.Y != z {
			out = append(out, p)
			k++
			continue
		}
		end := k
		for end+1 < n && pts[(start+end+1)%n].Y == z {
			end++
		}
		first, last := p, pts[(start+end)%n]
		if end == k {
			out = append(out, p)
		} else {
			out = append(out, first,
				r2.Vec{X: first.X, Y: z + h},
				r2.Vec{X: last.X, Y: z + h},
				last)
		}
		k = end + 1
	}
	return out
}
