package kernel

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/mould/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// cubeTetrahedra splits a cube into six tetrahedra around the 0-6 diagonal.
// Face diagonals agree between neighbouring cubes so the surface is closed.
var cubeTetrahedra = [6][4]int{
	{0, 6, 1, 2},
	{0, 6, 2, 3},
	{0, 6, 3, 7},
	{0, 6, 7, 4},
	{0, 6, 4, 5},
	{0, 6, 5, 1},
}

// marchCube adds the triangles of the zero level set inside a cube to b.
// Negative values are inside.
func marchCube(b *mesh.Builder, corners [8]r3.Vec, values [8]float64) {
	for _, tet := range cubeTetrahedra {
		var p [4]r3.Vec
		var v [4]float64
		for i, c := range tet {
			p[i], v[i] = corners[c], values[c]
		}
		marchTetrahedron(b, p, v)
	}
}

func marchTetrahedron(b *mesh.Builder, p [4]r3.Vec, v [4]float64) {
	var in, out []int
	var inBuf, outBuf [4]int
	in, out = inBuf[:0], outBuf[:0]
	for i := range v {
		if v[i] < 0 {
			in = append(in, i)
		} else {
			out = append(out, i)
		}
	}
	if len(in) == 0 || len(out) == 0 {
		return
	}
	// Triangles face from the inside corners to the outside ones.
	var cin, cout r3.Vec
	for _, i := range in {
		cin = r3.Add(cin, p[i])
	}
	for _, i := range out {
		cout = r3.Add(cout, p[i])
	}
	dir := r3.Sub(r3.Scale(1/float64(len(out)), cout), r3.Scale(1/float64(len(in)), cin))
	cross := func(a, c int) r3.Vec { return crossing(p[a], v[a], p[c], v[c]) }
	switch len(in) {
	case 1:
		emit(b, dir, cross(in[0], out[0]), cross(in[0], out[1]), cross(in[0], out[2]))
	case 3:
		emit(b, dir, cross(in[0], out[0]), cross(in[1], out[0]), cross(in[2], out[0]))
	case 2:
		q0 := cross(in[0], out[0])
		q1 := cross(in[0], out[1])
		q2 := cross(in[1], out[1])
		q3 := cross(in[1], out[0])
		emit(b, dir, q0, q1, q2)
		emit(b, dir, q0, q2, q3)
	}
}

// crossing interpolates the zero crossing on an edge. Endpoints are ordered
// so both cubes sharing an edge compute bitwise identical vertices.
func crossing(a r3.Vec, va float64, c r3.Vec, vc float64) r3.Vec {
	if less(c, a) {
		a, va, c, vc = c, vc, a, va
	}
	t := va / (va - vc)
	return r3.Add(a, r3.Scale(t, r3.Sub(c, a)))
}

func less(a, b r3.Vec) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

func emit(b *mesh.Builder, dir, a, c, d r3.Vec) {
	n := r3.Cross(r3.Sub(c, a), r3.Sub(d, a))
	if r3.Dot(n, dir) < 0 {
		c, d = d, c
	}
	b.Add(ms3.Triangle{vec32(a), vec32(c), vec32(d)})
}

func vec32(v r3.Vec) ms3.Vec {
	return ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
