package kernel

import (
	"math"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/mould/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tessellate meshes the surface of s. The surface is sampled on cubic cells
// of side twice deflection, which bounds the distance between the mesh and
// the surface by about deflection. Vertex normals follow the surface gradient.
func (k *Kernel) Tessellate(s *Shape, deflection float64) (m *mesh.Mesh, err error) {
	const op = "tessellate"
	defer guard(op, &err)
	if err := checkShape(op, s); err != nil {
		return nil, err
	}
	if !(deflection > 0) || math.IsInf(deflection, 0) {
		return nil, newError(op, ErrInvalid, "deflection %g", deflection)
	}
	cell := 2 * deflection
	oc, err := newOctree(s.s, cell)
	if err != nil {
		return nil, err
	}
	b := mesh.NewBuilder(1024)
	oc.march(func(corners [8]r3.Vec, values [8]float64) {
		marchCube(b, corners, values)
	})
	if b.Len() == 0 {
		return nil, newError(op, ErrDegenerate, "shape has no surface")
	}
	h := 0.05 * cell
	return b.Build(func(v ms3.Vec) ms3.Vec {
		return vec32(gradient(s.s, r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}, h))
	}), nil
}

// gradient estimates the gradient of s at p with central differences.
func gradient(s sdf3, p r3.Vec, h float64) r3.Vec {
	dx := r3.Vec{X: h}
	dy := r3.Vec{Y: h}
	dz := r3.Vec{Z: h}
	return r3.Vec{
		X: s.Evaluate(r3.Add(p, dx)) - s.Evaluate(r3.Sub(p, dx)),
		Y: s.Evaluate(r3.Add(p, dy)) - s.Evaluate(r3.Sub(p, dy)),
		Z: s.Evaluate(r3.Add(p, dz)) - s.Evaluate(r3.Sub(p, dz)),
	}
}
