// Package kernel is a small solid modelling kernel for solids of revolution
// and the booleans needed to cut them into mould pieces.
//
// Objects handed out by a Kernel live on its heap until Delete is called.
// Delete is idempotent and safe on nil. Using a deleted object returns an
// error wrapping ErrDeleted. Kernel operations never panic: internal panics
// are returned as errors wrapping ErrInternal.
package kernel

import (
	"math"
	"sync/atomic"

	"github.com/soypat/mould/internal/d2"
	"github.com/soypat/mould/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Approximate heap footprint of kernel objects.
const (
	objectBytes = 96
	vertexBytes = 16
)

// Kernel creates and accounts for wires and shapes.
type Kernel struct {
	heap *heap
}

// New returns a kernel with an empty heap.
func New() *Kernel {
	return &Kernel{heap: newHeap()}
}

// Heap returns a snapshot of heap statistics.
func (k *Kernel) Heap() Stats { return k.heap.snapshot() }

// HeapSize returns the estimated number of bytes held by live objects.
func (k *Kernel) HeapSize() int64 { return k.heap.snapshot().Bytes }

type handle struct {
	k       *Kernel
	id      uint64
	deleted atomic.Bool
}

func (h *handle) init(k *Kernel, size int64) {
	h.k = k
	h.id = k.heap.alloc(size)
}

func (h *handle) free() {
	if h.deleted.CompareAndSwap(false, true) {
		h.k.heap.free(h.id)
	}
}

func (h *handle) check(op, what string) error {
	if h.deleted.Load() {
		return newError(op, ErrDeleted, "%s used after Delete", what)
	}
	return nil
}

// Wire is a closed planar polyline in the XY half plane, X being radius.
type Wire struct {
	handle
	pts []r2.Vec
}

// Delete releases the wire.
func (w *Wire) Delete() {
	if w != nil {
		w.free()
	}
}

// Vertices returns a copy of the wire's vertices. The closing edge is implied.
func (w *Wire) Vertices() []r2.Vec { return append([]r2.Vec(nil), w.pts...) }

// Face is a planar horizontal annulus on the boundary of a revolved shape.
type Face struct {
	Z          float64
	RMin, RMax float64
}

// Shape is a solid.
type Shape struct {
	handle
	s sdf3
	// section and faces are only set for solids of revolution.
	section *polygon
	faces   []Face
}

// Delete releases the shape.
func (s *Shape) Delete() {
	if s != nil {
		s.free()
	}
}

// Bounds returns a box containing the shape.
func (s *Shape) Bounds() r3.Box { return s.s.Bounds() }

// Faces returns the planar horizontal faces of a revolved shape.
func (s *Shape) Faces() []Face { return append([]Face(nil), s.faces...) }

// Distance returns the signed distance bound from p to the shape surface,
// negative inside.
func (s *Shape) Distance(p r3.Vec) (d float64, err error) {
	defer guard("distance", &err)
	if err := checkShape("distance", s); err != nil {
		return 0, err
	}
	return s.s.Evaluate(p), nil
}

func (k *Kernel) newShape(s sdf3, section *polygon, faces []Face) *Shape {
	sh := &Shape{s: s, section: section, faces: faces}
	size := int64(objectBytes)
	if section != nil {
		size += vertexBytes * int64(len(section.vertex))
	}
	sh.init(k, size)
	return sh
}

func checkShape(op string, s *Shape) error {
	if s == nil {
		return newError(op, ErrInvalid, "nil shape")
	}
	return s.check(op, "shape")
}

// MakeWire returns a closed wire through vertices. Consecutive duplicates and
// a repeated first vertex are dropped. At least 3 distinct vertices are needed.
func (k *Kernel) MakeWire(vertices []r2.Vec) (w *Wire, err error) {
	const op = "make wire"
	defer guard(op, &err)
	pts := make([]r2.Vec, 0, len(vertices))
	for i, v := range vertices {
		if !d2.Finite(v) {
			return nil, newError(op, ErrInvalid, "vertex %d not finite", i)
		}
		if len(pts) > 0 && pts[len(pts)-1] == v {
			continue
		}
		pts = append(pts, v)
	}
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil, newError(op, ErrInvalid, "need 3 distinct vertices, got %d", len(pts))
	}
	w = &Wire{pts: pts}
	w.init(k, objectBytes+vertexBytes*int64(len(pts)))
	return w, nil
}

// Revolve sweeps w a full turn about the Z axis. The wire's X is the radius
// and its Y the height. Horizontal wire edges become planar faces that can be
// selected by Hollow using their exact height.
func (k *Kernel) Revolve(w *Wire) (s *Shape, err error) {
	const op = "revolve"
	defer guard(op, &err)
	if w == nil {
		return nil, newError(op, ErrInvalid, "nil wire")
	}
	if err := w.check(op, "wire"); err != nil {
		return nil, err
	}
	for i, v := range w.pts {
		if v.X < 0 {
			return nil, newError(op, ErrInvalid, "vertex %d at radius %g crosses the axis", i, v.X)
		}
	}
	section := newPolygon(w.pts)
	if math.Abs(section.area()) < 1e-12 {
		return nil, newError(op, ErrDegenerate, "wire encloses no area")
	}
	var faces []Face
	n := len(w.pts)
	for i, a := range w.pts {
		b := w.pts[(i+1)%n]
		if a.Y != b.Y || a.X == b.X {
			continue
		}
		faces = append(faces, Face{Z: a.Y, RMin: math.Min(a.X, b.X), RMax: math.Max(a.X, b.X)})
	}
	solid := revolve(newPolygon(meridian(w.pts)))
	return k.newShape(solid, section, faces), nil
}

// Box returns an axis aligned box.
func (k *Kernel) Box(b r3.Box) (s *Shape, err error) {
	const op = "box"
	defer guard(op, &err)
	size := d3.Box(b).Size()
	if !(size.X > 0 && size.Y > 0 && size.Z > 0) || math.IsInf(d3.Max(size), 0) {
		return nil, newError(op, ErrInvalid, "box size %v", size)
	}
	return k.newShape(&box{center: d3.Box(b).Center(), half: r3.Scale(0.5, size)}, nil, nil), nil
}

// Sphere returns a sphere.
func (k *Kernel) Sphere(center r3.Vec, radius float64) (s *Shape, err error) {
	const op = "sphere"
	defer guard(op, &err)
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, newError(op, ErrInvalid, "radius %g", radius)
	}
	return k.newShape(&sphere{center: center, radius: radius}, nil, nil), nil
}

// Cylinder returns a Z aligned cylinder around axis between heights z0 < z1.
func (k *Kernel) Cylinder(axis r2.Vec, radius, z0, z1 float64) (s *Shape, err error) {
	const op = "cylinder"
	defer guard(op, &err)
	if !(radius > 0) || !(z1 > z0) || math.IsInf(radius, 0) || math.IsInf(z1-z0, 0) {
		return nil, newError(op, ErrInvalid, "radius %g between heights %g and %g", radius, z0, z1)
	}
	return k.newShape(&cylinder{axis: axis, radius: radius, z0: z0, z1: z1}, nil, nil), nil
}

// Cut returns a minus b. The arguments remain owned by the caller.
func (k *Kernel) Cut(a, b *Shape) (s *Shape, err error) {
	const op = "cut"
	defer guard(op, &err)
	if err := checkShape(op, a); err != nil {
		return nil, err
	}
	if err := checkShape(op, b); err != nil {
		return nil, err
	}
	return k.newShape(&diff{a: a.s, b: b.s}, nil, nil), nil
}

// Fuse returns the union of a and b. The arguments remain owned by the caller.
func (k *Kernel) Fuse(a, b *Shape) (s *Shape, err error) {
	const op = "fuse"
	defer guard(op, &err)
	if err := checkShape(op, a); err != nil {
		return nil, err
	}
	if err := checkShape(op, b); err != nil {
		return nil, err
	}
	return k.newShape(newUnion(a.s, b.s), nil, nil), nil
}
