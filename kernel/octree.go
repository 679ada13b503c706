package kernel

import (
	"math"

	"github.com/soypat/mould/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

type ivec struct {
	x, y, z int
}

func (a ivec) add(b ivec) ivec      { return ivec{x: a.x + b.x, y: a.y + b.y, z: a.z + b.z} }
func (a ivec) addScalar(f int) ivec { return ivec{x: a.x + f, y: a.y + f, z: a.z + f} }

type icube struct {
	ivec
	lvl uint // size = 1 << lvl
}

// maxLevels bounds octree depth, and so the finest tessellation.
const maxLevels = 12

// octree samples space around a shape, descending only into cubes that may
// contain surface, and marches the level 1 cubes.
type octree struct {
	dc    distCache
	todo  []icube
	cells int
}

// newOctree prepares an octree whose marched cells have side cell.
func newOctree(s sdf3, cell float64) (*octree, error) {
	// Scale the bounding box about the center so the boundaries are not on
	// the surface.
	bb := d3.Box(s.Bounds()).ScaleAboutCenter(1.01)
	longAxis := d3.Max(bb.Size())
	if !(longAxis > 0) || math.IsInf(longAxis, 0) {
		return nil, newError("tessellate", ErrDegenerate, "shape has unbounded or empty extent")
	}
	// The level 1 cube is the marched cell, so level 0 is half a cell.
	resolution := 0.5 * cell
	levels := uint(math.Ceil(math.Log2(longAxis/resolution))) + 1
	if levels < 2 {
		levels = 2
	}
	if levels > maxLevels {
		return nil, newError("tessellate", ErrInvalid, "deflection too fine for a shape of size %g", longAxis)
	}
	oc := &octree{
		dc:   newDistCache(s, bb.Min, resolution, levels),
		todo: make([]icube, 1, 8*levels),
	}
	oc.todo[0] = icube{lvl: levels - 1}
	return oc, nil
}

// march calls fn for every cell that may contain surface with its corner
// positions and distances. Corner order: 0:(0,0,0) 1:(1,0,0) 2:(1,1,0)
// 3:(0,1,0) 4:(0,0,1) 5:(1,0,1) 6:(1,1,1) 7:(0,1,1).
func (oc *octree) march(fn func(corners [8]r3.Vec, values [8]float64)) {
	offsets := [8]ivec{
		{0, 0, 0}, {2, 0, 0}, {2, 2, 0}, {0, 2, 0},
		{0, 0, 2}, {2, 0, 2}, {2, 2, 2}, {0, 2, 2},
	}
	for len(oc.todo) > 0 {
		last := len(oc.todo) - 1
		c := oc.todo[last]
		oc.todo = oc.todo[:last]
		if c.lvl == 1 {
			var corners [8]r3.Vec
			var values [8]float64
			for i, off := range offsets {
				corners[i], values[i] = oc.dc.evaluate(c.add(off))
			}
			oc.cells++
			fn(corners, values)
			continue
		}
		n := c.lvl - 1
		s := 1 << n
		sub := [8]icube{
			{c.add(ivec{0, 0, 0}), n},
			{c.add(ivec{s, 0, 0}), n},
			{c.add(ivec{s, s, 0}), n},
			{c.add(ivec{0, s, 0}), n},
			{c.add(ivec{0, 0, s}), n},
			{c.add(ivec{s, 0, s}), n},
			{c.add(ivec{s, s, s}), n},
			{c.add(ivec{0, s, s}), n},
		}
		for _, candidate := range sub {
			if !oc.dc.isEmpty(candidate) {
				oc.todo = append(oc.todo, candidate)
			}
		}
	}
}

// distCache evaluates the shape on the integer lattice, caching results
// since neighbouring cubes share corners.
type distCache struct {
	s          sdf3
	cache      map[ivec]float64
	origin     r3.Vec
	resolution float64
	hdiag      []float64 // half diagonal of a cube by level
}

func newDistCache(s sdf3, origin r3.Vec, resolution float64, levels uint) distCache {
	dc := distCache{
		s:          s,
		cache:      make(map[ivec]float64),
		origin:     origin,
		resolution: resolution,
		hdiag:      make([]float64, levels),
	}
	for i := range dc.hdiag {
		side := float64(int(1)<<uint(i)) * resolution
		dc.hdiag[i] = 0.5 * math.Sqrt(3*side*side)
	}
	return dc
}

func (dc *distCache) position(v ivec) r3.Vec {
	return r3.Add(dc.origin, r3.Scale(dc.resolution, r3.Vec{X: float64(v.x), Y: float64(v.y), Z: float64(v.z)}))
}

func (dc *distCache) evaluate(v ivec) (r3.Vec, float64) {
	p := dc.position(v)
	if d, ok := dc.cache[v]; ok {
		return p, d
	}
	d := dc.s.Evaluate(p)
	dc.cache[v] = d
	return p, d
}

// isEmpty reports whether the cube certainly contains no surface.
func (dc *distCache) isEmpty(c icube) bool {
	half := 1 << (c.lvl - 1)
	_, d := dc.evaluate(c.addScalar(half))
	return math.Abs(d) >= dc.hdiag[c.lvl]
}
