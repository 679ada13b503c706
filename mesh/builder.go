package mesh

import (
	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Builder accumulates triangles and welds vertices with identical coordinates.
type Builder struct {
	verts   []ms3.Vec
	index   map[ms3.Vec]uint32
	indices []uint32
}

// NewBuilder returns a Builder sized for about n triangles.
func NewBuilder(n int) *Builder {
	return &Builder{
		verts:   make([]ms3.Vec, 0, n/2),
		index:   make(map[ms3.Vec]uint32, n/2),
		indices: make([]uint32, 0, 3*n),
	}
}

func (b *Builder) vertex(v ms3.Vec) uint32 {
	if b.index == nil {
		b.index = make(map[ms3.Vec]uint32)
	}
	if i, ok := b.index[v]; ok {
		return i
	}
	i := uint32(len(b.verts))
	b.verts = append(b.verts, v)
	b.index[v] = i
	return i
}

// Add adds triangle abc. Triangles that collapse after welding or have no
// area are dropped. Add reports whether the triangle was kept.
func (b *Builder) Add(t ms3.Triangle) bool {
	n := ms3.Cross(ms3.Sub(t[1], t[0]), ms3.Sub(t[2], t[0]))
	if ms3.Norm(n) == 0 {
		return false
	}
	i0, i1, i2 := b.vertex(t[0]), b.vertex(t[1]), b.vertex(t[2])
	if i0 == i1 || i1 == i2 || i0 == i2 {
		return false
	}
	b.indices = append(b.indices, i0, i1, i2)
	return true
}

// Len returns the number of triangles added.
func (b *Builder) Len() int { return len(b.indices) / 3 }

// Build returns the mesh. Vertex normals come from normal when it is not nil
// and yields a finite non-zero vector, otherwise from the area weighted
// average of adjacent face normals. The Builder is reset.
func (b *Builder) Build(normal func(ms3.Vec) ms3.Vec) *Mesh {
	m := &Mesh{
		Vertices: make([]float32, 0, 3*len(b.verts)),
		Normals:  make([]float32, 3*len(b.verts)),
		Indices:  b.indices,
	}
	for _, v := range b.verts {
		m.Vertices = append(m.Vertices, v.X, v.Y, v.Z)
	}
	acc := make([]ms3.Vec, len(b.verts))
	for i := 0; i < len(b.indices); i += 3 {
		a, c, d := b.verts[b.indices[i]], b.verts[b.indices[i+1]], b.verts[b.indices[i+2]]
		n := ms3.Cross(ms3.Sub(c, a), ms3.Sub(d, a))
		for _, j := range b.indices[i : i+3] {
			acc[j] = ms3.Add(acc[j], n)
		}
	}
	for i, v := range b.verts {
		var n ms3.Vec
		if normal != nil {
			n = normal(v)
		}
		if !usable(n) {
			n = acc[i]
		}
		if usable(n) {
			n = ms3.Unit(n)
		}
		m.Normals[3*i], m.Normals[3*i+1], m.Normals[3*i+2] = n.X, n.Y, n.Z
	}
	*b = Builder{}
	return m
}

func usable(n ms3.Vec) bool {
	l := ms3.Norm(n)
	return l > 0 && !math.IsNaN(l) && !math.IsInf(l, 0)
}
