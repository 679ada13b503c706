// Package mesh defines the plain numeric triangle buffers that generated
// solids become once tessellated. A Mesh is the only geometry that leaves
// the execution context.
package mesh

import (
	"errors"
	"fmt"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Kind tags a part so a renderer can choose material and visibility.
type Kind uint8

const (
	Proof Kind = iota
	InnerMould
	Outer
	Ring
)

func (k Kind) String() string {
	switch k {
	case Proof:
		return "proof"
	case InnerMould:
		return "inner-mould"
	case Outer:
		return "outer"
	case Ring:
		return "ring"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Quality selects the tessellation deflection preset.
type Quality uint8

const (
	Standard Quality = iota
	High
)

func (q Quality) String() string {
	if q == High {
		return "high"
	}
	return "standard"
}

func (q Quality) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

func (q *Quality) UnmarshalText(b []byte) error {
	v, err := ParseQuality(string(b))
	if err != nil {
		return err
	}
	*q = v
	return nil
}

// ParseQuality parses "standard" or "high". The empty string is Standard.
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "", "standard":
		return Standard, nil
	case "high":
		return High, nil
	}
	return Standard, fmt.Errorf("unknown mesh quality %q", s)
}

// Mesh is an indexed triangle mesh. Vertices and Normals hold xyz triplets;
// Indices hold vertex index triplets, counter-clockwise seen from outside.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
}

// Empty reports whether the mesh has no triangles.
func (m *Mesh) Empty() bool { return m == nil || len(m.Indices) == 0 }

func (m *Mesh) VertexCount() int { return len(m.Vertices) / 3 }

func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) ms3.Vec {
	return ms3.Vec{X: m.Vertices[3*i], Y: m.Vertices[3*i+1], Z: m.Vertices[3*i+2]}
}

// Triangle returns the vertices of triangle i.
func (m *Mesh) Triangle(i int) [3]ms3.Vec {
	idx := m.Indices[3*i : 3*i+3]
	return [3]ms3.Vec{m.Vertex(int(idx[0])), m.Vertex(int(idx[1])), m.Vertex(int(idx[2]))}
}

// Bounds returns the bounding box of the vertices. An empty mesh has a zero box.
func (m *Mesh) Bounds() ms3.Box {
	if m.VertexCount() == 0 {
		return ms3.Box{}
	}
	bb := ms3.Box{Min: m.Vertex(0), Max: m.Vertex(0)}
	for i := 1; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		bb.Min = ms3.MinElem(bb.Min, v)
		bb.Max = ms3.MaxElem(bb.Max, v)
	}
	return bb
}

// MaxRadius returns the largest distance from the Z axis among vertices
// with zmin <= z <= zmax.
func (m *Mesh) MaxRadius(zmin, zmax float32) float32 {
	var r float32
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		if v.Z < zmin || v.Z > zmax {
			continue
		}
		r = math.Max(r, math.Hypot(v.X, v.Y))
	}
	return r
}

// Transfer moves the buffers of m into a new Mesh and leaves m empty. Buffers
// are not copied: after Transfer the previous owner no longer sees them.
func (m *Mesh) Transfer() *Mesh {
	out := &Mesh{Vertices: m.Vertices, Normals: m.Normals, Indices: m.Indices}
	m.Vertices, m.Normals, m.Indices = nil, nil, nil
	return out
}

// Validate checks buffer lengths and index ranges.
func (m *Mesh) Validate() error {
	switch {
	case len(m.Vertices)%3 != 0:
		return errors.New("vertex buffer length not a multiple of 3")
	case len(m.Normals) != len(m.Vertices):
		return fmt.Errorf("normal buffer length %d, want %d", len(m.Normals), len(m.Vertices))
	case len(m.Indices)%3 != 0:
		return errors.New("index buffer length not a multiple of 3")
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("index %d out of range at %d", idx, i)
		}
	}
	return nil
}
