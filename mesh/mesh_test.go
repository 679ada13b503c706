package mesh

import (
	"testing"

	"github.com/soypat/glgl/math/ms3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tetrahedron() *Mesh {
	o := ms3.Vec{}
	x := ms3.Vec{X: 1}
	y := ms3.Vec{Y: 1}
	z := ms3.Vec{Z: 1}
	b := NewBuilder(4)
	b.Add(ms3.Triangle{o, y, x})
	b.Add(ms3.Triangle{o, x, z})
	b.Add(ms3.Triangle{o, z, y})
	b.Add(ms3.Triangle{x, y, z})
	return b.Build(nil)
}

func TestBuilderWelds(t *testing.T) {
	m := tetrahedron()
	require.NoError(t, m.Validate())
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 4, m.TriangleCount())
	assert.Len(t, m.Normals, len(m.Vertices))
	bb := m.Bounds()
	assert.Equal(t, ms3.Vec{}, bb.Min)
	assert.Equal(t, ms3.Vec{X: 1, Y: 1, Z: 1}, bb.Max)
	// Origin normal points away from the solid.
	n := ms3.Vec{X: m.Normals[0], Y: m.Normals[1], Z: m.Normals[2]}
	assert.Less(t, n.X+n.Y+n.Z, float32(0))
}

func TestBuilderDropsDegenerate(t *testing.T) {
	b := NewBuilder(1)
	v := ms3.Vec{X: 1}
	assert.False(t, b.Add(ms3.Triangle{v, v, {Y: 1}}))
	assert.False(t, b.Add(ms3.Triangle{{}, {X: 1}, {X: 2}}))
	assert.Zero(t, b.Len())
	assert.True(t, b.Build(nil).Empty())
}

func TestBuildUsesNormalFunc(t *testing.T) {
	b := NewBuilder(1)
	b.Add(ms3.Triangle{{}, {X: 1}, {Y: 1}})
	m := b.Build(func(ms3.Vec) ms3.Vec { return ms3.Vec{Z: 3} })
	for i := 0; i < m.VertexCount(); i++ {
		assert.Equal(t, float32(1), m.Normals[3*i+2])
	}
}

func TestTransfer(t *testing.T) {
	m := tetrahedron()
	verts := m.Vertices
	got := m.Transfer()
	assert.True(t, m.Empty())
	assert.Nil(t, m.Vertices)
	assert.Equal(t, 4, got.TriangleCount())
	// Same backing array, no copy.
	assert.Same(t, &verts[0], &got.Vertices[0])
}

func TestMaxRadius(t *testing.T) {
	m := tetrahedron()
	assert.InDelta(t, 1, m.MaxRadius(-1, 2), 1e-6)
	assert.InDelta(t, 0, m.MaxRadius(0.5, 2), 1e-6)
}

func TestParseQuality(t *testing.T) {
	q, err := ParseQuality("high")
	require.NoError(t, err)
	assert.Equal(t, High, q)
	_, err = ParseQuality("ultra")
	assert.Error(t, err)

	var got Quality
	require.NoError(t, got.UnmarshalText([]byte("high")))
	assert.Equal(t, High, got)
	b, err := Standard.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "standard", string(b))
	assert.Error(t, got.UnmarshalText([]byte("draft")))
}
