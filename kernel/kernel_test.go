package kernel

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// cylinderWire is the closed section of a solid cylinder of radius 10 and height 20.
var cylinderWire = []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 20}, {X: 0, Y: 20}}

func revolved(t *testing.T, k *Kernel, pts []r2.Vec) *Shape {
	t.Helper()
	w, err := k.MakeWire(pts)
	require.NoError(t, err)
	defer w.Delete()
	s, err := k.Revolve(w)
	require.NoError(t, err)
	return s
}

func distance(t *testing.T, s *Shape, x, y, z float64) float64 {
	t.Helper()
	d, err := s.Distance(r3.Vec{X: x, Y: y, Z: z})
	require.NoError(t, err)
	return d
}

func TestMakeWire(t *testing.T) {
	k := New()
	w, err := k.MakeWire([]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0}})
	require.NoError(t, err)
	assert.Len(t, w.Vertices(), 3)
	w.Delete()

	_, err = k.MakeWire([]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = k.MakeWire([]r2.Vec{{X: math.NaN()}, {X: 1}, {Y: 1}})
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Zero(t, k.Heap().Live)
}

func TestRevolveCylinder(t *testing.T) {
	k := New()
	s := revolved(t, k, cylinderWire)
	defer s.Delete()
	// Axis edges are not boundary once revolved.
	assert.InDelta(t, -10, distance(t, s, 0, 0, 10), 1e-9)
	assert.InDelta(t, -2, distance(t, s, 8, 0, 10), 1e-9)
	assert.InDelta(t, -2, distance(t, s, 0, 8, 10), 1e-9)
	assert.InDelta(t, 5, distance(t, s, 0, 15, 10), 1e-9)
	assert.InDelta(t, 1, distance(t, s, 0, 0, 21), 1e-9)
	assert.ElementsMatch(t, []Face{{Z: 0, RMin: 0, RMax: 10}, {Z: 20, RMin: 0, RMax: 10}}, s.Faces())
}

func TestRevolveErrors(t *testing.T) {
	k := New()
	w, err := k.MakeWire([]r2.Vec{{X: -1, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}})
	require.NoError(t, err)
	_, err = k.Revolve(w)
	assert.ErrorIs(t, err, ErrInvalid)
	w.Delete()

	w, err = k.MakeWire([]r2.Vec{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 10}})
	require.NoError(t, err)
	_, err = k.Revolve(w)
	assert.ErrorIs(t, err, ErrDegenerate)
	w.Delete()

	_, err = k.Revolve(nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestHeapAccounting(t *testing.T) {
	k := New()
	s := revolved(t, k, cylinderWire)
	b, err := k.Box(r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}})
	require.NoError(t, err)
	c, err := k.Cut(s, b)
	require.NoError(t, err)
	st := k.Heap()
	assert.Equal(t, 3, st.Live)
	assert.Positive(t, st.Bytes)
	assert.Equal(t, uint64(4), st.Allocs) // wire included.
	for _, obj := range []*Shape{s, b, c} {
		obj.Delete()
	}
	st = k.Heap()
	assert.Zero(t, st.Live)
	assert.Zero(t, st.Bytes)
	assert.Equal(t, st.Allocs, st.Frees)
	assert.Positive(t, st.Peak)
}

func TestDeleteIdempotent(t *testing.T) {
	k := New()
	s := revolved(t, k, cylinderWire)
	s.Delete()
	s.Delete()
	assert.Equal(t, uint64(2), k.Heap().Frees)
	var nilShape *Shape
	var nilWire *Wire
	nilShape.Delete()
	nilWire.Delete()

	_, err := k.Tessellate(s, 1)
	assert.ErrorIs(t, err, ErrDeleted)
	_, err = k.Hollow(s, 20, -1)
	assert.ErrorIs(t, err, ErrDeleted)
	_, err = s.Distance(r3.Vec{})
	assert.ErrorIs(t, err, ErrDeleted)
}

func TestCutFuse(t *testing.T) {
	k := New()
	s := revolved(t, k, cylinderWire)
	defer s.Delete()
	half, err := k.Box(r3.Box{Min: r3.Vec{X: -100, Y: -100, Z: -100}, Max: r3.Vec{X: 100, Y: 0, Z: 100}})
	require.NoError(t, err)
	defer half.Delete()
	front, err := k.Cut(s, half)
	require.NoError(t, err)
	defer front.Delete()
	assert.Less(t, distance(t, front, 0, 5, 10), 0.0)
	assert.Greater(t, distance(t, front, 0, -5, 10), 0.0)

	ball, err := k.Sphere(r3.Vec{X: 0, Y: 0, Z: 25}, 3)
	require.NoError(t, err)
	defer ball.Delete()
	fused, err := k.Fuse(s, ball)
	require.NoError(t, err)
	defer fused.Delete()
	assert.Less(t, distance(t, fused, 0, 0, 26), 0.0)
	assert.Equal(t, 28.0, fused.Bounds().Max.Z)

	_, err = k.Cut(s, nil)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = k.Sphere(r3.Vec{}, -1)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = k.Cylinder(r2.Vec{}, 1, 5, 5)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestHollowOutward(t *testing.T) {
	k := New()
	s := revolved(t, k, cylinderWire)
	defer s.Delete()
	h, err := k.Hollow(s, 20, -2)
	require.NoError(t, err)
	defer h.Delete()
	assert.Greater(t, distance(t, h, 0, 0, 10), 0.0, "cavity")
	assert.Less(t, distance(t, h, 11, 0, 10), 0.0, "side wall")
	assert.Less(t, distance(t, h, 0, 0, -1), 0.0, "floor")
	assert.Greater(t, distance(t, h, 0, 0, 20.5), 0.0, "opening")
	assert.Greater(t, distance(t, h, 11, 0, 20.5), 0.0, "wall clipped at the face")
	assert.Greater(t, distance(t, h, 13, 0, 10), 0.0, "outside")
}

func TestHollowInward(t *testing.T) {
	k := New()
	s := revolved(t, k, cylinderWire)
	defer s.Delete()
	h, err := k.Hollow(s, 20, 3)
	require.NoError(t, err)
	defer h.Delete()
	assert.Greater(t, distance(t, h, 0, 0, 10), 0.0, "cavity")
	assert.Greater(t, distance(t, h, 0, 0, 19.5), 0.0, "open at the face")
	assert.Less(t, distance(t, h, 8.5, 0, 10), 0.0, "side wall")
	assert.Less(t, distance(t, h, 0, 0, 1.5), 0.0, "floor")
	assert.Greater(t, distance(t, h, 10.5, 0, 10), 0.0, "outer surface kept")
}

func TestHollowErrors(t *testing.T) {
	k := New()
	s := revolved(t, k, cylinderWire)
	defer s.Delete()
	tests := []struct {
		name     string
		shape    *Shape
		z, thick float64
		wantKind ErrorKind
	}{
		{"rounded face height", s, 20.0000001, -2, ErrNoFace},
		{"zero thickness", s, 20, 0, ErrInvalid},
		{"nan thickness", s, 20, math.NaN(), ErrInvalid},
		{"inward too thick", s, 20, 12, ErrDegenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := k.Hollow(tt.shape, tt.z, tt.thick)
			assert.ErrorIs(t, err, tt.wantKind)
			var kerr *Error
			require.True(t, errors.As(err, &kerr))
			assert.Equal(t, "hollow", kerr.Op)
		})
	}

	b, err := k.Box(r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}})
	require.NoError(t, err)
	defer b.Delete()
	_, err = k.Hollow(b, 1, -1)
	assert.ErrorIs(t, err, ErrUnsupported)

	// Bow tie section.
	bow := revolved(t, k, []r2.Vec{{X: 2, Y: 0}, {X: 10, Y: 0}, {X: 2, Y: 10}, {X: 12, Y: 10}})
	defer bow.Delete()
	_, err = k.Hollow(bow, 10, -1)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestGuardRecoversPanic(t *testing.T) {
	f := func() (err error) {
		defer guard("probe", &err)
		panic("bad index")
	}
	err := f()
	assert.ErrorIs(t, err, ErrInternal)
	var kerr *Error
	require.True(t, errors.As(err, &kerr))
	assert.Contains(t, kerr.Stack(), "goroutine")
	assert.Contains(t, err.Error(), "bad index")
}

func TestMeridian(t *testing.T) {
	got := meridian(cylinderWire)
	assert.Equal(t, []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 20}, {X: 0, Y: 20}, {X: -10, Y: 20}, {X: -10, Y: 0}}, got)
	annulus := []r2.Vec{{X: 5, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 2}, {X: 5, Y: 2}}
	assert.Equal(t, annulus, meridian(annulus))
}

func TestExtendFace(t *testing.T) {
	got := extendFace(cylinderWire, 20, 6)
	assert.Equal(t, []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 20}, {X: 10, Y: 26}, {X: 0, Y: 26}, {X: 0, Y: 20}}, got)
}
