package constraint

import (
	"testing"

	"github.com/soypat/mould/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func vessel() profile.Profile {
	return profile.New(
		profile.Pt(30, 0),
		profile.Pt(30, 3),
		profile.Pt(25, 5),
		profile.CurveTo(35, 50, r2.Vec{X: 22, Y: 20}, r2.Vec{X: 30, Y: 40}),
		profile.CurveTo(40, 80, r2.Vec{X: 38, Y: 55}, r2.Vec{X: 40, Y: 70}),
		profile.Pt(42, 85),
	)
}

func TestVesselIsClean(t *testing.T) {
	vs := Check(vessel())
	assert.Empty(t, vs)
	assert.True(t, Printable(vs))
}

func TestAxisCrossingCurveBulge(t *testing.T) {
	p := profile.New(
		profile.Pt(5, 0),
		profile.CurveTo(5, 10, r2.Vec{X: -10, Y: 3}, r2.Vec{X: -10, Y: 7}),
		profile.Pt(8, 20),
	)
	vs := DetectAxisCrossing(p)
	require.Len(t, vs, 1)
	assert.Equal(t, AxisCrossing, vs[0].Kind)
	assert.Equal(t, 0, vs[0].Location.Edge)
	assert.Equal(t, -1, vs[0].Location.Point)
	assert.Less(t, vs[0].Location.Pos.X, -0.1)
}

func TestAxisCrossingPoint(t *testing.T) {
	p := profile.New(profile.Pt(5, 0), profile.Pt(-1, 4), profile.Pt(8, 20))
	vs := DetectAxisCrossing(p)
	require.Len(t, vs, 1)
	assert.Equal(t, 1, vs[0].Location.Point)

	p.Points[1].Pos.X = -0.05 // within epsilon
	assert.Empty(t, DetectAxisCrossing(p))
}

func TestUndercut(t *testing.T) {
	tests := []struct {
		name string
		p    profile.Profile
		want []int // offending edges
	}{
		{"straight flare", profile.New(profile.Pt(10, 0), profile.Pt(20, 50)), nil},
		{"narrowing neck", profile.New(profile.Pt(10, 0), profile.Pt(30, 40), profile.Pt(20, 60)), []int{1}},
		{"foot zone ignored", profile.New(profile.Pt(30, 0), profile.Pt(30, 3), profile.Pt(25, 5), profile.Pt(40, 20)), nil},
		{"within tolerance", profile.New(profile.Pt(10, 0), profile.Pt(20, 40), profile.Pt(19.7, 60)), nil},
		{
			// Endpoints widen but the curve dips in between.
			"curve dip",
			profile.New(profile.Pt(20, 0), profile.Pt(20, 10),
				profile.CurveTo(22, 40, r2.Vec{X: 5, Y: 20}, r2.Vec{X: 5, Y: 30})),
			[]int{1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := DetectUndercut(tt.p, 5)
			var edges []int
			for _, v := range vs {
				assert.Equal(t, Undercut, v.Kind)
				edges = append(edges, v.Location.Edge)
			}
			assert.Equal(t, tt.want, edges)
		})
	}
}

// Profiles without undercut violations have a non-decreasing radius above
// the foot zone when densely sampled.
func TestUndercutFreeIsMonotonic(t *testing.T) {
	p := vessel()
	require.Empty(t, DetectUndercut(p, 5))
	var maxR float64
	started := false
	for _, e := range p.Edges() {
		for _, s := range e.Sample(50) {
			if s.Y <= 5 {
				continue
			}
			if started {
				assert.GreaterOrEqual(t, s.X, maxR-0.5)
			}
			started = true
			if s.X > maxR {
				maxR = s.X
			}
		}
	}
}

func TestSelfIntersection(t *testing.T) {
	// Zig-zag folding back over itself.
	p := profile.New(
		profile.Pt(10, 0),
		profile.Pt(30, 20),
		profile.Pt(10, 20.5),
		profile.Pt(25, 5),
		profile.Pt(40, 40),
	)
	vs := DetectSelfIntersection(p)
	require.NotEmpty(t, vs)
	for _, v := range vs {
		assert.Equal(t, SelfIntersection, v.Kind)
		assert.GreaterOrEqual(t, v.Other-v.Location.Edge, 2)
	}
	assert.Empty(t, DetectSelfIntersection(vessel()))
}

func TestSelfIntersectionAdjacency(t *testing.T) {
	for _, tc := range []struct {
		name  string
		pts   []profile.Point
		edges [][2]int
	}{
		{
			name: "duplicate point",
			pts:  []profile.Point{profile.Pt(20, 0), profile.Pt(30, 10), profile.Pt(30, 10), profile.Pt(35, 40)},
		},
		{
			name: "repeated duplicates",
			pts: []profile.Point{profile.Pt(20, 0), profile.Pt(30, 10), profile.Pt(30, 10),
				profile.Pt(30, 10), profile.Pt(35, 40), profile.Pt(35, 40)},
		},
		{
			name: "fold after duplicate",
			pts: []profile.Point{profile.Pt(10, 0), profile.Pt(30, 20), profile.Pt(30, 20),
				profile.Pt(10, 20.5), profile.Pt(25, 5), profile.Pt(40, 40)},
			edges: [][2]int{{0, 3}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := profile.New(tc.pts...)
			require.Empty(t, profile.ValidateStructure(p))
			vs := DetectSelfIntersection(p)
			var got [][2]int
			for _, v := range vs {
				assert.Equal(t, SelfIntersection, v.Kind)
				got = append(got, [2]int{v.Location.Edge, v.Other})
			}
			assert.Equal(t, tc.edges, got)
			assert.Equal(t, len(tc.edges) == 0, Printable(vs))
		})
	}
}

func TestSelfIntersectionDegraded(t *testing.T) {
	pts := []profile.Point{profile.Pt(10, 0)}
	for i := 1; i <= 31; i++ {
		y := float64(i)
		pts = append(pts, profile.CurveTo(10, y, r2.Vec{X: 11, Y: y - 0.7}, r2.Vec{X: 11, Y: y - 0.3}))
	}
	vs := DetectSelfIntersection(profile.New(pts...))
	require.Len(t, vs, 1)
	assert.Equal(t, Degraded, vs[0].Kind)
	assert.Equal(t, Info, vs[0].Severity)
}

func TestDetectorsDoNotMutate(t *testing.T) {
	p := vessel()
	before := p.Clone()
	Check(p)
	assert.Equal(t, before, p)
}

func TestEnforcePoint(t *testing.T) {
	p := vessel()
	// Dragging the rim inward above the foot zone is clamped to the widest point below.
	got := EnforcePoint(p, 5, r2.Vec{X: 20, Y: 85})
	assert.Equal(t, r2.Vec{X: 40, Y: 85}, got)
	// Interior point cannot touch the axis.
	got = EnforcePoint(p, 1, r2.Vec{X: -4, Y: -1})
	assert.Equal(t, r2.Vec{X: 0.1, Y: 0}, got)
	// Foot may sit on the axis.
	got = EnforcePoint(p, 0, r2.Vec{X: -4, Y: 0})
	assert.Equal(t, r2.Vec{X: 0, Y: 0}, got)
	assert.Equal(t, 42.0, p.Points[5].Pos.X)
}
