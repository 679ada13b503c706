package profile

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func vessel() Profile {
	return New(
		Pt(30, 0),
		Pt(30, 3),
		Pt(25, 5),
		CurveTo(35, 50, r2.Vec{X: 22, Y: 20}, r2.Vec{X: 30, Y: 40}),
		CurveTo(40, 80, r2.Vec{X: 38, Y: 55}, r2.Vec{X: 40, Y: 70}),
		Pt(42, 85),
	)
}

func TestEdges(t *testing.T) {
	p := vessel()
	edges := p.Edges()
	require.Len(t, edges, len(p.Points)-1)
	assert.Equal(t, Line, edges[0].Kind)
	assert.Equal(t, Curve, edges[2].Kind)
	assert.Equal(t, p.Points[2].Pos, edges[2].P0)
	assert.Equal(t, p.Points[3].CP1, edges[2].P1)
	assert.Equal(t, p.Points[3].CP2, edges[2].P2)
	assert.Equal(t, 2, p.CurveCount())
	for _, e := range edges {
		assert.Equal(t, e.P0, e.At(0))
		assert.Equal(t, e.P3, e.At(1))
	}
}

func TestCurveBoundsIncludeBulge(t *testing.T) {
	// Endpoints on the axis side of x=5, control points drag the curve left of x=0.
	e := edgeOf(0, Pt(5, 0), CurveTo(5, 10, r2.Vec{X: -10, Y: 3}, r2.Vec{X: -10, Y: 7}))
	bb := e.Bounds()
	assert.Less(t, bb.Min.X, 0.0)
	for _, v := range e.Sample(200) {
		assert.GreaterOrEqual(t, v.X, bb.Min.X-1e-9)
		assert.LessOrEqual(t, v.X, bb.Max.X+1e-9)
	}
	// Maximum leftward excursion of this symmetric curve is at t=0.5.
	assert.InDelta(t, e.At(0.5).X, bb.Min.X, 1e-9)
}

func TestFlatten(t *testing.T) {
	p := vessel()
	poly := p.Flatten(8)
	assert.Len(t, poly, 4+2*8)
	assert.Equal(t, p.Points[0].Pos, poly[0])
	assert.Equal(t, p.Rim().Pos, poly[len(poly)-1])
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name  string
		p     Profile
		field string
	}{
		{"valid", vessel(), ""},
		{"too few points", New(Pt(1, 1)), "points"},
		{"nan", New(Pt(1, 1), Pt(math.NaN(), 2)), "points[1]"},
		{"inf control", New(Pt(1, 1), CurveTo(2, 2, r2.Vec{X: math.Inf(1)}, r2.Vec{})), "points[1]"},
		{"negative", New(Pt(1, 1), Pt(2, -2)), "points[1]"},
		{"interior axis", New(Pt(1, 0), Pt(0, 5), Pt(2, 10)), "points[1]"},
		{"first curve", New(CurveTo(1, 0, r2.Vec{}, r2.Vec{}), Pt(2, 2)), "points[0].kind"},
		{"bad version", Profile{Points: vessel().Points, SchemaVersion: "2.0.0"}, "schemaVersion"},
		{"missing version", Profile{Points: vessel().Points}, "schemaVersion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStructure(tt.p)
			if tt.field == "" {
				assert.Empty(t, errs)
				assert.NoError(t, errs.Err())
				return
			}
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.True(t, IsStructural(errs.Err()))
		})
	}
}

func TestAxisEndpointsAllowed(t *testing.T) {
	p := New(Pt(0, 0), Pt(20, 0), Pt(25, 30), Pt(0, 30))
	assert.Empty(t, ValidateStructure(p))
}

func TestScaleForShrinkage(t *testing.T) {
	p := New(Pt(40, 85), Pt(50, 90))
	p.SeamLines = []SeamLine{{Angle: 0, Label: "a"}}
	s := ScaleForShrinkage(p, 0.13)
	assert.InDelta(t, 45.98, s.Points[0].Pos.X, 0.01)
	assert.InDelta(t, 97.70, s.Points[0].Pos.Y, 0.01)
	assert.Equal(t, p.SeamLines, s.SeamLines)
	// Input untouched.
	assert.Equal(t, 40.0, p.Points[0].Pos.X)
}

func TestShrinkageRoundTrip(t *testing.T) {
	p := vessel()
	for _, r := range []float64{0, 0.05, 0.13, 0.5, 0.9, 0.98} {
		s := ScaleForShrinkage(p, r)
		back := Scale(s, 1-r)
		for i := range p.Points {
			assert.InDelta(t, p.Points[i].Pos.X, back.Points[i].Pos.X, 1e-9)
			assert.InDelta(t, p.Points[i].Pos.Y, back.Points[i].Pos.Y, 1e-9)
			assert.InDelta(t, p.Points[i].CP1.X, back.Points[i].CP1.X, 1e-9)
			assert.InDelta(t, p.Points[i].CP2.Y, back.Points[i].CP2.Y, 1e-9)
		}
	}
}

func TestShrinkageClamp(t *testing.T) {
	assert.Equal(t, 0.99, ClampShrinkage(1))
	assert.Equal(t, 0.0, ClampShrinkage(-3))
	assert.Equal(t, 0.0, ClampShrinkage(math.NaN()))
	assert.False(t, math.IsInf(ShrinkageFactor(1), 0))
	assert.InDelta(t, 100, ShrinkageFactor(1), 1e-9)
}

func TestExtendForSlipWell(t *testing.T) {
	p := vessel()
	ext := ExtendForSlipWell(p, 2.4, 25)
	require.Len(t, ext.Points, len(p.Points)+3)
	rim := p.Rim().Pos
	tail := ext.Points[len(p.Points):]
	assert.Equal(t, r2.Vec{X: rim.X + 2.4, Y: rim.Y}, tail[0].Pos)
	assert.Equal(t, r2.Vec{X: rim.X + 2.4, Y: rim.Y + 25}, tail[1].Pos)
	assert.Equal(t, r2.Vec{X: rim.X, Y: rim.Y + 25}, tail[2].Pos)
	for _, pt := range tail {
		assert.Equal(t, Line, pt.Kind)
	}
	assert.Len(t, p.Points, 6)

	same := ExtendForSlipWell(p, 2.4, 0)
	assert.Equal(t, p.Points, same.Points)
}

const yamlDoc = `schemaVersion: "1.0.0"
units: in
points:
  - {x: 1, y: 0}
  - {x: 1.5, y: 2, curve: {cp1: [1, 1], cp2: [1.5, 1.5]}}
  - {x: 2, y: 3}
`

func TestDecodeYAML(t *testing.T) {
	p, err := Decode(strings.NewReader(yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, Millimetres, p.Units)
	require.Len(t, p.Points, 3)
	assert.InDelta(t, 25.4, p.Points[0].Pos.X, 1e-9)
	assert.Equal(t, Curve, p.Points[1].Kind)
	assert.InDelta(t, 38.1, p.Points[1].CP2.Y, 1e-9)
}

func TestDecodeRejects(t *testing.T) {
	tests := map[string]string{
		"missing cp2":  `{"schemaVersion":"1.0.0","points":[{"x":1,"y":0},{"x":2,"y":2,"curve":{"cp1":[1,1]}}]}`,
		"one point":    `{"schemaVersion":"1.0.0","points":[{"x":1,"y":0}]}`,
		"negative":     `{"schemaVersion":"1.0.0","points":[{"x":1,"y":0},{"x":-2,"y":2}]}`,
		"version 2":    `{"schemaVersion":"2.1.0","points":[{"x":1,"y":0},{"x":2,"y":2}]}`,
		"not a number": `{"schemaVersion":"1.0.0","points":[{"x":"a","y":0},{"x":2,"y":2}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	p := vessel()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, p))
	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, p.Points, got.Points)
}
