// Package profile implements the half-profile of a vessel: an ordered list of
// points, foot to rim, in the XY half plane where X is the radius measured
// from the axis of revolution and Y the height above the base.
//
// Curve control points are attributes of the point that terminates the curve,
// so an edge is fully described by a point and its predecessor.
package profile

import (
	"math"

	"github.com/soypat/mould/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// SchemaVersion is the profile document version written by this package.
	SchemaVersion = "1.0.0"
	// MillimetresPerInch is millimetres per inch (25.4)
	MillimetresPerInch = 25.4
	// MinPoints is the least number of points a profile may have.
	MinPoints = 2
)

// SegmentKind is the kind of edge that ends at a point.
type SegmentKind uint8

const (
	Line SegmentKind = iota
	Curve
)

func (k SegmentKind) String() string {
	switch k {
	case Line:
		return "line"
	case Curve:
		return "curve"
	}
	return "unknown"
}

// Units of a profile's coordinates.
type Units string

const (
	Millimetres Units = "mm"
	Inches      Units = "in"
)

// Point is a vertex of the half-profile cross-section.
type Point struct {
	// Pos is the vertex position. Pos.X is the radius, Pos.Y the height.
	Pos  r2.Vec
	Kind SegmentKind
	// CP1 and CP2 are the absolute control points of the cubic bezier
	// ending at this point. CP2 is nearest this point. Ignored for Line.
	CP1, CP2 r2.Vec
}

// Pt returns a point reached by a straight line.
func Pt(x, y float64) Point {
	return Point{Pos: r2.Vec{X: x, Y: y}, Kind: Line}
}

// CurveTo returns a point reached by a cubic bezier with control points cp1 and cp2.
func CurveTo(x, y float64, cp1, cp2 r2.Vec) Point {
	return Point{Pos: r2.Vec{X: x, Y: y}, Kind: Curve, CP1: cp1, CP2: cp2}
}

// SeamLine is reserved for multi-part mould splitting. Transforms preserve
// seam lines untouched.
type SeamLine struct {
	Angle float64 `json:"angle" yaml:"angle"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// Profile is an ordered sequence of points from foot to rim.
type Profile struct {
	Points        []Point
	SeamLines     []SeamLine
	Units         Units
	SchemaVersion string
}

// New returns a millimetre profile of the current schema version.
func New(points ...Point) Profile {
	return Profile{
		Points:        append([]Point(nil), points...),
		Units:         Millimetres,
		SchemaVersion: SchemaVersion,
	}
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	c := p
	c.Points = append([]Point(nil), p.Points...)
	if p.SeamLines != nil {
		c.SeamLines = append([]SeamLine(nil), p.SeamLines...)
	}
	return c
}

// Edges returns the edges of the profile. Edge i-1 joins point i-1 to point i.
func (p Profile) Edges() []Edge {
	if len(p.Points) < 2 {
		return nil
	}
	edges := make([]Edge, len(p.Points)-1)
	for i := 1; i < len(p.Points); i++ {
		edges[i-1] = edgeOf(i-1, p.Points[i-1], p.Points[i])
	}
	return edges
}

// CurveCount returns the number of curve edges in the profile.
func (p Profile) CurveCount() int {
	n := 0
	for _, pt := range p.Points[min(1, len(p.Points)):] {
		if pt.Kind == Curve {
			n++
		}
	}
	return n
}

// Bounds returns the box containing every point and every curve's extent.
func (p Profile) Bounds() r2.Box {
	if len(p.Points) == 0 {
		return r2.Box{}
	}
	bb := d2.Box{Min: p.Points[0].Pos, Max: p.Points[0].Pos}
	for _, e := range p.Edges() {
		bb = bb.Extend(d2.Box(e.Bounds()))
	}
	return r2.Box(bb)
}

// MaxRadius returns the largest radius reached by the profile, curves included.
func (p Profile) MaxRadius() float64 {
	return p.Bounds().Max.X
}

// Bottom returns the height of the first point.
func (p Profile) Bottom() float64 { return p.Points[0].Pos.Y }

// Top returns the height of the last point. The value is exact, never rounded.
func (p Profile) Top() float64 { return p.Points[len(p.Points)-1].Pos.Y }

// Rim returns the last point of the profile.
func (p Profile) Rim() Point { return p.Points[len(p.Points)-1] }

// Flatten returns the profile as a polyline. Curves are divided into
// curveSegments straight segments. Consecutive duplicate vertices are dropped.
func (p Profile) Flatten(curveSegments int) []r2.Vec {
	if len(p.Points) == 0 {
		return nil
	}
	if curveSegments < 1 {
		curveSegments = 1
	}
	out := []r2.Vec{p.Points[0].Pos}
	for _, e := range p.Edges() {
		n := 1
		if e.Kind == Curve {
			n = curveSegments
		}
		for j := 1; j <= n; j++ {
			v := e.At(float64(j) / float64(n))
			if !d2.EqualWithin(v, out[len(out)-1], 0) {
				out = append(out, v)
			}
		}
	}
	return out
}

// finite reports whether every coordinate of pt is finite.
func (pt Point) finite() bool {
	if pt.Kind == Curve {
		return d2.Finite(pt.Pos) && d2.Finite(pt.CP1) && d2.Finite(pt.CP2)
	}
	return d2.Finite(pt.Pos)
}

func clamp(x, a, b float64) float64 {
	return math.Min(b, math.Max(x, a))
}
