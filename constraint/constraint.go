// Package constraint detects geometric defects of a half-profile that make a
// mould impossible to print or to release: axis crossing, undercuts and
// self-intersection. Detection never mutates a profile. See EnforcePoint for
// the clamping used while a point is dragged.
package constraint

import (
	"fmt"

	"github.com/soypat/mould/profile"
	"gonum.org/v1/gonum/spatial/r2"
)

// Kind of a violation.
type Kind uint8

const (
	AxisCrossing Kind = iota
	Undercut
	SelfIntersection
	// Degraded reports a check that was skipped.
	Degraded
)

func (k Kind) String() string {
	switch k {
	case AxisCrossing:
		return "axis-crossing"
	case Undercut:
		return "undercut"
	case SelfIntersection:
		return "self-intersection"
	case Degraded:
		return "degraded"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type Severity uint8

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Location of a violation. Point is the index of the offending point, or -1
// when the violation lies inside an edge. Edge is -1 for profile-wide reports.
type Location struct {
	Point int    `json:"point"`
	Edge  int    `json:"edge"`
	Pos   r2.Vec `json:"pos"`
}

// Violation is an advisory defect meant for visualization.
type Violation struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Location Location `json:"location"`
	// Other is the second edge of a self-intersection, -1 otherwise.
	Other  int    `json:"other"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s at (%.2f,%.2f): %s", v.Severity, v.Kind, v.Location.Pos.X, v.Location.Pos.Y, v.Detail)
}

// Options tunes detection. The zero value is not useful; start from DefaultOptions.
type Options struct {
	// FootZoneHeight is the height below which undercuts are ignored.
	FootZoneHeight float64
	// UndercutTolerance absorbs radius decrease due to floating point and tessellation noise.
	UndercutTolerance float64
	// AxisEpsilon is how far left of the axis a profile may reach.
	AxisEpsilon float64
	// CurveSamples is the number of samples taken along each curve.
	CurveSamples int
	// SelfIntersectionLimit is the curve count above which the pairwise
	// self-intersection test is skipped.
	SelfIntersectionLimit int
}

// DefaultOptions returns the options used by the package level functions.
func DefaultOptions() Options {
	return Options{
		FootZoneHeight:        5,
		UndercutTolerance:     0.5,
		AxisEpsilon:           0.1,
		CurveSamples:          20,
		SelfIntersectionLimit: 30,
	}
}

func (o Options) samples() int {
	if o.CurveSamples < 2 {
		return 2
	}
	return o.CurveSamples
}

// DetectAxisCrossing reports points and curve extents left of the axis.
func DetectAxisCrossing(p profile.Profile) []Violation {
	return DefaultOptions().AxisCrossing(p)
}

// DetectUndercut reports edges above footZoneHeight whose radius decreases.
func DetectUndercut(p profile.Profile, footZoneHeight float64) []Violation {
	o := DefaultOptions()
	o.FootZoneHeight = footZoneHeight
	return o.Undercut(p)
}

// DetectSelfIntersection reports intersecting non-adjacent edges.
func DetectSelfIntersection(p profile.Profile) []Violation {
	return DefaultOptions().SelfIntersection(p)
}

// Check runs every detector with default options.
func Check(p profile.Profile) []Violation {
	return DefaultOptions().Check(p)
}

// Check runs every detector and returns the violations in detector order.
func (o Options) Check(p profile.Profile) []Violation {
	var vs []Violation
	vs = append(vs, o.AxisCrossing(p)...)
	vs = append(vs, o.Undercut(p)...)
	vs = append(vs, o.SelfIntersection(p)...)
	return vs
}

// Printable reports whether vs contains nothing above Info severity.
func Printable(vs []Violation) bool {
	for _, v := range vs {
		if v.Severity > Info {
			return false
		}
	}
	return true
}

// AxisCrossing flags every point and every curve bounding box with x < -AxisEpsilon.
// Curves may bulge left of the axis with both endpoints valid.
func (o Options) AxisCrossing(p profile.Profile) []Violation {
	var vs []Violation
	for i, pt := range p.Points {
		if pt.Pos.X < -o.AxisEpsilon {
			vs = append(vs, Violation{
				Kind:     AxisCrossing,
				Severity: Error,
				Location: Location{Point: i, Edge: -1, Pos: pt.Pos},
				Other:    -1,
				Detail:   fmt.Sprintf("point radius %.3f is left of the axis", pt.Pos.X),
			})
		}
	}
	for _, e := range p.Edges() {
		if e.Kind != profile.Curve {
			continue
		}
		bb := e.Bounds()
		if bb.Min.X >= -o.AxisEpsilon || e.P0.X < -o.AxisEpsilon || e.P3.X < -o.AxisEpsilon {
			continue // endpoints already reported.
		}
		vs = append(vs, Violation{
			Kind:     AxisCrossing,
			Severity: Error,
			Location: Location{Point: -1, Edge: e.Index, Pos: leftmost(e, o.samples())},
			Other:    -1,
			Detail:   fmt.Sprintf("curve reaches radius %.3f left of the axis", bb.Min.X),
		})
	}
	return vs
}

func leftmost(e profile.Edge, n int) r2.Vec {
	pts := e.Sample(4 * n)
	best := pts[0]
	for _, v := range pts[1:] {
		if v.X < best.X {
			best = v
		}
	}
	return best
}
