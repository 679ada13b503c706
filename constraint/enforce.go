package constraint

import (
	"math"

	"github.com/soypat/mould/profile"
	"gonum.org/v1/gonum/spatial/r2"
)

// EnforcePoint returns proposed clamped so that moving point index of p there
// keeps the profile right of the axis, above the base and, above the foot
// zone, at least as wide as every point below it. Interior points are kept at
// least AxisEpsilon from the axis. p is not modified.
func (o Options) EnforcePoint(p profile.Profile, index int, proposed r2.Vec) r2.Vec {
	if index < 0 || index >= len(p.Points) {
		return proposed
	}
	v := proposed
	if math.IsNaN(v.X) || math.IsNaN(v.Y) {
		return p.Points[index].Pos
	}
	v.Y = math.Max(v.Y, 0)
	minX := 0.0
	if index != 0 && index != len(p.Points)-1 {
		minX = o.AxisEpsilon
	}
	if v.Y > o.FootZoneHeight {
		for _, pt := range p.Points[:index] {
			if pt.Pos.Y > o.FootZoneHeight {
				minX = math.Max(minX, pt.Pos.X)
			}
		}
	}
	v.X = math.Max(v.X, minX)
	return v
}

// EnforcePoint clamps with default options. See Options.EnforcePoint.
func EnforcePoint(p profile.Profile, index int, proposed r2.Vec) r2.Vec {
	return DefaultOptions().EnforcePoint(p, index, proposed)
}
