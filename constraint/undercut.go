package constraint

import (
	"fmt"

	"github.com/soypat/mould/profile"
)

// Undercut walks the profile from foot to rim and flags every edge above the
// foot zone where the radius falls more than UndercutTolerance below the
// largest radius reached so far. Curves are sampled since their interior can
// dip with monotone endpoints. At most one violation is reported per edge.
func (o Options) Undercut(p profile.Profile) []Violation {
	var vs []Violation
	started := false
	var maxR float64
	n := o.samples()
	for _, e := range p.Edges() {
		samples := e.Sample(2)
		if e.Kind == profile.Curve {
			samples = e.Sample(n)
		}
		reported := false
		for _, s := range samples {
			if s.Y <= o.FootZoneHeight {
				continue
			}
			if !started {
				started = true
				maxR = s.X
				continue
			}
			if s.X < maxR-o.UndercutTolerance && !reported {
				reported = true
				vs = append(vs, Violation{
					Kind:     Undercut,
					Severity: Warning,
					Location: Location{Point: -1, Edge: e.Index, Pos: s},
					Other:    -1,
					Detail:   fmt.Sprintf("radius %.3f below %.3f reached lower down", s.X, maxR),
				})
			}
			if s.X > maxR {
				maxR = s.X
			}
		}
	}
	return vs
}
