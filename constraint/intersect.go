package constraint

import (
	"fmt"

	"github.com/soypat/mould/internal/d2"
	"github.com/soypat/mould/profile"
	"gonum.org/v1/gonum/spatial/r2"
)

// SelfIntersection tests every pair of non-adjacent edges for intersection.
// Zero-length edges are dropped first so edges joined through a duplicate
// point still count as adjacent and are never compared.
// Above SelfIntersectionLimit curves the quadratic test is skipped and a
// single Degraded info violation is returned instead.
func (o Options) SelfIntersection(p profile.Profile) []Violation {
	if c := p.CurveCount(); c > o.SelfIntersectionLimit {
		return []Violation{{
			Kind:     Degraded,
			Severity: Info,
			Location: Location{Point: -1, Edge: -1},
			Other:    -1,
			Detail:   fmt.Sprintf("self-intersection check skipped for %d curves (limit %d)", c, o.SelfIntersectionLimit),
		}}
	}
	var edges []profile.Edge
	for _, e := range p.Edges() {
		if !degenerate(e) {
			edges = append(edges, e)
		}
	}
	segs := make([][]d2.Segment, len(edges))
	boxes := make([]d2.Box, len(edges))
	for i, e := range edges {
		segs[i] = e.Segments(o.samples() - 1)
		boxes[i] = d2.Box(e.Bounds())
	}
	var vs []Violation
	for i := range edges {
		for j := i + 2; j < len(edges); j++ {
			if !boxes[i].Overlaps(boxes[j]) {
				continue
			}
			if at, ok := intersectAny(segs[i], segs[j]); ok {
				vs = append(vs, Violation{
					Kind:     SelfIntersection,
					Severity: Error,
					Location: Location{Point: -1, Edge: edges[i].Index, Pos: at},
					Other:    edges[j].Index,
					Detail:   fmt.Sprintf("edge %d crosses edge %d", edges[i].Index, edges[j].Index),
				})
			}
		}
	}
	return vs
}

func degenerate(e profile.Edge) bool {
	return e.P0 == e.P3 && e.P1 == e.P0 && e.P2 == e.P0
}

func intersectAny(a, b []d2.Segment) (at r2.Vec, ok bool) {
	for _, sa := range a {
		for _, sb := range b {
			if at, ok = sa.Intersect(sb); ok {
				return at, true
			}
		}
	}
	return at, false
}
