package engine

import (
	"math"

	"github.com/soypat/mould/constraint"
	"github.com/soypat/mould/kernel"
	"github.com/soypat/mould/mesh"
	"github.com/soypat/mould/profile"
	"github.com/soypat/mould/track"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// generation is the state of one Generate call.
type generation struct {
	*Engine
	t          *track.Tracker
	res        *Result
	params     Params
	deflection float64
	log        *zap.Logger
	solids     []solid
}

// solid is a finished part awaiting tessellation.
type solid struct {
	name  string
	kind  mesh.Kind
	shape *kernel.Shape
}

// dims are the derived dimensions of the outer mould and ring.
type dims struct {
	innerR, outerR  float64 // outer shell
	ringIn, ringOut float64
	ringBottom      float64
	ringTop         float64
	floor           float64 // underside of the outer shell's base
	top             float64
}

func (g *generation) enter(s State) {
	g.log.Debug("stage", zap.Stringer("state", s))
	if g.res.State != Failed {
		g.res.State = s
	}
}

func (g *generation) fail(name string, kind mesh.Kind, stage State, err error) {
	pe := g.res.fail(name, kind, stage, err)
	g.log.Warn("part failed", zap.String("part", name), zap.Stringer("stage", stage), zap.Error(pe.Err))
}

func (g *generation) keep(name string, kind mesh.Kind, s *kernel.Shape) {
	g.solids = append(g.solids, solid{name: name, kind: kind, shape: s})
}

// track adds the result of a kernel call returning a shape to the tracker.
func (g *generation) track(s *kernel.Shape, err error) (*kernel.Shape, error) {
	return track.Result[*kernel.Shape](g.t)(s, err)
}

func (g *generation) run(src profile.Profile) {
	p := g.params
	g.enter(Scaling)
	src = profile.ToMillimetres(src)
	// Violations are advisory, generation proceeds regardless.
	g.res.Violations = g.constraints.Check(src)
	if len(g.res.Violations) > 0 {
		g.log.Debug("profile violations", zap.Int("count", len(g.res.Violations)),
			zap.Bool("printable", constraint.Printable(g.res.Violations)))
	}
	scaled := profile.ScaleForShrinkage(src, p.ShrinkageRate)
	extended := profile.ExtendForSlipWell(scaled, p.WallThickness, p.SlipWell.Height())

	g.enter(Revolving)
	if proof, err := g.revolve(g.t, src); err != nil {
		g.fail(PartProof, mesh.Proof, Revolving, err)
	} else {
		g.keep(PartProof, mesh.Proof, proof)
	}
	mould, err := g.revolve(g.t, extended)
	if err != nil {
		g.fail(PartInnerMould, mesh.InnerMould, Revolving, err)
	}

	g.enter(Hollowing)
	if mould != nil {
		// The wall grows outward so the cavity is the scaled vessel surface.
		shell, err := g.track(g.k.Hollow(mould, extended.Top(), -p.WallThickness))
		if err != nil {
			g.fail(PartInnerMould, mesh.InnerMould, Hollowing, err)
		} else {
			g.keep(PartInnerMould, mesh.InnerMould, shell)
		}
	}

	if p.OuterWallThickness > 0 {
		g.enter(Splitting)
		d := g.dimensions(extended)
		g.outer(d)
		g.ring(d)
	}

	g.enter(Meshing)
	for _, s := range g.solids {
		m, err := g.k.Tessellate(s.shape, g.deflection)
		if err != nil {
			g.fail(s.name, s.kind, Meshing, err)
			continue
		}
		g.res.add(s.name, s.kind, m)
	}
	g.enter(Done)
	g.log.Debug("generated", zap.Int("parts", len(g.res.Parts)), zap.Stringer("state", g.res.State))
}

func (g *generation) dimensions(ext profile.Profile) dims {
	p := g.params
	bb := ext.Bounds()
	d := dims{
		innerR: ext.MaxRadius() + p.WallThickness + p.CavityGap,
		top:    bb.Max.Y,
	}
	d.outerR = d.innerR + p.OuterWallThickness
	// The hollowed wall also grows below the profile.
	d.ringTop = bb.Min.Y - p.WallThickness
	d.ringBottom = d.ringTop - g.tuning.RingThickness
	d.floor = d.ringBottom - p.OuterWallThickness
	d.ringIn = ext.Points[0].Pos.X + p.WallThickness + p.AssemblyClearance
	d.ringOut = d.innerR
	return d
}

// outer revolves the containment shell, closed by a floor under the ring,
// and splits it.
func (g *generation) outer(d dims) {
	shell, err := g.revolveSection([]r2.Vec{
		{X: 0, Y: d.floor}, {X: d.outerR, Y: d.floor}, {X: d.outerR, Y: d.top},
		{X: d.innerR, Y: d.top}, {X: d.innerR, Y: d.ringBottom}, {X: 0, Y: d.ringBottom},
	})
	if err != nil {
		g.fail(PartOuter, mesh.Outer, Splitting, err)
		return
	}
	for _, pc := range g.pieces() {
		name := PartOuter + "-" + pc.name
		s, err := g.cutPiece(shell, pc, d)
		if err != nil {
			g.fail(name, mesh.Outer, Splitting, err)
			continue
		}
		g.keep(name, mesh.Outer, s)
	}
}

// ring builds the base ring, cuts the pour hole before splitting and adds
// the ridges and grooves that key neighbouring pieces.
func (g *generation) ring(d dims) {
	if d.ringIn >= d.ringOut {
		g.fail(PartRing, mesh.Ring, Splitting, &kernel.Error{Op: "ring", Kind: kernel.ErrDegenerate,
			Detail: "inner mould footprint reaches the outer shell"})
		return
	}
	ring, err := g.revolveRect(d.ringIn, d.ringOut, d.ringBottom, d.ringTop)
	if err == nil {
		ring, err = g.pourHole(ring, d)
	}
	if err != nil {
		g.fail(PartRing, mesh.Ring, Splitting, err)
		return
	}
	for _, pc := range g.pieces() {
		name := PartRing + "-" + pc.name
		s, err := g.cutPiece(ring, pc, d)
		if err == nil {
			s, err = g.key(s, pc, d)
		}
		if err != nil {
			g.fail(name, mesh.Ring, Splitting, err)
			continue
		}
		g.keep(name, mesh.Ring, s)
	}
}

// revolveRect revolves the rectangle [r0,r1]x[z0,z1] into an annulus.
func (g *generation) revolveRect(r0, r1, z0, z1 float64) (*kernel.Shape, error) {
	return g.revolveSection([]r2.Vec{{X: r0, Y: z0}, {X: r1, Y: z0}, {X: r1, Y: z1}, {X: r0, Y: z1}})
}

func (g *generation) revolveSection(pts []r2.Vec) (*kernel.Shape, error) {
	wire, err := track.Result[*kernel.Wire](g.t)(g.k.MakeWire(pts))
	if err != nil {
		return nil, err
	}
	return g.track(g.k.Revolve(wire))
}

func (g *generation) pourHole(ring *kernel.Shape, d dims) (*kernel.Shape, error) {
	r := g.tuning.PourHoleDiameter / 2
	axis := r2.Scale(ringMid(d), seams[0])
	hole, err := g.track(g.k.Cylinder(axis, r, d.ringBottom-1, d.ringTop+1))
	if err != nil {
		return nil, err
	}
	return g.track(g.k.Cut(ring, hole))
}

func ringMid(d dims) float64 { return (d.ringIn + d.ringOut) / 2 }

// extent returns a length exceeding the model by a wide margin, so split
// boxes always cut clean through.
func extent(d dims) float64 {
	return 10 * math.Max(d.outerR, math.Max(math.Abs(d.top), math.Abs(d.floor)))
}
