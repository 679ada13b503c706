// Package engine turns a vessel profile into the solids of a slip casting
// mould: the proof of the fired piece, the hollowed inner mould, and an outer
// containment shell with its base ring, split into pieces for demoulding.
//
// Every kernel object allocated while serving a request is released before
// the request returns. An Engine is not safe for concurrent use.
package engine

import (
	"fmt"

	"github.com/soypat/mould/constraint"
	"github.com/soypat/mould/kernel"
	"github.com/soypat/mould/mesh"
	"github.com/soypat/mould/profile"
	"github.com/soypat/mould/track"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// Part names.
const (
	PartProof      = "proof"
	PartInnerMould = "inner-mould"
	PartOuter      = "outer"
	PartRing       = "ring"
)

// Engine generates moulds on a single kernel.
type Engine struct {
	k           *kernel.Kernel
	tuning      Tuning
	constraints constraint.Options
}

// Option configures an Engine.
type Option func(*Engine)

// WithTuning sets the print-tuned dimensions and mesh deflections.
func WithTuning(t Tuning) Option {
	return func(e *Engine) { e.tuning = t }
}

// WithConstraints sets the options of the advisory profile checks reported
// with every Result.
func WithConstraints(o constraint.Options) Option {
	return func(e *Engine) { e.constraints = o }
}

// New returns an Engine allocating on k. A nil k gets a fresh kernel.
func New(k *kernel.Kernel, opts ...Option) *Engine {
	if k == nil {
		k = kernel.New()
	}
	e := &Engine{k: k, tuning: DefaultTuning(), constraints: constraint.DefaultOptions()}
	for _, opt := range opts {
		opt(e)
	}
	e.tuning = e.tuning.normalized()
	return e
}

// Kernel returns the kernel the engine allocates on.
func (e *Engine) Kernel() *kernel.Kernel { return e.k }

// Tuning returns the engine's effective tuning.
func (e *Engine) Tuning() Tuning { return e.tuning }

// Heap returns the kernel heap statistics.
func (e *Engine) Heap() kernel.Stats { return e.k.Heap() }

// Request is a mould generation request.
type Request struct {
	GenerationID uint64         `json:"generationId"`
	Profile      profile.Profile `json:"profile"`
	Params       Params          `json:"params"`
	Quality      mesh.Quality    `json:"quality"`
}

// Generate runs the whole pipeline for req. The returned error is non-nil
// only when the profile is structurally invalid, in which case nothing is
// allocated on the kernel and the error is a profile.StructuralErrors.
// Kernel failures are reported per part in the Result.
func (e *Engine) Generate(req Request) (*Result, error) {
	if err := profile.ValidateStructure(req.Profile).Err(); err != nil {
		return nil, err
	}
	return track.WithTracking(func(t *track.Tracker) (*Result, error) {
		g := &generation{
			Engine:     e,
			t:          t,
			res:        newResult(req.GenerationID),
			params:     req.Params.Normalized(),
			deflection: e.tuning.Deflection(req.Quality),
			log:        Logger().With(zap.Uint64("generation", req.GenerationID)),
		}
		g.run(req.Profile)
		return g.res, nil
	})
}

// Revolve meshes the unscaled profile revolved about the axis. It is the
// cheap preview path: no validation beyond structure, no hollowing.
func (e *Engine) Revolve(p profile.Profile, q mesh.Quality) (*mesh.Mesh, error) {
	if err := profile.ValidateStructure(p).Err(); err != nil {
		return nil, err
	}
	return track.WithTracking(func(t *track.Tracker) (*mesh.Mesh, error) {
		solid, err := e.revolve(t, profile.ToMillimetres(p))
		if err != nil {
			return nil, err
		}
		return e.k.Tessellate(solid, e.tuning.Deflection(q))
	})
}

// MemoryTest runs req n times and returns the kernel heap size in bytes after
// each run. A leak free pipeline reports a flat series.
func (e *Engine) MemoryTest(req Request, n int) ([]int64, error) {
	sizes := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		if _, err := e.Generate(req); err != nil {
			return sizes, fmt.Errorf("run %d: %w", i, err)
		}
		sizes = append(sizes, e.k.HeapSize())
	}
	return sizes, nil
}

// revolve builds the closed wire of p and revolves it. Both objects are
// tracked by t.
func (e *Engine) revolve(t *track.Tracker, p profile.Profile) (*kernel.Shape, error) {
	wire, err := track.Result[*kernel.Wire](t)(e.k.MakeWire(profileWire(p, e.tuning.CurveSegments)))
	if err != nil {
		return nil, err
	}
	return track.Result[*kernel.Shape](t)(e.k.Revolve(wire))
}

// profileWire closes the half profile back to the axis: after the rim come
// (0, rimY) and (0, footY).
func profileWire(p profile.Profile, curveSegments int) []r2.Vec {
	pts := p.Flatten(curveSegments)
	return append(pts, r2.Vec{X: 0, Y: p.Top()}, r2.Vec{X: 0, Y: p.Bottom()})
}
