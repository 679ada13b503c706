package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/soypat/mould/mesh"
	"github.com/soypat/mould/profile"
)

// SlipWell is the size of the pouring well stacked on the mould opening.
type SlipWell uint8

const (
	SlipWellNone SlipWell = iota
	SlipWellRegular
	SlipWellTall
)

// Height returns the well height in millimetres: 0, 25 or 50.
func (w SlipWell) Height() float64 {
	switch w {
	case SlipWellRegular:
		return 25
	case SlipWellTall:
		return 50
	}
	return 0
}

func (w SlipWell) String() string {
	switch w {
	case SlipWellNone:
		return "none"
	case SlipWellRegular:
		return "regular"
	case SlipWellTall:
		return "tall"
	}
	return fmt.Sprintf("SlipWell(%d)", uint8(w))
}

// ParseSlipWell parses a case-insensitive well name. The empty string is none.
func ParseSlipWell(s string) (SlipWell, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return SlipWellNone, nil
	case "regular":
		return SlipWellRegular, nil
	case "tall":
		return SlipWellTall, nil
	}
	return SlipWellNone, fmt.Errorf("unknown slip well %q", s)
}

func (w SlipWell) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *SlipWell) UnmarshalText(b []byte) error {
	v, err := ParseSlipWell(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// MinWallThickness is the thinnest wall that prints reliably.
const MinWallThickness = 0.5

// Params are the mould parameters of a generation request. Lengths are in
// millimetres.
type Params struct {
	ShrinkageRate      float64  `json:"shrinkageRate"`
	WallThickness      float64  `json:"wallThickness"`
	SlipWell           SlipWell `json:"slipWellKind"`
	CavityGap          float64  `json:"cavityGap"`
	SplitCount         int      `json:"splitCount"`
	AssemblyClearance  float64  `json:"assemblyClearance"`
	OuterWallThickness float64  `json:"outerWallThickness"`
}

// DefaultParams returns parameters for porcelain with a two piece outer mould.
func DefaultParams() Params {
	return Params{
		ShrinkageRate:      0.13,
		WallThickness:      2.4,
		SlipWell:           SlipWellNone,
		CavityGap:          15,
		SplitCount:         2,
		AssemblyClearance:  0.3,
		OuterWallThickness: 3,
	}
}

// Normalized returns p with every field clamped to its usable range.
// Split counts other than 4 become 2.
func (p Params) Normalized() Params {
	p.ShrinkageRate = profile.ClampShrinkage(p.ShrinkageRate)
	p.WallThickness = atLeast(p.WallThickness, MinWallThickness)
	if p.SlipWell > SlipWellTall {
		p.SlipWell = SlipWellNone
	}
	p.CavityGap = atLeast(p.CavityGap, 0)
	if p.SplitCount != 4 {
		p.SplitCount = 2
	}
	p.AssemblyClearance = atLeast(p.AssemblyClearance, 0)
	p.OuterWallThickness = atLeast(p.OuterWallThickness, 0)
	return p
}

// atLeast returns max(v, lo), mapping NaN to lo.
func atLeast(v, lo float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	return v
}

// Tuning holds dimensions tuned against printed parts rather than derived.
type Tuning struct {
	RingThickness    float64 `json:"ringThickness"`
	RidgeRadius      float64 `json:"ridgeRadius"`
	PourHoleDiameter float64 `json:"pourHoleDiameter"`
	// Deflections bound the distance between mesh and surface per quality.
	StandardDeflection float64 `json:"standardDeflection"`
	HighDeflection     float64 `json:"highDeflection"`
	// CurveSegments is the number of straight segments per profile curve.
	CurveSegments int `json:"curveSegments"`
}

func DefaultTuning() Tuning {
	return Tuning{
		RingThickness:      6,
		RidgeRadius:        1.5,
		PourHoleDiameter:   8,
		StandardDeflection: 1,
		HighDeflection:     0.5,
		CurveSegments:      24,
	}
}

// normalized fills unusable fields from DefaultTuning and keeps the ridge
// within the ring.
func (t Tuning) normalized() Tuning {
	def := DefaultTuning()
	if !(t.RingThickness > 0) {
		t.RingThickness = def.RingThickness
	}
	if !(t.RidgeRadius > 0) {
		t.RidgeRadius = def.RidgeRadius
	}
	t.RidgeRadius = math.Min(t.RidgeRadius, 0.4*t.RingThickness)
	if !(t.PourHoleDiameter > 0) {
		t.PourHoleDiameter = def.PourHoleDiameter
	}
	if !(t.StandardDeflection > 0) {
		t.StandardDeflection = def.StandardDeflection
	}
	if !(t.HighDeflection > 0) {
		t.HighDeflection = def.HighDeflection
	}
	if t.CurveSegments < 1 {
		t.CurveSegments = def.CurveSegments
	}
	return t
}

// Deflection returns the deflection of quality q.
func (t Tuning) Deflection(q mesh.Quality) float64 {
	if q == mesh.High {
		return t.HighDeflection
	}
	return t.StandardDeflection
}
