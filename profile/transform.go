package profile

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// MaxShrinkage is the largest shrinkage rate accepted by ScaleForShrinkage.
const MaxShrinkage = 0.99

// ClampShrinkage limits rate to [0, MaxShrinkage]. NaN clamps to 0.
func ClampShrinkage(rate float64) float64 {
	if rate != rate {
		return 0
	}
	return clamp(rate, 0, MaxShrinkage)
}

// ShrinkageFactor returns the enlargement 1/(1-rate) with rate clamped.
func ShrinkageFactor(rate float64) float64 {
	return 1 / (1 - ClampShrinkage(rate))
}

// ScaleForShrinkage returns a copy of p with every coordinate, control points
// included, multiplied by 1/(1-rate) so the fired piece matches p.
func ScaleForShrinkage(p Profile, rate float64) Profile {
	return Scale(p, ShrinkageFactor(rate))
}

// Scale returns a copy of p with every coordinate multiplied by k. Seam lines
// and metadata are preserved.
func Scale(p Profile, k float64) Profile {
	out := p.Clone()
	for i := range out.Points {
		pt := &out.Points[i]
		pt.Pos = r2.Scale(k, pt.Pos)
		if pt.Kind == Curve {
			pt.CP1 = r2.Scale(k, pt.CP1)
			pt.CP2 = r2.Scale(k, pt.CP2)
		}
	}
	return out
}

// ExtendForSlipWell returns a copy of p with a thin-walled open cylinder of
// height wellHeight stacked on the rim: outward by wallThickness, upward, and
// back inward. Profiles are returned unchanged (but copied) when wellHeight <= 0.
func ExtendForSlipWell(p Profile, wallThickness, wellHeight float64) Profile {
	out := p.Clone()
	if wellHeight <= 0 || len(out.Points) == 0 {
		return out
	}
	rim := out.Rim().Pos
	out.Points = append(out.Points,
		Pt(rim.X+wallThickness, rim.Y),
		Pt(rim.X+wallThickness, rim.Y+wellHeight),
		Pt(rim.X, rim.Y+wellHeight),
	)
	return out
}

// ToMillimetres returns p expressed in millimetres.
func ToMillimetres(p Profile) Profile {
	if p.Units != Inches {
		out := p.Clone()
		out.Units = Millimetres
		return out
	}
	out := Scale(p, MillimetresPerInch)
	out.Units = Millimetres
	return out
}
