package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// recognized is the range of schema versions this package reads.
var recognized = mustConstraint("^1")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// StructuralError is a field-level defect that makes a profile unusable.
type StructuralError struct {
	// Field locates the defect, i.e: "points[3].cp1".
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e StructuralError) Error() string { return e.Field + ": " + e.Msg }

// StructuralErrors is the list of defects found by ValidateStructure.
type StructuralErrors []StructuralError

// Err returns nil if there are no errors.
func (es StructuralErrors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

func (es StructuralErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "malformed profile: " + strings.Join(msgs, "; ")
}

// Unwrap exposes individual errors to errors.Is and errors.As.
func (es StructuralErrors) Unwrap() []error {
	errs := make([]error, len(es))
	for i := range es {
		errs[i] = es[i]
	}
	return errs
}

// IsStructural reports whether err carries structural profile errors.
func IsStructural(err error) bool {
	var es StructuralErrors
	return errors.As(err, &es)
}

// ValidateStructure checks point count, finite non-negative coordinates,
// curve control points, axis contact and schema version. It never mutates p.
func ValidateStructure(p Profile) StructuralErrors {
	var errs StructuralErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, StructuralError{Field: field, Msg: fmt.Sprintf(format, args...)})
	}
	if len(p.Points) < MinPoints {
		add("points", "need at least %d points, got %d", MinPoints, len(p.Points))
	}
	last := len(p.Points) - 1
	for i, pt := range p.Points {
		field := fmt.Sprintf("points[%d]", i)
		switch {
		case !pt.finite():
			add(field, "non-finite coordinate")
			continue
		case pt.Pos.X < 0 || pt.Pos.Y < 0:
			add(field, "negative coordinate (%g,%g)", pt.Pos.X, pt.Pos.Y)
		case pt.Pos.X == 0 && i != 0 && i != last:
			add(field, "interior point touches the axis")
		}
		switch pt.Kind {
		case Line, Curve:
		default:
			add(field+".kind", "unknown segment kind %d", pt.Kind)
		}
		if i == 0 && pt.Kind == Curve {
			add(field+".kind", "first point cannot end a curve")
		}
	}
	switch p.Units {
	case "", Millimetres, Inches:
	default:
		add("units", "unknown units %q", p.Units)
	}
	if p.SchemaVersion == "" {
		add("schemaVersion", "missing")
	} else if v, err := semver.NewVersion(p.SchemaVersion); err != nil {
		add("schemaVersion", "invalid version %q: %v", p.SchemaVersion, err)
	} else if !recognized.Check(v) {
		add("schemaVersion", "unsupported version %s, want %s", v, recognized)
	}
	return errs
}
