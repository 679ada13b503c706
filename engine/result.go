package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soypat/mould/constraint"
	"github.com/soypat/mould/kernel"
	"github.com/soypat/mould/mesh"
)

// State is the stage a generation request has reached.
type State uint8

const (
	Scaling State = iota
	Revolving
	Hollowing
	Splitting
	Meshing
	Done
	// Failed is terminal: at least one part failed. Parts that succeeded are
	// still present in the Result.
	Failed
)

func (s State) String() string {
	switch s {
	case Scaling:
		return "scaling"
	case Revolving:
		return "revolving"
	case Hollowing:
		return "hollowing"
	case Splitting:
		return "splitting"
	case Meshing:
		return "meshing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ErrorSuffix is appended to a part name to form the key of its error.
const ErrorSuffix = "-error"

// PartError describes why a part could not be produced.
type PartError struct {
	Part  string
	Stage State
	Err   error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Part, e.Stage, e.Err)
}

func (e *PartError) Unwrap() error { return e.Err }

// Kind returns the kernel error kind of e, or the empty string when the
// failure did not come from the kernel.
func (e *PartError) Kind() string {
	var kind kernel.ErrorKind
	if errors.As(e.Err, &kind) {
		return kind.Error()
	}
	return ""
}

func (e *PartError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Part    string `json:"part"`
		Stage   State  `json:"stage"`
		Kind    string `json:"kind,omitempty"`
		Message string `json:"message"`
	}{e.Part, e.Stage, e.Kind(), e.Err.Error()})
}

// Part is one named entry of a Result. Exactly one of Mesh and Err is set.
type Part struct {
	Name string    `json:"-"`
	Kind mesh.Kind `json:"kind"`
	*mesh.Mesh
	Err *PartError `json:"error,omitempty"`
}

// Result holds the parts produced for one generation request, keyed by part
// name. Failed parts are keyed by their name plus ErrorSuffix.
type Result struct {
	GenerationID uint64          `json:"generationId"`
	Parts        map[string]Part `json:"parts"`
	State        State           `json:"state"`
	// FailedAt is the stage of the first failure when State is Failed.
	FailedAt State `json:"failedAt,omitempty"`
	// Violations are the advisory constraint violations of the profile.
	Violations []constraint.Violation `json:"violations,omitempty"`
}

func newResult(id uint64) *Result {
	return &Result{GenerationID: id, Parts: make(map[string]Part)}
}

// Mesh returns the mesh of the named part or nil.
func (r *Result) Mesh(name string) *mesh.Mesh {
	return r.Parts[name].Mesh
}

// Err returns the error of the named part or nil.
func (r *Result) Err(name string) *PartError {
	return r.Parts[name+ErrorSuffix].Err
}

// Errs returns every part error.
func (r *Result) Errs() []*PartError {
	var errs []*PartError
	for _, p := range r.Parts {
		if p.Err != nil {
			errs = append(errs, p.Err)
		}
	}
	return errs
}

func (r *Result) add(name string, kind mesh.Kind, m *mesh.Mesh) {
	r.Parts[name] = Part{Name: name, Kind: kind, Mesh: m}
}

func (r *Result) fail(name string, kind mesh.Kind, stage State, err error) *PartError {
	pe := &PartError{Part: name, Stage: stage, Err: err}
	r.Parts[name+ErrorSuffix] = Part{Name: name + ErrorSuffix, Kind: kind, Err: pe}
	if r.State != Failed {
		r.State = Failed
		r.FailedAt = stage
	}
	return pe
}

// Transfer moves every mesh buffer of r into a new Result and leaves the
// meshes of r empty.
func (r *Result) Transfer() *Result {
	out := *r
	out.Parts = make(map[string]Part, len(r.Parts))
	for name, p := range r.Parts {
		if p.Mesh != nil {
			p.Mesh = p.Mesh.Transfer()
		}
		out.Parts[name] = p
	}
	return &out
}
