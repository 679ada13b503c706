package profile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gonum.org/v1/gonum/spatial/r2"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("profile.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("adding profile schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("profile.schema.json")
	})
	return compiledSchema, schemaErr
}

type document struct {
	SchemaVersion string     `json:"schemaVersion" yaml:"schemaVersion"`
	Units         Units      `json:"units,omitempty" yaml:"units,omitempty"`
	Points        []docPoint `json:"points" yaml:"points"`
	SeamLines     []SeamLine `json:"seamLines,omitempty" yaml:"seamLines,omitempty"`
}

type docPoint struct {
	X     float64   `json:"x" yaml:"x"`
	Y     float64   `json:"y" yaml:"y"`
	Curve *docCurve `json:"curve,omitempty" yaml:"curve,omitempty"`
}

type docCurve struct {
	CP1 [2]float64 `json:"cp1" yaml:"cp1,flow"`
	CP2 [2]float64 `json:"cp2" yaml:"cp2,flow"`
}

// Decode reads a YAML or JSON profile document, checks it against the
// profile schema and structural rules and returns it in millimetres.
func Decode(r io.Reader) (Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}
	// JSON is valid YAML.
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return Profile{}, fmt.Errorf("parsing profile: %w", err)
	}
	return Unmarshal(js)
}

// Unmarshal decodes a JSON profile document. See Decode.
func Unmarshal(js []byte) (Profile, error) {
	var raw any
	if err := json.Unmarshal(js, &raw); err != nil {
		return Profile{}, fmt.Errorf("parsing profile: %w", err)
	}
	schema, err := documentSchema()
	if err != nil {
		return Profile{}, err
	}
	if err := schema.Validate(raw); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return Profile{}, formatSchemaError(verr)
		}
		return Profile{}, fmt.Errorf("profile validation failed: %w", err)
	}
	var doc document
	if err := json.Unmarshal(js, &doc); err != nil {
		return Profile{}, fmt.Errorf("decoding profile: %w", err)
	}
	p := doc.profile()
	if errs := ValidateStructure(p); len(errs) > 0 {
		return Profile{}, errs
	}
	return ToMillimetres(p), nil
}

// Encode writes p to w as a YAML profile document.
func Encode(w io.Writer, p Profile) error {
	b, err := yaml.Marshal(newDocument(p))
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// MarshalJSON encodes p as a JSON profile document.
func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(newDocument(p))
}

// UnmarshalJSON decodes and validates a JSON profile document into p.
func (p *Profile) UnmarshalJSON(b []byte) error {
	got, err := Unmarshal(b)
	if err != nil {
		return err
	}
	*p = got
	return nil
}

func newDocument(p Profile) document {
	doc := document{
		SchemaVersion: p.SchemaVersion,
		Units:         p.Units,
		Points:        make([]docPoint, len(p.Points)),
		SeamLines:     p.SeamLines,
	}
	if doc.SchemaVersion == "" {
		doc.SchemaVersion = SchemaVersion
	}
	for i, pt := range p.Points {
		doc.Points[i] = docPoint{X: pt.Pos.X, Y: pt.Pos.Y}
		if pt.Kind == Curve {
			doc.Points[i].Curve = &docCurve{
				CP1: [2]float64{pt.CP1.X, pt.CP1.Y},
				CP2: [2]float64{pt.CP2.X, pt.CP2.Y},
			}
		}
	}
	return doc
}

func (doc document) profile() Profile {
	p := Profile{
		Points:        make([]Point, len(doc.Points)),
		SeamLines:     doc.SeamLines,
		Units:         doc.Units,
		SchemaVersion: doc.SchemaVersion,
	}
	if p.Units == "" {
		p.Units = Millimetres
	}
	for i, dp := range doc.Points {
		if dp.Curve == nil {
			p.Points[i] = Pt(dp.X, dp.Y)
			continue
		}
		p.Points[i] = CurveTo(dp.X, dp.Y,
			r2.Vec{X: dp.Curve.CP1[0], Y: dp.Curve.CP1[1]},
			r2.Vec{X: dp.Curve.CP2[0], Y: dp.Curve.CP2[1]})
	}
	return p
}

func formatSchemaError(err *jsonschema.ValidationError) error {
	var messages []string
	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)
	if len(messages) == 0 {
		return errors.New("profile validation failed")
	}
	return fmt.Errorf("profile validation failed:\n    - %s", strings.Join(messages, "\n    - "))
}
