package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/mould/config"
	"github.com/soypat/mould/constraint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cupYAML = `schemaVersion: "1.0.0"
points:
  - {x: 20, y: 0}
  - {x: 30, y: 10}
  - {x: 35, y: 40}
`

const zigzagYAML = `schemaVersion: "1.0.0"
points:
  - {x: 10, y: 0}
  - {x: 30, y: 20}
  - {x: 10, y: 20.5}
  - {x: 25, y: 5}
  - {x: 40, y: 40}
`

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func coarseConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("MOULD_MESH_STANDARD_DEFLECTION", "3")
	c, err := config.Load("")
	require.NoError(t, err)
	return c
}

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runValidate(&out, writeProfile(t, cupYAML), constraint.DefaultOptions(), false))
	assert.Contains(t, out.String(), "3 points, 0 curves, 0 violations")

	out.Reset()
	err := runValidate(&out, writeProfile(t, zigzagYAML), constraint.DefaultOptions(), true)
	assert.ErrorContains(t, err, "blocking violations")
	var report struct {
		Violations []json.RawMessage `json:"violations"`
		Printable  bool              `json:"printable"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.NotEmpty(t, report.Violations)
	assert.False(t, report.Printable)

	err = runValidate(&out, writeProfile(t, "schemaVersion: \"1.0.0\"\npoints: [{x: 1, y: 1}]\n"), constraint.DefaultOptions(), false)
	assert.Error(t, err)
}

func TestRunGenerate(t *testing.T) {
	c := coarseConfig(t)
	var out bytes.Buffer
	require.NoError(t, runGenerate(&out, writeProfile(t, cupYAML), c, false))
	var res struct {
		Parts map[string]struct {
			Kind     string    `json:"kind"`
			Indices  []uint32  `json:"indices"`
			Vertices []float32 `json:"vertices"`
		} `json:"parts"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "done", res.State)
	assert.Len(t, res.Parts, 6)
	assert.Equal(t, "inner-mould", res.Parts["inner-mould"].Kind)
	assert.NotEmpty(t, res.Parts["ring-front"].Indices)

	out.Reset()
	require.NoError(t, runGenerate(&out, writeProfile(t, zigzagYAML), c, true))
	assert.Contains(t, out.String(), "inner-mould-error")
	assert.Contains(t, out.String(), "state: failed")
}

func TestRunHeap(t *testing.T) {
	c := coarseConfig(t)
	var out bytes.Buffer
	require.NoError(t, runHeap(&out, writeProfile(t, cupYAML), c, 2))
	assert.Contains(t, out.String(), "run  2: 0 bytes live")
}

func TestSetupBindsFlags(t *testing.T) {
	fs := generateCmd.Flags()
	require.NoError(t, fs.Set("split-count", "4"))
	require.NoError(t, fs.Set("slip-well", "tall"))
	t.Cleanup(func() {
		fs.Lookup("split-count").Changed = false
		fs.Lookup("slip-well").Changed = false
	})
	require.NoError(t, setup(fs))
	p, err := cfg.EngineParams()
	require.NoError(t, err)
	assert.Equal(t, 4, p.SplitCount)
	assert.Equal(t, "tall", p.SlipWell.String())
}
