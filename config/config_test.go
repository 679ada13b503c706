package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/mould/constraint"
	"github.com/soypat/mould/engine"
	"github.com/soypat/mould/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	p, err := c.EngineParams()
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultParams(), p)
	assert.Equal(t, engine.DefaultTuning(), c.Tuning())
	assert.Equal(t, constraint.DefaultOptions(), c.ConstraintOptions())
	q, err := c.Quality()
	require.NoError(t, err)
	assert.Equal(t, mesh.Standard, q)
	assert.Len(t, c.EngineOptions(), 2)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mould.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
params:
  wall_thickness: 3.2
  slip_well: tall
  split_count: 4
ring:
  ridge_radius: 2
mesh:
  quality: high
`)
	t.Setenv("MOULD_PARAMS_WALL_THICKNESS", "4")
	t.Setenv("MOULD_CONSTRAINT_FOOT_ZONE_HEIGHT", "8")
	c, err := Load(path)
	require.NoError(t, err)
	p, err := c.EngineParams()
	require.NoError(t, err)
	assert.Equal(t, 4.0, p.WallThickness, "environment overrides the file")
	assert.Equal(t, engine.SlipWellTall, p.SlipWell)
	assert.Equal(t, 4, p.SplitCount)
	assert.Equal(t, 2.0, c.Tuning().RidgeRadius)
	assert.Equal(t, 8.0, c.ConstraintOptions().FootZoneHeight)
	q, err := c.Quality()
	require.NoError(t, err)
	assert.Equal(t, mesh.High, q)
}

func TestClayBody(t *testing.T) {
	t.Setenv("MOULD_PARAMS_CLAY_BODY", "earthenware")
	c, err := Load("")
	require.NoError(t, err)
	p, err := c.EngineParams()
	require.NoError(t, err)
	assert.Equal(t, 0.08, p.ShrinkageRate)
}

func TestInvalid(t *testing.T) {
	path := writeConfig(t, `
params:
  slip_well: bucket
  split_count: 3
  clay_body: unobtainium
mesh:
  quality: ultra
log:
  level: chatty
`)
	_, err := Load(path)
	require.Error(t, err)
	for _, key := range []string{"params.slip_well", "params.split_count", "params.clay_body", "mesh.quality", "log.level"} {
		assert.Contains(t, err.Error(), key)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	l, err := c.Logger(false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.DebugLevel), "debug disabled at info level")
	l, err = c.Logger(true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}
