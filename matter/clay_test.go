package matter

import (
	"testing"

	"github.com/soypat/mould/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	c, err := Lookup(" Porcelain")
	require.NoError(t, err)
	assert.Equal(t, 0.13, c.Shrinkage())
	_, err = Lookup("bone china")
	assert.ErrorContains(t, err, "earthenware")
	assert.Equal(t, []string{"earthenware", "porcelain", "stoneware"}, Names())
}

func TestScale(t *testing.T) {
	p := profile.New(profile.Pt(40, 85), profile.Pt(42, 90))
	s := Porcelain.Scale(p)
	assert.InDelta(t, 45.98, s.Points[0].Pos.X, 0.01)
	assert.InDelta(t, 45.98, Porcelain.WetDim(40), 0.01)
	assert.Equal(t, 0.99, Custom("x", 4).Shrinkage())
}
