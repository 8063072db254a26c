package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnMidpoints(t *testing.T) {
	c := Control{0, 1, 3}
	p := OnMidpoints(c)
	require.Len(t, p, 2)
	assert.InDelta(t, 0.5, p[0], 1e-12)
	assert.InDelta(t, 2.0, p[1], 1e-12)
}

func TestOnTlist(t *testing.T) {
	p := Control{1, 3}
	c := OnTlist(p)
	require.Len(t, c, 3)
	assert.InDelta(t, 1.0, c[0], 1e-12)
	assert.InDelta(t, 2.0, c[1], 1e-12)
	assert.InDelta(t, 3.0, c[2], 1e-12)
}

func TestOnMidpointsDegenerate(t *testing.T) {
	assert.Empty(t, OnMidpoints(Control{1}))
	assert.Empty(t, OnTlist(Control{}))
}

func TestShapedRampsToZeroAtBoundaries(t *testing.T) {
	tlist := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	c := Shaped(tlist, 2.0, 2.0)
	require.Len(t, c, len(tlist))
	assert.InDelta(t, 0, c[0], 1e-12)
	assert.InDelta(t, 0, c[len(c)-1], 1e-12)
	assert.InDelta(t, 2.0, c[5], 1e-12, "flat top carries the full amplitude")
	for _, v := range c {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 2.0)
	}
}

func TestMidpoints(t *testing.T) {
	m := Midpoints([]float64{0, 1, 2})
	assert.Equal(t, []float64{0.5, 1.5}, m)
	assert.Nil(t, Midpoints([]float64{1}))
}

func TestCloneIndependence(t *testing.T) {
	c := Control{1, 2}
	d := c.Clone()
	d[0] = 9
	assert.Equal(t, Control{1, 2}, c)
}
