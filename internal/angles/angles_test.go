package angles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnitVectors(t *testing.T) {
	table := New(128, -math.Pi/2)
	require.Equal(t, 128, table.Len())

	for i := range table.Len() {
		assert.InDelta(t, 1.0, math.Hypot(table.Cos[i], table.Sin[i]), 1e-12, "entry %d", i)
	}

	// The first entry points at the start angle (straight up in screen space).
	assert.InDelta(t, 0.0, table.Cos[0], 1e-12)
	assert.InDelta(t, -1.0, table.Sin[0], 1e-12)

	// A quarter of the way round is a quarter turn later.
	assert.InDelta(t, 1.0, table.Cos[32], 1e-12)
	assert.InDelta(t, 0.0, table.Sin[32], 1e-12)
}

func TestTable_AngleOfInvertsDirection(t *testing.T) {
	table := New(16, -math.Pi/2)

	for _, theta := range []float64{0, 0.3, math.Pi / 2, math.Pi, 5.5} {
		x, y := table.Direction(theta)
		assert.InDelta(t, theta, table.AngleOf(x*7, y*7), 1e-12, "theta=%v", theta)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{TwoPi, 0},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Normalize(tt.in), 1e-12, "Normalize(%v)", tt.in)
	}
}

func TestNew_Empty(t *testing.T) {
	assert.Equal(t, 0, New(0, 0).Len())
	assert.Equal(t, 0, New(-3, 0).Len())
}
