// Package angles builds the immutable (cos θ, sin θ) lookup tables that place
// ring vertices and waveform buckets around the circle.
package angles

import (
	"math"
)

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// Table holds n evenly spaced unit vectors, starting at Start and
// advancing by 2π/n per entry.
type Table struct {
	Cos   []float64
	Sin   []float64
	Start float64
}

// New builds a table of n directions starting at start radians.
func New(n int, start float64) *Table {
	if n < 0 {
		n = 0
	}
	t := &Table{
		Cos:   make([]float64, n),
		Sin:   make([]float64, n),
		Start: start,
	}
	step := TwoPi / float64(max(n, 1))
	for i := range n {
		theta := start + float64(i)*step
		t.Sin[i], t.Cos[i] = math.Sincos(theta)
	}
	return t
}

// Len returns the number of directions in the table.
func (t *Table) Len() int {
	return len(t.Cos)
}

// Point returns the direction at index i scaled by r.
func (t *Table) Point(i int, r float64) (x, y float64) {
	return t.Cos[i] * r, t.Sin[i] * r
}

// Direction returns the unit vector for an arbitrary angle measured from
// the table's start, in the same orientation as the table entries.
func (t *Table) Direction(theta float64) (x, y float64) {
	y, x = math.Sincos(t.Start + theta)
	return x, y
}

// AngleOf returns the angle of (x, y) measured from the table's start,
// normalized to [0, 2π).
func (t *Table) AngleOf(x, y float64) float64 {
	return Normalize(math.Atan2(y, x) - t.Start)
}

// Normalize wraps theta into [0, 2π).
func Normalize(theta float64) float64 {
	theta = math.Mod(theta, TwoPi)
	if theta < 0 {
		theta += TwoPi
	}
	if theta >= TwoPi {
		theta = 0
	}
	return theta
}
