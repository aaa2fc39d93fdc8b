// Package testutil provides reusable assertions for the geometry and filter tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Float is the set of scalar types geometry buffers are built from.
type Float interface {
	~float32 | ~float64
}

// Default tolerances for the test suites.
const (
	DefaultTolerance  = 1e-10
	Float32Tolerance  = 1e-4
	GeometryTolerance = 1e-9
)

const halfDivisor = 2

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
func AssertSymmetric[F Float](t *testing.T, s []F, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/halfDivisor; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, float64(s[i]), float64(s[j]), tolerance,
			"slice not symmetric at i=%d: s[%d]=%v != s[%d]=%v", i, i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf[F Float](t *testing.T, s []F) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertMonotonic verifies that a slice is monotonically non-decreasing.
func AssertMonotonic[F Float](t *testing.T, s []F) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, "not monotonic",
				"s[%d]=%v < s[%d]=%v", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertStrictlyIncreasing verifies that every element is larger than its predecessor.
func AssertStrictlyIncreasing[F Float](t *testing.T, s []F) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] <= s[i-1] {
			return assert.Fail(t, "not strictly increasing",
				"s[%d]=%v <= s[%d]=%v", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertCenterIsMax verifies that the center element is the maximum value.
func AssertCenterIsMax[F Float](t *testing.T, s []F) bool {
	t.Helper()
	if len(s) == 0 {
		return assert.Fail(t, "empty slice")
	}
	centerIdx := len(s) / halfDivisor
	for i, v := range s {
		if v > s[centerIdx] {
			return assert.Fail(t, "center is not max",
				"s[%d]=%v > center s[%d]=%v", i, v, centerIdx, s[centerIdx])
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}

// AssertRadius verifies that the 2D vertex at index i of an interleaved
// (x, y) buffer lies at the given distance from the origin.
func AssertRadius[F Float](t *testing.T, xy []F, i int, want, tolerance float64) bool {
	t.Helper()
	x := float64(xy[i*2])
	y := float64(xy[i*2+1])
	return assert.InDelta(t, want, math.Hypot(x, y), tolerance,
		"vertex %d at (%f, %f) has wrong radius", i, x, y)
}

// Ramp returns n samples rising linearly from start by step.
func Ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
