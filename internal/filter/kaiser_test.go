package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-audio-ringscope/internal/testutil"
)

const (
	windowTolerance = 1e-10

	testWindowLength11 = 11
	testWindowLength21 = 21
	testWindowLength51 = 51
	testBeta5          = 5.0
	testBeta8          = 8.653728
	testBeta10         = 10.0
)

// TestKaiserWindow_Symmetry verifies that Kaiser window is symmetric.
func TestKaiserWindow_Symmetry(t *testing.T) {
	tests := []struct {
		name   string
		length int
		beta   float64
	}{
		{"length_11_beta_5", testWindowLength11, testBeta5},
		{"length_21_beta_8", testWindowLength21, testBeta8},
		{"length_51_beta_10", testWindowLength51, testBeta10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := KaiserWindow(tt.length, tt.beta)

			assert.Len(t, window, tt.length, "window length mismatch")
			testutil.AssertSymmetric(t, window, windowTolerance)
		})
	}
}

// TestKaiserWindow_CenterTap verifies that center tap is maximum.
func TestKaiserWindow_CenterTap(t *testing.T) {
	window := KaiserWindow(testWindowLength21, testBeta8)

	testutil.AssertCenterIsMax(t, window)
	assert.InDelta(t, 1.0, window[testWindowLength21/2], windowTolerance,
		"center value should be ~1.0")
}

// TestKaiserWindow_EdgeCases tests degenerate lengths.
func TestKaiserWindow_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   int
	}{
		{"zero_length", 0, 0},
		{"negative_length", -1, 0},
		{"length_one", 1, 1},
		{"length_two", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := KaiserWindow(tt.length, testBeta5)
			assert.Len(t, window, tt.want, "window length mismatch")
			testutil.AssertNoNaNOrInf(t, window)
		})
	}
}

// TestMagnitudeDB tests linear to dB conversion.
func TestMagnitudeDB(t *testing.T) {
	const dbTolerance = 0.01

	tests := []struct {
		name string
		mag  float64
		want float64
	}{
		{"magnitude_1", 1.0, 0.0},
		{"magnitude_0_5", 0.5, -6.0206},
		{"magnitude_0_01", 0.01, -40.0},
		{"magnitude_zero", 0.0, -200.0}, // clipped to minimum
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MagnitudeDB(tt.mag), dbTolerance)
		})
	}
}

func BenchmarkKaiserWindow(b *testing.B) {
	for b.Loop() {
		_ = KaiserWindow(testWindowLength51, testBeta8)
	}
}
