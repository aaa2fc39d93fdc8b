// Package filter designs the windowed-sinc interpolation table that the
// spectral ring resampler reads its tap weights from.
package filter

import (
	"math"

	"github.com/tphakala/go-audio-ringscope/internal/mathutil"
)

// KaiserWindow generates a Kaiser window of the specified length and β parameter.
//
// The window is symmetric (w[i] = w[length-1-i]) and peaks at 1.0 in the
// center for odd lengths.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1.0
		return window
	}

	// w[n] = I₀(β * sqrt(1 - ((n - α)/α)²)) / I₀(β), α = (N-1)/2
	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		window[n] = kaiserAt((float64(n)-alpha)/alpha, beta, i0Beta)
	}

	return window
}

// kaiserAt evaluates the continuous Kaiser window at x ∈ [-1, 1].
// i0Beta is I₀(β), hoisted out by callers that evaluate many points.
func kaiserAt(x, beta, i0Beta float64) float64 {
	if x <= -1 || x >= 1 {
		x = 1
	}
	return mathutil.BesselI0(beta*math.Sqrt(1.0-x*x)) / i0Beta
}

// FilterResponse holds the frequency response of a filter.
type FilterResponse struct {
	// Frequencies at which response was calculated (normalized, 0 to 0.5)
	Frequencies []float64

	// Magnitude response at each frequency (linear scale)
	Magnitude []float64
}

// ComputeFrequencyResponse evaluates the DTFT magnitude of an FIR filter at
// numPoints frequencies from DC up to (but excluding) Nyquist.
func ComputeFrequencyResponse(coeffs []float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}

	response := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := float64(k) / float64(windowNormalizationFactor*float64(numPoints))
		response.Frequencies[k] = freq

		var realPart, imagPart float64
		omega := windowNormalizationFactor * math.Pi * freq

		for n, h := range coeffs {
			angle := omega * float64(n)
			realPart += h * math.Cos(angle)
			imagPart -= h * math.Sin(angle)
		}

		response.Magnitude[k] = math.Hypot(realPart, imagPart)
	}

	return response
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
