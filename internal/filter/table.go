package filter

import (
	"context"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-ringscope/internal/mathutil"
	"github.com/tphakala/simd/f64"
)

// Table is an oversampled windowed-sinc kernel stored as coefficients plus
// inter-entry deltas, so that any fractional filter phase can be evaluated
// as coeffs[i] + frac*deltas[i] without a table per offset.
//
// Entry t holds the kernel at x = t/SamplesPerCrossing - Taps/2, measured in
// input samples. Reading entries o, o+SamplesPerCrossing, ... yields the Taps
// weights for one filter phase. Every phase is normalized to unit sum, so a
// constant input produces the same output at any fractional position.
type Table struct {
	// Coeffs holds FilterSize kernel samples.
	Coeffs []float64

	// Deltas holds Coeffs[t+1]-Coeffs[t]; the last entry points at the
	// kernel's right edge.
	Deltas []float64

	// Taps is the number of input samples each output reads (FilterSize/SamplesPerCrossing).
	Taps int

	// SamplesPerCrossing is the table oversampling factor.
	SamplesPerCrossing int

	// Cutoff is the normalized cutoff (1.0 = input Nyquist) the kernel was designed for.
	Cutoff float64

	// Beta is the Kaiser window parameter used for the taper.
	Beta float64
}

// TableParams holds parameters for interpolation table design.
type TableParams struct {
	// Taps is the kernel span in input samples. Must be even.
	Taps int

	// SamplesPerCrossing is the number of table entries per input sample.
	SamplesPerCrossing int

	// Cutoff is the normalized cutoff frequency in (0, 1], relative to the
	// input Nyquist. Decimating by a ratio r needs a cutoff of 1/r or less.
	Cutoff float64

	// Attenuation is the Kaiser taper's stopband attenuation in dB.
	Attenuation float64
}

// DefaultTableParams returns a kernel suitable for decimating by ratio.
func DefaultTableParams(ratio float64) TableParams {
	cutoff := 1.0
	if ratio > 1 {
		cutoff = 1.0 / ratio
	}
	return TableParams{
		Taps:               DefaultTaps,
		SamplesPerCrossing: DefaultSamplesPerCrossing,
		Cutoff:             cutoff,
		Attenuation:        DefaultAttenuation,
	}
}

// Validate checks if table parameters are valid.
func (p *TableParams) Validate() error {
	if p.Taps < minTaps || p.Taps > maxTaps {
		return fmt.Errorf("taps %d out of range [%d, %d]", p.Taps, minTaps, maxTaps)
	}
	if p.Taps%2 != 0 {
		return fmt.Errorf("taps %d must be even", p.Taps)
	}
	if p.SamplesPerCrossing < minSamplesPerCrossing || p.SamplesPerCrossing > maxSamplesPerCrossing {
		return fmt.Errorf("samples per crossing %d out of range [%d, %d]",
			p.SamplesPerCrossing, minSamplesPerCrossing, maxSamplesPerCrossing)
	}
	if p.Cutoff <= 0 || p.Cutoff > 1 {
		return fmt.Errorf("cutoff %f out of range (0, 1]", p.Cutoff)
	}
	if p.Attenuation < 0 {
		return fmt.Errorf("attenuation %f dB must be positive", p.Attenuation)
	}
	return nil
}

// FilterSize returns the number of table entries the parameters produce.
func (p *TableParams) FilterSize() int {
	return p.Taps * p.SamplesPerCrossing
}

// DesignTable builds an interpolation table from the given parameters.
//
// The process:
//  1. Sample cutoff·sinc(cutoff·x) on a grid of 1/SamplesPerCrossing input samples
//  2. Taper with a continuous Kaiser window spanning ±Taps/2
//  3. Normalize each filter phase to unit DC gain
//  4. Derive deltas for linear interpolation between adjacent entries
func DesignTable(params TableParams) (*Table, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table parameters: %w", err)
	}

	spc := params.SamplesPerCrossing
	size := params.FilterSize()
	half := float64(params.Taps) / windowNormalizationFactor
	beta := mathutil.KaiserBeta(params.Attenuation)
	i0Beta := mathutil.BesselI0(beta)

	kernel := func(x float64) float64 {
		return params.Cutoff * mathutil.Sinc(params.Cutoff*x) * kaiserAt(x/half, beta, i0Beta)
	}

	coeffs := make([]float64, size)
	for t := range size {
		coeffs[t] = kernel(float64(t)/float64(spc) - half)
	}
	edge := kernel(half)

	// Gather each phase into a scratch row, sum it, and scale it back in place.
	row := make([]float64, params.Taps)
	var phase0Sum float64
	for o := range spc {
		for k := range params.Taps {
			row[k] = coeffs[o+k*spc]
		}
		sum := f64.Sum(row)
		if math.Abs(sum) < phaseSumThreshold {
			return nil, fmt.Errorf("phase %d has near-zero gain %g", o, sum)
		}
		if o == 0 {
			phase0Sum = sum
		}
		for k := range params.Taps {
			coeffs[o+k*spc] /= sum
		}
	}
	// The right edge continues phase 0 one tap further, so it shares its scale.
	edge /= phase0Sum

	deltas := make([]float64, size)
	for t := 0; t < size-1; t++ {
		deltas[t] = coeffs[t+1] - coeffs[t]
	}
	deltas[size-1] = edge - coeffs[size-1]

	return &Table{
		Coeffs:             coeffs,
		Deltas:             deltas,
		Taps:               params.Taps,
		SamplesPerCrossing: spc,
		Cutoff:             params.Cutoff,
		Beta:               beta,
	}, nil
}

// FilterSize returns the number of entries in the table.
func (t *Table) FilterSize() int {
	return len(t.Coeffs)
}

// Coefficient returns the interpolated table value at entry i with
// fractional blend frac ∈ [0, 1).
func (t *Table) Coefficient(i int, frac float64) float64 {
	return t.Coeffs[i] + frac*t.Deltas[i]
}

// Phase splits a fractional input position into the table offset and the
// blend factor between offset and offset+1.
func (t *Table) Phase(fraction float64) (offset int, blend float64) {
	pos := fraction * float64(t.SamplesPerCrossing)
	offset = int(pos)
	if offset >= t.SamplesPerCrossing {
		offset = t.SamplesPerCrossing - 1
	}
	return offset, pos - float64(offset)
}

// Weights fills dst with the Taps weights used at the given fractional
// input position and returns it. dst is grown only when too short.
func (t *Table) Weights(dst []float64, fraction float64) []float64 {
	if cap(dst) < t.Taps {
		dst = make([]float64, t.Taps)
	}
	dst = dst[:t.Taps]
	offset, blend := t.Phase(fraction)
	for k := range t.Taps {
		dst[k] = t.Coefficient(offset+k*t.SamplesPerCrossing, blend)
	}
	return dst
}

// TapSum returns the sum of the tap weights at the given fractional position.
func (t *Table) TapSum(fraction float64) float64 {
	return f64.Sum(t.Weights(nil, fraction))
}

// Response computes the magnitude response of the oversampled kernel.
// Frequencies are normalized to the table rate; multiply by
// SamplesPerCrossing to express them relative to the input rate.
func (t *Table) Response(numPoints int) FilterResponse {
	resp := ComputeFrequencyResponse(t.Coeffs, numPoints)
	f64.Scale(resp.Magnitude, resp.Magnitude, 1.0/float64(t.SamplesPerCrossing))
	return resp
}

// GetMemoryUsage returns the approximate memory usage in bytes.
func (t *Table) GetMemoryUsage() int64 {
	const bytesPerFloat64 = 8
	return int64(len(t.Coeffs)+len(t.Deltas)) * bytesPerFloat64
}

// Loader produces a table, possibly from slow storage. Loaders are run off
// the frame path; the visualizer polls for their result.
type Loader func(ctx context.Context) (*Table, error)

// DesignLoader returns a Loader that designs a table from params.
func DesignLoader(params TableParams) Loader {
	return func(ctx context.Context) (*Table, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return DesignTable(params)
	}
}
