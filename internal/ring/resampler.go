// Package ring maps a ring of constant-Q magnitudes onto an evenly spaced
// circle of vertices using band-limited (windowed-sinc) interpolation.
package ring

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-ringscope/internal/angles"
	"github.com/tphakala/go-audio-ringscope/internal/filter"
	"github.com/tphakala/go-audio-ringscope/internal/simdops"
)

var (
	// ErrTooFewBins indicates fewer magnitude bins than circle samples.
	// The resampler only decimates; upsampling would leave trailing vertices unfilled.
	ErrTooFewBins = errors.New("bins must be at least the number of circle samples")

	// ErrLengthMismatch indicates a magnitude slice of the wrong length.
	ErrLengthMismatch = errors.New("magnitude ring length mismatch")
)

// Resampler converts Bins magnitudes into Samples ring vertices.
//
// The vertex buffer is laid out as a triangle fan: a center vertex at the
// origin, Samples ring vertices, then a copy of the first ring vertex to
// close the loop. It is allocated once and rewritten in place by Process.
//
// Type parameter F selects the precision of the vertex buffer and of the
// tap accumulation.
type Resampler[F simdops.Float] struct {
	bins    int
	samples int
	step    float64 // bins / samples, input samples consumed per output
	scale   F

	// Interpolation table, converted to F once per table.
	coeffs []F
	deltas []F
	taps   int
	half   int
	spc    int

	cos []F
	sin []F

	// Per-pass scratch, sized to taps.
	window  []F
	weights []F

	vertices []F

	ops *simdops.Ops[F]
}

// New creates a resampler for the given ring geometry.
//
// Parameters:
//   - bins: number of magnitude samples in the input ring (CQ bins)
//   - table: interpolation kernel; its phases supply the tap weights
//   - dirs: one direction per output sample; its length sets the sample count
//   - scale: multiplier applied to the filtered magnitude before it becomes radius
func New[F simdops.Float](bins int, table *filter.Table, dirs *angles.Table, scale float64) (*Resampler[F], error) {
	samples := dirs.Len()
	if samples < 1 {
		return nil, fmt.Errorf("ring needs at least one sample, got %d", samples)
	}
	if bins < samples {
		return nil, fmt.Errorf("%w: bins=%d samples=%d", ErrTooFewBins, bins, samples)
	}

	r := &Resampler[F]{
		bins:     bins,
		samples:  samples,
		step:     float64(bins) / float64(samples),
		scale:    F(scale),
		cos:      simdops.Convert[F](nil, dirs.Cos),
		sin:      simdops.Convert[F](nil, dirs.Sin),
		vertices: make([]F, (samples+closingVertices)*2),
		ops:      simdops.For[F](),
	}
	if err := r.SetTable(table); err != nil {
		return nil, err
	}
	return r, nil
}

// SetTable swaps the interpolation kernel. Scratch buffers are reallocated
// only if the tap count grows.
func (r *Resampler[F]) SetTable(table *filter.Table) error {
	if table == nil || table.Taps < 1 || table.SamplesPerCrossing < 1 {
		return errors.New("ring: interpolation table is empty")
	}
	r.coeffs = simdops.Convert(r.coeffs, table.Coeffs)
	r.deltas = simdops.Convert(r.deltas, table.Deltas)
	r.taps = table.Taps
	r.half = table.Taps / 2
	r.spc = table.SamplesPerCrossing
	if cap(r.window) < r.taps {
		r.window = make([]F, r.taps)
		r.weights = make([]F, r.taps)
	}
	r.window = r.window[:r.taps]
	r.weights = r.weights[:r.taps]
	return nil
}

// Process runs one resampling pass over magnitudes and rewrites the vertex
// buffer. Each output radius is baseRadius + volume * filtered * scale.
//
// It returns the number of ring samples computed from input. When the input
// ring is exhausted first, the remaining samples are placed at baseRadius
// rather than left holding the previous frame's geometry.
func (r *Resampler[F]) Process(magnitudes []F, baseRadius, volume F) (int, error) {
	if len(magnitudes) != r.bins {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(magnitudes), r.bins)
	}

	v := r.vertices
	v[0], v[1] = 0, 0

	currentInput := 0
	currentSample := 0
	currentFraction := 0.0
	gain := volume * r.scale

	for currentSample < r.samples && currentInput < r.bins {
		pos := currentFraction * float64(r.spc)
		offset := int(pos)
		if offset >= r.spc {
			offset = r.spc - 1
		}
		blend := F(pos - float64(offset))

		// Tap k reads input currentInput+half-k with weight from entry offset+k*spc,
		// so at fraction 0 tap half sits on currentInput.
		for k := range r.taps {
			idx := offset + k*r.spc
			r.weights[k] = r.coeffs[idx] + blend*r.deltas[idx]
			r.window[k] = magnitudes[r.wrap(currentInput+r.half-k)]
		}
		filtered := r.ops.DotProductUnsafe(r.window, r.weights)

		radius := baseRadius + gain*filtered
		r.setVertex(currentSample, radius)

		currentSample++
		currentFraction += r.step
		for currentFraction >= 1 {
			currentFraction--
			currentInput++
		}
	}

	filled := currentSample
	for ; currentSample < r.samples; currentSample++ {
		r.setVertex(currentSample, baseRadius)
	}

	last := (r.samples + 1) * 2
	v[last], v[last+1] = v[2], v[3]

	return filled, nil
}

// wrap maps any index onto the input ring, for negative and overflowing values alike.
func (r *Resampler[F]) wrap(i int) int {
	i %= r.bins
	if i < 0 {
		i += r.bins
	}
	return i
}

func (r *Resampler[F]) setVertex(sample int, radius F) {
	j := (sample + 1) * 2
	r.vertices[j] = r.cos[sample] * radius
	r.vertices[j+1] = r.sin[sample] * radius
}

// Vertices returns the fan vertex buffer as interleaved (x, y) pairs.
// The slice is owned by the resampler and rewritten by the next Process call.
func (r *Resampler[F]) Vertices() []F {
	return r.vertices
}

// VertexCount returns the number of fan vertices: center, Samples ring
// vertices and the closing vertex.
func (r *Resampler[F]) VertexCount() int {
	return r.samples + closingVertices
}

// Samples returns the number of evenly spaced ring samples.
func (r *Resampler[F]) Samples() int {
	return r.samples
}

// Bins returns the expected magnitude ring length.
func (r *Resampler[F]) Bins() int {
	return r.bins
}

// Step returns the number of input bins consumed per output sample.
func (r *Resampler[F]) Step() float64 {
	return r.step
}
