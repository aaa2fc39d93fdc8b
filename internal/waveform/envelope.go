// Package waveform turns a per-track amplitude envelope into the radial
// seek band drawn around the spectral ring, and maps between playback
// position and angle on that band.
package waveform

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-audio/wav"
)

// ErrMalformedEnvelope indicates an envelope that cannot be drawn, such as
// one with zero buckets or mismatched min/max lengths.
var ErrMalformedEnvelope = errors.New("malformed waveform envelope")

// Envelope holds one [min, max] amplitude pair per bucket, in track order.
// Values are normalized to [-1, 1].
type Envelope struct {
	Min []float32
	Max []float32
}

// Len returns the number of buckets.
func (e *Envelope) Len() int {
	return len(e.Min)
}

// Validate checks that the envelope has at least one bucket and matching
// min/max arrays.
func (e *Envelope) Validate() error {
	if e == nil || len(e.Min) == 0 {
		return fmt.Errorf("%w: no buckets", ErrMalformedEnvelope)
	}
	if len(e.Min) != len(e.Max) {
		return fmt.Errorf("%w: %d min values, %d max values", ErrMalformedEnvelope, len(e.Min), len(e.Max))
	}
	return nil
}

// FromPairs builds an envelope from precomputed [min, max] pairs.
// Pairs given as [max, min] are swapped.
func FromPairs(pairs [][2]float32) (*Envelope, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no buckets", ErrMalformedEnvelope)
	}
	e := &Envelope{
		Min: make([]float32, len(pairs)),
		Max: make([]float32, len(pairs)),
	}
	for i, p := range pairs {
		lo, hi := p[0], p[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		e.Min[i], e.Max[i] = lo, hi
	}
	return e, nil
}

// FromSamples reduces mono samples to the given number of buckets.
// Each bucket covers an equal share of the samples; when there are fewer
// samples than buckets, a bucket reuses the sample it falls on.
func FromSamples(mono []float64, buckets int) (*Envelope, error) {
	if buckets < 1 {
		return nil, fmt.Errorf("%w: bucket count %d", ErrMalformedEnvelope, buckets)
	}
	n := len(mono)
	if n == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrMalformedEnvelope)
	}

	e := &Envelope{
		Min: make([]float32, buckets),
		Max: make([]float32, buckets),
	}
	for j := range buckets {
		start := j * n / buckets
		end := (j + 1) * n / buckets
		if end <= start {
			end = start + 1
		}
		lo, hi := mono[start], mono[start]
		for _, v := range mono[start+1 : end] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		e.Min[j], e.Max[j] = float32(lo), float32(hi)
	}
	return e, nil
}

// LoadWAV decodes a WAV file, downmixes it to mono and reduces it to an
// envelope of the given number of buckets.
func LoadWAV(path string, buckets int) (*Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open waveform source: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid WAV file", ErrMalformedEnvelope, path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = defaultBitDepth
	}

	return FromSamples(downmix(buf.Data, channels, bitDepth), buckets)
}

// downmix averages interleaved integer PCM into normalized mono samples.
func downmix(data []int, channels, bitDepth int) []float64 {
	frames := len(data) / channels
	mono := make([]float64, frames)

	offset := 0
	if bitDepth == pcm8BitDepth {
		offset = pcm8BitOffset
	}
	scale := 1.0 / (float64(int64(1)<<(bitDepth-1)) * float64(channels))

	for i := range frames {
		var sum int
		for ch := range channels {
			sum += data[i*channels+ch] - offset
		}
		mono[i] = float64(sum) * scale
	}
	return mono
}

// Loader produces a track's envelope. Loaders run off the frame path.
type Loader func(ctx context.Context) (*Envelope, error)

// WAVLoader returns a Loader that reduces the WAV file at path.
func WAVLoader(path string, buckets int) Loader {
	return func(ctx context.Context) (*Envelope, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return LoadWAV(path, buckets)
	}
}

// PairsLoader returns a Loader for a precomputed envelope file: one
// "min max" pair per line. Blank lines and lines starting with # are ignored.
func PairsLoader(path string) Loader {
	return func(ctx context.Context) (*Envelope, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open envelope file: %w", err)
		}
		defer func() { _ = f.Close() }()

		var pairs [][2]float32
		sc := bufio.NewScanner(f)
		for line := 1; sc.Scan(); line++ {
			text := strings.TrimSpace(sc.Text())
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}
			var p [2]float32
			if _, err := fmt.Sscan(text, &p[0], &p[1]); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedEnvelope, line, err)
			}
			pairs = append(pairs, p)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read envelope file: %w", err)
		}
		return FromPairs(pairs)
	}
}

// Static returns a Loader that yields env unchanged.
func Static(env *Envelope) Loader {
	return func(context.Context) (*Envelope, error) {
		if err := env.Validate(); err != nil {
			return nil, err
		}
		return env, nil
	}
}
