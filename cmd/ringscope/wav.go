package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"

	ringscope "github.com/tphakala/go-audio-ringscope"
)

// track is a decoded file held as interleaved stereo float32 in [-1, 1].
type track struct {
	samples []float32
	rate    int
	frames  int
}

// Duration returns the track length.
func (t *track) Duration() time.Duration {
	if t.rate <= 0 {
		return 0
	}
	return time.Duration(float64(t.frames) / float64(t.rate) * float64(time.Second))
}

// Seconds returns the track length in seconds.
func (t *track) Seconds() float64 {
	if t.rate <= 0 {
		return 0
	}
	return float64(t.frames) / float64(t.rate)
}

// mono averages the two channels.
func (t *track) mono() []float64 {
	out := make([]float64, t.frames)
	for i := range out {
		out[i] = (float64(t.samples[i*stereoChannels]) + float64(t.samples[i*stereoChannels+1])) / stereoChannels
	}
	return out
}

// envelope reduces the decoded samples to a seek-band envelope, so the file
// is not read a second time. A reduction failure is reported by the loader.
func (t *track) envelope(buckets int) ringscope.EnvelopeLoader {
	env, err := ringscope.EnvelopeFromSamples(t.mono(), buckets)
	if err != nil {
		return func(context.Context) (*ringscope.Envelope, error) { return nil, err }
	}
	return ringscope.StaticEnvelope(env)
}

// decodeWAV reads a PCM WAV file. Mono is duplicated to both channels and
// channels beyond the second are dropped.
func decodeWAV(path string) (*track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("WAV file %s has no channels", path)
	}

	channels := buf.Format.NumChannels
	bitDepth := int(decoder.BitDepth)
	frames := len(buf.Data) / channels
	t := &track{
		samples: make([]float32, frames*stereoChannels),
		rate:    buf.Format.SampleRate,
		frames:  frames,
	}
	scale := 1 / fullScale(bitDepth)
	offset := 0
	if bitDepth == pcm8BitDepth {
		offset = pcm8BitOffset
	}
	for i := range frames {
		l := float32(float64(buf.Data[i*channels]-offset) * scale)
		r := l
		if channels > 1 {
			r = float32(float64(buf.Data[i*channels+1]-offset) * scale)
		}
		t.samples[i*stereoChannels] = l
		t.samples[i*stereoChannels+1] = r
	}
	return t, nil
}

// fullScale returns the magnitude of the most negative sample at bitDepth.
func fullScale(bitDepth int) float64 {
	if bitDepth <= 0 {
		bitDepth = defaultBitDepth
	}
	return float64(int64(1) << (bitDepth - 1))
}
