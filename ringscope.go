package ringscope

import (
	"context"
	"errors"
	"time"

	"github.com/tphakala/go-audio-ringscope/internal/waveform"
)

// Common errors returned by the visualizer.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid visualizer configuration")

	// ErrMissingContext indicates that no usable rendering backend could be
	// created. The visualizer is disabled and never retries.
	ErrMissingContext = errors.New("no rendering context available")

	// ErrIncompleteAsset indicates a frame step skipped because the
	// interpolation table or the waveform envelope has not loaded yet.
	ErrIncompleteAsset = errors.New("asset not loaded")

	// ErrMalformedEnvelope indicates an envelope that cannot be drawn.
	ErrMalformedEnvelope = waveform.ErrMalformedEnvelope

	// ErrNotMounted indicates Start was called before a renderer was mounted.
	ErrNotMounted = errors.New("visualizer is not mounted")
)

// AnalysisFrame is one tick's worth of analysis data. The visualizer owns
// the buffers and the source fills them in place.
type AnalysisFrame struct {
	// Left and Right hold CQBins non-negative magnitudes, arranged as a ring.
	Left  []float32
	Right []float32

	// TimeLeft and TimeRight hold TimeDomainSize samples in [-1, 1].
	TimeLeft  []float32
	TimeRight []float32

	// Volume is the master volume in [0, 1].
	Volume float32
}

// newAnalysisFrame allocates a frame for the given sizes.
func newAnalysisFrame(bins, timeDomain int) AnalysisFrame {
	return AnalysisFrame{
		Left:      make([]float32, bins),
		Right:     make([]float32, bins),
		TimeLeft:  make([]float32, timeDomain),
		TimeRight: make([]float32, timeDomain),
	}
}

// silence zeroes the frame's signal but keeps its volume.
func (f *AnalysisFrame) silence() {
	clear(f.Left)
	clear(f.Right)
	clear(f.TimeLeft)
	clear(f.TimeRight)
}

// AnalysisSource provides per-frame analysis data.
type AnalysisSource interface {
	// Pull fills frame in place. It returns false while the audio graph is
	// suspended, in which case the frame contents are ignored.
	Pull(frame *AnalysisFrame) bool
}

// FrameHost drives the per-frame callback.
type FrameHost interface {
	// RequestFrames registers callback to run once per displayed frame with
	// the frame timestamp, and returns a function that deregisters it.
	// Callbacks never overlap.
	RequestFrames(callback func(ts time.Duration)) (cancel func())

	// Now returns the current time on the frame clock.
	Now() time.Duration
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Transform is a column-major 3x3 matrix mapping geometry in CSS pixels,
// centered on the origin, to clip space.
type Transform [9]float32

// Renderer is the drawing backend. Vertex counts and offsets are in
// vertices; stride is in float32 scalars per vertex, with the first two
// scalars of each vertex being x and y.
type Renderer interface {
	UploadVertices(v []float32, stride int)
	DrawTriangleFan(first, count int)
	DrawTriangleStrip(first, count int)
	SetUniformColor(c Color)
	SetTransform(t Transform)
}

// frameRenderer is an optional interface for backends that need to know
// where a frame begins and ends.
type frameRenderer interface {
	BeginFrame()
	EndFrame() error
}

// RendererFactory creates the drawing backend at mount time.
type RendererFactory func() (Renderer, error)

// SeekHandler is called when a pointer gesture on the seek band completes.
// It receives the target position in seconds and should seek the media element.
type SeekHandler func(position float64)

// Envelope is a per-track amplitude envelope: one [Min[i], Max[i]] pair per
// bucket, values in [-1, 1].
type Envelope struct {
	Min []float32
	Max []float32
}

// EnvelopeLoader produces a track's envelope. It runs on its own goroutine;
// ctx is cancelled when the track changes or the visualizer closes.
type EnvelopeLoader func(ctx context.Context) (*Envelope, error)

// WAVEnvelope returns a loader that reduces a WAV file to buckets min/max pairs.
func WAVEnvelope(path string, buckets int) EnvelopeLoader {
	return fromWaveform(waveform.WAVLoader(path, buckets))
}

// PairsEnvelope returns a loader for a text file of "min max" lines.
func PairsEnvelope(path string) EnvelopeLoader {
	return fromWaveform(waveform.PairsLoader(path))
}

// StaticEnvelope returns a loader that yields env.
func StaticEnvelope(env *Envelope) EnvelopeLoader {
	return func(context.Context) (*Envelope, error) {
		if env == nil {
			return nil, ErrMalformedEnvelope
		}
		return env, nil
	}
}

// EnvelopeFromSamples reduces mono samples to buckets min/max pairs.
func EnvelopeFromSamples(mono []float64, buckets int) (*Envelope, error) {
	e, err := waveform.FromSamples(mono, buckets)
	if err != nil {
		return nil, err
	}
	return &Envelope{Min: e.Min, Max: e.Max}, nil
}

func fromWaveform(load waveform.Loader) EnvelopeLoader {
	return func(ctx context.Context) (*Envelope, error) {
		e, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return &Envelope{Min: e.Min, Max: e.Max}, nil
	}
}
