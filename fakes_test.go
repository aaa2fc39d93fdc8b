package ringscope

import (
	"bytes"
	"context"
	"log"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type drawCall struct {
	op       string // "fan" or "strip"
	first    int
	count    int
	stride   int
	vertices []float32
	color    Color
}

// fakeRenderer records draw calls per frame.
type fakeRenderer struct {
	mu        sync.Mutex
	vertices  []float32
	stride    int
	color     Color
	transform Transform
	frames    [][]drawCall
	current   []drawCall
	begun     int
	endErr    error
}

func (r *fakeRenderer) UploadVertices(v []float32, stride int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vertices = slices.Clone(v)
	r.stride = stride
}

func (r *fakeRenderer) DrawTriangleFan(first, count int)   { r.draw("fan", first, count) }
func (r *fakeRenderer) DrawTriangleStrip(first, count int) { r.draw("strip", first, count) }

func (r *fakeRenderer) draw(op string, first, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = append(r.current, drawCall{
		op: op, first: first, count: count, stride: r.stride,
		vertices: r.vertices, color: r.color,
	})
}

func (r *fakeRenderer) SetUniformColor(c Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.color = c
}

func (r *fakeRenderer) SetTransform(t Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transform = t
}

func (r *fakeRenderer) BeginFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.begun++
	r.current = nil
}

func (r *fakeRenderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, r.current)
	r.current = nil
	return r.endErr
}

func (r *fakeRenderer) last(t *testing.T) []drawCall {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.frames, "no frame completed")
	return r.frames[len(r.frames)-1]
}

func (r *fakeRenderer) frameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func ops(calls []drawCall) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.op
	}
	return out
}

type nopRenderer struct{}

func (nopRenderer) UploadVertices([]float32, int) {}
func (nopRenderer) DrawTriangleFan(int, int)      {}
func (nopRenderer) DrawTriangleStrip(int, int)    {}
func (nopRenderer) SetUniformColor(Color)         {}
func (nopRenderer) SetTransform(Transform)        {}

// fakeHost hands the frame callback to the test instead of running it.
type fakeHost struct {
	mu       sync.Mutex
	callback func(time.Duration)
	requests int
	cancels  int
	now      time.Duration
}

func (h *fakeHost) RequestFrames(cb func(time.Duration)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callback = cb
	h.requests++
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.cancels++
		h.callback = nil
	}
}

func (h *fakeHost) Now() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

// fakeSource fills every magnitude with level and every time-domain sample
// pair with a circle, so the phase ribbon is well formed.
type fakeSource struct {
	mu        sync.Mutex
	level     float32
	volume    float32
	suspended bool
	resize    bool
	pulls     int
}

func (s *fakeSource) Pull(f *AnalysisFrame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulls++
	if s.suspended {
		return false
	}
	if s.resize {
		f.Left = make([]float32, len(f.Left)+1)
		return true
	}
	for i := range f.Left {
		f.Left[i] = s.level
		f.Right[i] = s.level
	}
	n := len(f.TimeLeft)
	for i := range n {
		f.TimeLeft[i] = float32(i%7) / 7
		f.TimeRight[i] = float32(i%5) / 5
	}
	f.Volume = s.volume
	return true
}

func testEnvelope(buckets int) *Envelope {
	env := &Envelope{Min: make([]float32, buckets), Max: make([]float32, buckets)}
	for i := range buckets {
		env.Min[i] = -0.5
		env.Max[i] = 0.5
	}
	return env
}

// newTestVisualizer returns a mounted visualizer with a 400x400 viewport
// whose interpolation table has loaded.
func newTestVisualizer(t *testing.T, src AnalysisSource, opts ...Option) (*Visualizer, *fakeRenderer) {
	t.Helper()
	cfg := DefaultConfig()
	v, err := New(cfg, src, opts...)
	require.NoError(t, err)
	t.Cleanup(v.Close)

	r := &fakeRenderer{}
	require.NoError(t, v.Mount(func() (Renderer, error) { return r, nil }))
	v.Resize(400, 400, 1)
	require.Eventually(t, func() bool { return v.AssetsReady() == nil }, 5*time.Second, time.Millisecond)
	return v, r
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func blockingEnvelope(env *Envelope, release <-chan struct{}) EnvelopeLoader {
	return func(ctx context.Context) (*Envelope, error) {
		select {
		case <-release:
			return env, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
