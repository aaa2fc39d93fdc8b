// Package record provides a renderer that records draw calls instead of
// rasterizing them. It backs headless runs and tests.
package record

import (
	"slices"
	"sync"

	ringscope "github.com/tphakala/go-audio-ringscope"
)

// Op identifies a recorded draw call.
type Op int

const (
	OpFan Op = iota
	OpStrip
)

// String returns the primitive name.
func (o Op) String() string {
	switch o {
	case OpFan:
		return "fan"
	case OpStrip:
		return "strip"
	default:
		return "unknown"
	}
}

// Draw is one recorded draw call with the state it was issued under.
type Draw struct {
	Op        Op
	First     int
	Count     int
	Stride    int
	Vertices  []float32 // copy of the buffer bound at draw time
	Color     ringscope.Color
	Transform ringscope.Transform
}

// Points returns the (x, y) positions of the drawn vertices.
func (d Draw) Points() [][2]float32 {
	pts := make([][2]float32, 0, d.Count)
	for i := d.First; i < d.First+d.Count; i++ {
		j := i * d.Stride
		if j+1 >= len(d.Vertices) {
			break
		}
		pts = append(pts, [2]float32{d.Vertices[j], d.Vertices[j+1]})
	}
	return pts
}

// Frame is the list of draws between BeginFrame and EndFrame.
type Frame struct {
	Draws []Draw
}

// Count returns the number of draws of the given primitive.
func (f Frame) Count(op Op) int {
	n := 0
	for _, d := range f.Draws {
		if d.Op == op {
			n++
		}
	}
	return n
}

// Recorder implements ringscope.Renderer and keeps the most recent frames.
type Recorder struct {
	mu        sync.Mutex
	keep      int
	frames    []Frame
	current   *Frame
	vertices  []float32
	stride    int
	color     ringscope.Color
	transform ringscope.Transform
	uploads   int64
	err       error
}

// New creates a recorder keeping at most keep completed frames; keep <= 0
// keeps every frame.
func New(keep int) *Recorder {
	return &Recorder{keep: keep}
}

// Factory returns a ringscope.RendererFactory yielding r.
func (r *Recorder) Factory() ringscope.RendererFactory {
	return func() (ringscope.Renderer, error) { return r, nil }
}

// FailWith makes subsequent EndFrame calls return err.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) UploadVertices(v []float32, stride int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vertices = slices.Clone(v)
	r.stride = stride
	r.uploads++
}

func (r *Recorder) DrawTriangleFan(first, count int) {
	r.draw(OpFan, first, count)
}

func (r *Recorder) DrawTriangleStrip(first, count int) {
	r.draw(OpStrip, first, count)
}

func (r *Recorder) SetUniformColor(c ringscope.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.color = c
}

func (r *Recorder) SetTransform(t ringscope.Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transform = t
}

// BeginFrame starts a new frame.
func (r *Recorder) BeginFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = &Frame{}
}

// EndFrame completes the current frame.
func (r *Recorder) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.frames = append(r.frames, *r.current)
		if r.keep > 0 && len(r.frames) > r.keep {
			r.frames = slices.Delete(r.frames, 0, len(r.frames)-r.keep)
		}
		r.current = nil
	}
	return r.err
}

// draw records a call. Draws outside BeginFrame/EndFrame open an implicit
// frame that the next EndFrame closes.
func (r *Recorder) draw(op Op, first, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		r.current = &Frame{}
	}
	r.current.Draws = append(r.current.Draws, Draw{
		Op:        op,
		First:     first,
		Count:     count,
		Stride:    r.stride,
		Vertices:  r.vertices,
		Color:     r.color,
		Transform: r.transform,
	})
}

// Frames returns the completed frames, oldest first.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.frames)
}

// Last returns the most recently completed frame.
func (r *Recorder) Last() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Uploads returns the number of UploadVertices calls.
func (r *Recorder) Uploads() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploads
}

// Reset drops recorded frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
	r.current = nil
	r.uploads = 0
}
