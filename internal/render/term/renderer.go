// Package term draws the visualizer into a terminal using braille cells.
//
// Each cell holds a 2x4 grid of dots, so a terminal of cols x rows cells is
// treated as a surface of 2*cols x 4*rows device pixels. Triangles are
// filled by testing dot centers against their edge functions; translucent
// primitives below the alpha threshold are skipped.
package term

import (
	"errors"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	ringscope "github.com/tphakala/go-audio-ringscope"
)

// ErrNoScreen indicates a renderer factory without a terminal screen.
var ErrNoScreen = errors.New("no terminal screen")

// Renderer implements ringscope.Renderer on a tcell screen.
type Renderer struct {
	mu        sync.Mutex
	screen    tcell.Screen
	canvas    *canvas
	threshold float32

	vertices  []float32
	stride    int
	color     tcell.Color
	alpha     float32
	transform ringscope.Transform
}

// New creates a renderer for an initialized screen.
func New(screen tcell.Screen) (*Renderer, error) {
	if screen == nil {
		return nil, ErrNoScreen
	}
	cols, rows := screen.Size()
	return &Renderer{
		screen:    screen,
		canvas:    newCanvas(max(cols, 0), max(rows, 0)),
		threshold: DefaultAlphaThreshold,
		stride:    2,
	}, nil
}

// Factory returns a ringscope.RendererFactory that creates a renderer for screen.
func Factory(screen tcell.Screen) ringscope.RendererFactory {
	return func() (ringscope.Renderer, error) {
		return New(screen)
	}
}

// SetAlphaThreshold sets the minimum alpha that lights a dot.
func (r *Renderer) SetAlphaThreshold(a float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threshold = a
}

// Surface returns the drawable size in dots. Pass it to Visualizer.Resize
// with a device pixel ratio of 1.
func (r *Renderer) Surface() (width, height int) {
	cols, rows := r.screen.Size()
	return cols * dotsPerCellX, rows * dotsPerCellY
}

func (r *Renderer) UploadVertices(v []float32, stride int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stride < 2 {
		stride = 2
	}
	r.vertices = append(r.vertices[:0], v...)
	r.stride = stride
}

func (r *Renderer) SetUniformColor(c ringscope.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.color = tcell.NewRGBColor(channel(c.R), channel(c.G), channel(c.B))
	r.alpha = c.A
}

func (r *Renderer) SetTransform(t ringscope.Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transform = t
}

// BeginFrame clears the dot grid, following any terminal resize.
func (r *Renderer) BeginFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cols, rows := r.screen.Size()
	if cols != r.canvas.cols || rows != r.canvas.rows {
		r.canvas = newCanvas(max(cols, 0), max(rows, 0))
		return
	}
	r.canvas.clear()
}

// EndFrame writes the dot grid to the screen and shows it.
func (r *Renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screen.Clear()
	r.canvas.render(r.screen)
	r.screen.Show()
	return nil
}

func (r *Renderer) DrawTriangleFan(first, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.visible() {
		return
	}
	for i := first + 1; i+1 < first+count; i++ {
		r.fill(first, i, i+1)
	}
}

func (r *Renderer) DrawTriangleStrip(first, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.visible() {
		return
	}
	for i := first; i+2 < first+count; i++ {
		r.fill(i, i+1, i+2)
	}
}

func (r *Renderer) visible() bool {
	return r.alpha >= r.threshold && r.canvas.pixelWidth() > 0 && r.canvas.pixelHeight() > 0
}

// point maps vertex i to dot coordinates.
func (r *Renderer) point(i int) (x, y float64, ok bool) {
	j := i * r.stride
	if i < 0 || j+1 >= len(r.vertices) {
		return 0, 0, false
	}
	gx, gy := float64(r.vertices[j]), float64(r.vertices[j+1])
	t := &r.transform
	cx := float64(t[0])*gx + float64(t[3])*gy + float64(t[6])
	cy := float64(t[1])*gx + float64(t[4])*gy + float64(t[7])
	return (cx + 1) / 2 * float64(r.canvas.pixelWidth()),
		(1 - cy) / 2 * float64(r.canvas.pixelHeight()), true
}

// fill lights every dot whose center lies inside triangle (a, b, c).
func (r *Renderer) fill(a, b, c int) {
	x0, y0, ok0 := r.point(a)
	x1, y1, ok1 := r.point(b)
	x2, y2, ok2 := r.point(c)
	if !ok0 || !ok1 || !ok2 {
		return
	}
	area := edge(x0, y0, x1, y1, x2, y2)
	if area == 0 || math.IsNaN(area) {
		return
	}

	minX := max(int(math.Floor(min(x0, x1, x2))), 0)
	maxX := min(int(math.Ceil(max(x0, x1, x2))), r.canvas.pixelWidth()-1)
	minY := max(int(math.Floor(min(y0, y1, y2))), 0)
	maxY := min(int(math.Ceil(max(y0, y1, y2))), r.canvas.pixelHeight()-1)

	hit := false
	for py := minY; py <= maxY; py++ {
		sy := float64(py) + 0.5
		for px := minX; px <= maxX; px++ {
			sx := float64(px) + 0.5
			w0 := edge(x1, y1, x2, y2, sx, sy)
			w1 := edge(x2, y2, x0, y0, sx, sy)
			w2 := edge(x0, y0, x1, y1, sx, sy)
			if area < 0 {
				w0, w1, w2 = -w0, -w1, -w2
			}
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				r.canvas.set(px, py, r.color)
				hit = true
			}
		}
	}
	// Slivers thinner than a dot still mark the dot under their centroid.
	if !hit {
		r.canvas.set(int(math.Floor((x0+x1+x2)/3)), int(math.Floor((y0+y1+y2)/3)), r.color)
	}
}

func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func channel(v float32) int32 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return colorMax
	default:
		return int32(math.Round(float64(v) * colorMax))
	}
}
