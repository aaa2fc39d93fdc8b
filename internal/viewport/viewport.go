// Package viewport tracks the device-pixel size of the drawing surface and
// derives the view transform and the layout radii from it.
package viewport

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Ratios sizes each layout element as a fraction of half the shorter
// viewport side.
type Ratios struct {
	Ring           float64 `yaml:"ring"`
	BandCenter     float64 `yaml:"band_center"`
	BandHalfHeight float64 `yaml:"band_half_height"`
	Phase          float64 `yaml:"phase"`
	RibbonWidth    float64 `yaml:"ribbon_width"`
}

// DefaultRatios returns the standard layout.
func DefaultRatios() Ratios {
	return Ratios{
		Ring:           DefaultRingRatio,
		BandCenter:     DefaultBandCenterRatio,
		BandHalfHeight: DefaultBandHalfRatio,
		Phase:          DefaultPhaseRatio,
		RibbonWidth:    DefaultRibbonRatio,
	}
}

// Validate checks that every ratio is positive and the band stays outside
// the ring.
func (r Ratios) Validate() error {
	for name, v := range map[string]float64{
		"ring":             r.Ring,
		"band_center":      r.BandCenter,
		"band_half_height": r.BandHalfHeight,
		"phase":            r.Phase,
		"ribbon_width":     r.RibbonWidth,
	} {
		if !(v > 0) || math.IsInf(v, 1) {
			return fmt.Errorf("layout ratio %s must be positive, got %f", name, v)
		}
	}
	if r.BandCenter-r.BandHalfHeight < 0 {
		return fmt.Errorf("seek band (center %f, half height %f) crosses the origin", r.BandCenter, r.BandHalfHeight)
	}
	return nil
}

// Layout holds the geometry radii in CSS pixels.
type Layout struct {
	// Unit is half the shorter viewport side; every ratio is relative to it.
	Unit float64

	RingRadius     float64
	BandCenter     float64
	BandHalfHeight float64
	PhaseRadius    float64
	RibbonWidth    float64
}

// State is the viewport as of the last applied resize.
type State struct {
	WidthCSS, HeightCSS float64
	WidthPx, HeightPx   int
	DevicePixelRatio    float64

	// CenterX and CenterY locate the geometry origin in CSS pixels from the
	// top-left corner.
	CenterX, CenterY float64

	// Transform maps CSS-pixel geometry centered on the origin to clip space,
	// as a column-major 3x3 matrix.
	Transform [9]float32

	Layout Layout
}

// Valid reports whether the state describes a drawable surface.
func (s State) Valid() bool {
	return s.WidthPx > 0 && s.HeightPx > 0
}

type request struct {
	w, h, dpr float64
}

// Manager coalesces resize requests and applies them at frame boundaries.
// Resize and ToLocal may be called from any goroutine; Apply is called by
// the frame loop.
type Manager struct {
	mu      sync.Mutex
	pending *request

	ratios Ratios
	state  State
}

// NewManager creates a manager with the given layout ratios.
func NewManager(ratios Ratios) *Manager {
	return &Manager{ratios: ratios}
}

// Resize records a new CSS size and device pixel ratio. Only the most recent
// request survives until the next Apply.
func (m *Manager) Resize(width, height, dpr float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &request{w: width, h: height, dpr: dpr}
}

// Pending reports whether a resize is waiting to be applied.
func (m *Manager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// Apply recomputes the state from the pending request, if any, and returns
// the current state. changed is false when nothing was pending or the
// request was invalid; an invalid request leaves the previous state intact.
func (m *Manager) Apply() (state State, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req := m.pending
	m.pending = nil
	if req == nil {
		return m.state, false
	}
	next, ok := compute(*req, m.ratios)
	if !ok {
		return m.state, false
	}
	changed = next != m.state
	m.state = next
	return m.state, changed
}

// State returns the last applied state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ToLocal maps a pointer position in CSS pixels from the top-left corner to
// geometry coordinates centered on the ring.
func (m *Manager) ToLocal(x, y float64) (lx, ly float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return x - m.state.CenterX, y - m.state.CenterY
}

func compute(req request, ratios Ratios) (State, bool) {
	if !(req.w > 0) || !(req.h > 0) || math.IsInf(req.w, 1) || math.IsInf(req.h, 1) {
		return State{}, false
	}
	dpr := req.dpr
	if !(dpr > 0) || math.IsInf(dpr, 1) {
		dpr = defaultDevicePixelRatio
	}

	s := State{
		WidthCSS:         req.w,
		HeightCSS:        req.h,
		WidthPx:          max(int(math.Round(req.w*dpr)), 1),
		HeightPx:         max(int(math.Round(req.h*dpr)), 1),
		DevicePixelRatio: dpr,
		CenterX:          req.w / 2,
		CenterY:          req.h / 2,
	}
	s.Transform = Transform(s.WidthPx, s.HeightPx, dpr)

	unit := math.Min(req.w, req.h) / 2
	s.Layout = Layout{
		Unit:           unit,
		RingRadius:     ratios.Ring * unit,
		BandCenter:     ratios.BandCenter * unit,
		BandHalfHeight: ratios.BandHalfHeight * unit,
		PhaseRadius:    ratios.Phase * unit,
		RibbonWidth:    ratios.RibbonWidth * unit,
	}
	return s, true
}

// Transform composes the view matrix for a surface of widthPx by heightPx
// device pixels: CSS pixels are scaled to device pixels, device pixels to
// clip space, and y is flipped so that screen-down geometry draws downwards.
func Transform(widthPx, heightPx int, dpr float64) [9]float32 {
	toDevice := mat.NewDense(matrixSize, matrixSize, []float64{
		dpr, 0, 0,
		0, dpr, 0,
		0, 0, 1,
	})
	toClip := mat.NewDense(matrixSize, matrixSize, []float64{
		clipSpan / float64(widthPx), 0, 0,
		0, -clipSpan / float64(heightPx), 0,
		0, 0, 1,
	})

	var m mat.Dense
	m.Mul(toClip, toDevice)
	return columnMajor(&m)
}

// Apply maps geometry point (x, y) through a column-major transform.
func Apply(t [9]float32, x, y float64) (cx, cy float64) {
	v := mat.NewVecDense(matrixSize, []float64{x, y, 1})
	var out mat.VecDense
	out.MulVec(fromColumnMajor(t), v)
	return out.AtVec(0), out.AtVec(1)
}

// Invert returns the inverse of a column-major transform, mapping clip space
// back to geometry coordinates.
func Invert(t [9]float32) ([9]float32, error) {
	var inv mat.Dense
	if err := inv.Inverse(fromColumnMajor(t)); err != nil {
		return [9]float32{}, fmt.Errorf("view transform is singular: %w", err)
	}
	return columnMajor(&inv), nil
}

func columnMajor(m mat.Matrix) [9]float32 {
	var out [9]float32
	for c := range matrixSize {
		for r := range matrixSize {
			out[c*matrixSize+r] = float32(m.At(r, c))
		}
	}
	return out
}

func fromColumnMajor(t [9]float32) *mat.Dense {
	m := mat.NewDense(matrixSize, matrixSize, nil)
	for c := range matrixSize {
		for r := range matrixSize {
			m.Set(r, c, float64(t[c*matrixSize+r]))
		}
	}
	return m
}
