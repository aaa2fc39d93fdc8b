package ringscope

import (
	"sync"

	"github.com/tphakala/go-audio-ringscope/internal/waveform"
)

// pointerState tracks hover and drag gestures on the seek band. Pointer
// events arrive from the host's input goroutine; the frame loop reads a
// snapshot each tick.
type pointerState struct {
	mu sync.Mutex
	pointerSnapshot
}

type pointerSnapshot struct {
	hovering   bool
	hoverAngle float64
	dragging   bool
	dragAngle  float64
}

func (p *pointerState) snapshot() pointerSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pointerSnapshot
}

func (p *pointerState) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pointerSnapshot = pointerSnapshot{}
}

// bandAngle maps a pointer position in CSS pixels to an angle on the seek
// band. ok is false when no envelope is loaded or the pointer is off the band.
func (v *Visualizer) bandAngle(x, y float64) (angle float64, ok bool) {
	m := v.currentTrack()
	if m == nil {
		return 0, false
	}
	state := v.view.State()
	if !state.Valid() {
		return 0, false
	}
	lx, ly := v.view.ToLocal(x, y)
	onBand := waveform.HitTest(lx, ly, state.Layout.BandCenter, state.Layout.BandHalfHeight, v.cfg.HitSlop)
	return m.AngleAt(lx, ly), onBand
}

// PointerDown starts a seek drag when the pointer is on the seek band.
// It reports whether the gesture was captured.
func (v *Visualizer) PointerDown(x, y float64) bool {
	angle, ok := v.bandAngle(x, y)
	if !ok {
		return false
	}
	v.pointer.mu.Lock()
	defer v.pointer.mu.Unlock()
	v.pointer.dragging = true
	v.pointer.dragAngle = angle
	v.pointer.hovering = false
	return true
}

// PointerMove follows a drag, or updates the hover marker.
func (v *Visualizer) PointerMove(x, y float64) {
	angle, onBand := v.bandAngle(x, y)

	v.pointer.mu.Lock()
	defer v.pointer.mu.Unlock()
	if v.pointer.dragging {
		// A drag keeps tracking the angle even when it strays off the band.
		if m := v.currentTrack(); m != nil {
			lx, ly := v.view.ToLocal(x, y)
			v.pointer.dragAngle = m.AngleAt(lx, ly)
		}
		return
	}
	v.pointer.hovering = onBand
	v.pointer.hoverAngle = angle
}

// PointerUp completes a drag: playback jumps to the released position and
// the seek handler is told to move the media element there.
func (v *Visualizer) PointerUp(x, y float64) {
	v.PointerMove(x, y)

	v.pointer.mu.Lock()
	dragging := v.pointer.dragging
	angle := v.pointer.dragAngle
	v.pointer.dragging = false
	v.pointer.mu.Unlock()

	if !dragging {
		return
	}
	duration := v.playback.Snapshot().Duration
	if !(duration > 0) {
		return
	}

	position := waveform.PositionForAngle(angle, duration)
	v.playback.Seek(position, v.now())
	v.stats.seeks.Add(1)
	if v.seek != nil {
		v.seek(position)
	}
}

// PointerLeave hides the hover marker. An active drag continues.
func (v *Visualizer) PointerLeave() {
	v.pointer.mu.Lock()
	defer v.pointer.mu.Unlock()
	v.pointer.hovering = false
}
