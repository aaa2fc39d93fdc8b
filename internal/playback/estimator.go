// Package playback dead-reckons the playing position between the discrete
// time updates a media element reports.
package playback

import (
	"math"
	"sync"
	"time"
)

// State is a snapshot of the transport as last reported by the host.
type State struct {
	// Position is the last known position in seconds.
	Position float64

	// UpdatedAt is the frame-clock time at which Position was reported.
	UpdatedAt time.Duration

	// Playing reports whether the media element is advancing.
	Playing bool

	// Duration is the track length in seconds; 0 when unknown.
	Duration float64
}

// DurationKnown reports whether Duration is usable for clamping and angles.
func (s State) DurationKnown() bool {
	return s.Duration > 0 && !math.IsInf(s.Duration, 1)
}

// Estimator holds PlaybackState. Transport events and pointer seeks may
// write from any goroutine while the frame loop reads; position and
// timestamp are always updated together under one lock.
type Estimator struct {
	mu    sync.Mutex
	state State

	// floor is the highest estimate handed out since the last
	// discontinuity, so that a late time update cannot move the head back.
	floor float64
}

// New returns an estimator at position 0, paused, with unknown duration.
func New() *Estimator {
	return &Estimator{}
}

// Play marks playback as started at position, reported at time at.
func (e *Estimator) Play(position float64, at time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set(position, at)
	e.state.Playing = true
}

// Pause marks playback as stopped at position.
func (e *Estimator) Pause(position float64, at time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set(position, at)
	e.state.Playing = false
}

// Seek moves to position without changing the play state.
func (e *Estimator) Seek(position float64, at time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set(position, at)
}

// TimeUpdate records a periodic position report from the media element.
// Unlike Seek it is not a discontinuity: estimates keep advancing while the
// report catches up with them.
func (e *Estimator) TimeUpdate(position float64, at time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Position = sanitize(position)
	e.state.UpdatedAt = at
}

// SetDuration records the track length in seconds. Non-finite or
// non-positive values mark the duration unknown.
func (e *Estimator) SetDuration(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !(seconds > 0) || math.IsInf(seconds, 1) {
		seconds = 0
	}
	e.state.Duration = seconds
}

// Reset returns to the initial state, as on track change.
func (e *Estimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = State{}
	e.floor = 0
}

// Estimate returns the position in seconds at frame time renderTs.
//
// While playing, elapsed frame time since the last report is added to the
// last known position; otherwise the last known position is returned as is.
// When the duration is known the estimate never passes it.
func (e *Estimator) Estimate(renderTs time.Duration) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	pos := s.Position
	if s.Playing {
		if renderTs > s.UpdatedAt {
			pos += (renderTs - s.UpdatedAt).Seconds()
		}
		pos = max(pos, e.floor)
		e.floor = pos
	}
	if s.DurationKnown() && pos > s.Duration {
		pos = s.Duration
	}
	return pos
}

// Snapshot returns a copy of the current state.
func (e *Estimator) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// set writes a discontinuous position; callers hold mu.
func (e *Estimator) set(position float64, at time.Duration) {
	e.state.Position = sanitize(position)
	e.state.UpdatedAt = at
	e.floor = e.state.Position
}

func sanitize(position float64) float64 {
	if !(position > 0) || math.IsInf(position, 1) {
		return 0
	}
	return position
}
