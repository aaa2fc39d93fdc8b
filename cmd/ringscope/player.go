package main

import (
	"sync"
	"time"

	ringscope "github.com/tphakala/go-audio-ringscope"
	"github.com/tphakala/go-audio-ringscope/internal/analysis"
)

// transport receives media element events. *ringscope.Visualizer implements it.
type transport interface {
	Play(position float64, at time.Duration)
	Pause(position float64, at time.Duration)
	Seek(position float64, at time.Duration)
	TimeUpdate(position float64, at time.Duration)
	DurationChange(seconds float64)
}

// player stands in for a media element. It plays a decoded track against a
// clock by writing the samples due since its last advance into the tap, and
// reports transport events the way a media element would.
type player struct {
	mu     sync.Mutex
	track  *track
	tap    *analysis.Tap
	source *analysis.Source
	events transport
	clock  func() time.Duration

	pos        int // frames
	playing    bool
	last       time.Duration
	carry      float64
	lastUpdate time.Duration
	silence    []float32
}

func newPlayer(t *track, tap *analysis.Tap, source *analysis.Source, events transport, clock func() time.Duration) *player {
	p := &player{
		track:   t,
		tap:     tap,
		source:  source,
		events:  events,
		clock:   clock,
		last:    clock(),
		silence: make([]float32, tap.Capacity()*stereoChannels),
	}
	events.DurationChange(t.Seconds())
	return p
}

// Pull implements ringscope.AnalysisSource: the player catches up to the
// frame clock before the analysis reads the tap.
func (p *player) Pull(frame *ringscope.AnalysisFrame) bool {
	p.mu.Lock()
	p.advance(p.clock())
	p.mu.Unlock()
	return p.source.Pull(frame)
}

// advance writes the frames due at now; callers hold mu. While paused the
// tap is fed silence so the spectrum decays.
func (p *player) advance(now time.Duration) {
	elapsed := now - p.last
	p.last = now
	if elapsed <= 0 {
		return
	}
	due := elapsed.Seconds()*float64(p.track.rate) + p.carry
	n := int(due)
	p.carry = due - float64(n)
	if n == 0 {
		return
	}

	capacity := p.tap.Capacity()
	if !p.playing {
		n = min(n, capacity)
		p.tap.WriteInterleaved(p.silence[:n*stereoChannels], stereoChannels)
		return
	}

	end := min(p.pos+n, p.track.frames)
	start := max(p.pos, end-capacity)
	p.tap.WriteInterleaved(p.track.samples[start*stereoChannels:end*stereoChannels], stereoChannels)
	p.pos = end

	if p.pos >= p.track.frames {
		p.playing = false
		p.events.Pause(p.position(), now)
		return
	}
	if now-p.lastUpdate >= timeUpdateInterval {
		p.lastUpdate = now
		p.events.TimeUpdate(p.position(), now)
	}
}

func (p *player) position() float64 {
	return float64(p.pos) / float64(p.track.rate)
}

// Position returns the playback position in seconds.
func (p *player) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position()
}

// Playing reports whether the player is running.
func (p *player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Toggle starts or pauses playback. Starting at the end restarts the track.
func (p *player) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock()
	p.advance(now)
	if p.playing {
		p.playing = false
		p.events.Pause(p.position(), now)
		return
	}
	if p.pos >= p.track.frames {
		p.pos = 0
		p.events.Seek(0, now)
	}
	p.playing = true
	p.lastUpdate = now
	p.events.Play(p.position(), now)
}

// SeekTo moves playback to seconds, clamped to the track.
func (p *player) SeekTo(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock()
	p.advance(now)
	frame := int(seconds * float64(p.track.rate))
	p.pos = min(max(frame, 0), p.track.frames)
	p.events.Seek(p.position(), now)
}

// SeekBy moves playback by delta seconds.
func (p *player) SeekBy(delta float64) {
	p.SeekTo(p.Position() + delta)
}
