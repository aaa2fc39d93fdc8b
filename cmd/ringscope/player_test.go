package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ringscope "github.com/tphakala/go-audio-ringscope"
	"github.com/tphakala/go-audio-ringscope/internal/analysis"
)

type transportEvent struct {
	kind     string
	position float64
	at       time.Duration
}

type fakeTransport struct {
	mu       sync.Mutex
	events   []transportEvent
	duration float64
}

func (f *fakeTransport) record(kind string, pos float64, at time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, transportEvent{kind, pos, at})
}

func (f *fakeTransport) Play(p float64, at time.Duration)       { f.record("play", p, at) }
func (f *fakeTransport) Pause(p float64, at time.Duration)      { f.record("pause", p, at) }
func (f *fakeTransport) Seek(p float64, at time.Duration)       { f.record("seek", p, at) }
func (f *fakeTransport) TimeUpdate(p float64, at time.Duration) { f.record("timeupdate", p, at) }
func (f *fakeTransport) DurationChange(s float64)               { f.duration = s }

func (f *fakeTransport) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.kind
	}
	return out
}

type fakeClock struct{ now time.Duration }

func (c *fakeClock) Now() time.Duration { return c.now }

// rampTrack returns a 1000 Hz stereo track of frames samples whose left
// channel counts up from 1/frames.
func rampTrack(frames int) *track {
	t := &track{samples: make([]float32, frames*stereoChannels), rate: 1000, frames: frames}
	for i := range frames {
		t.samples[i*2] = float32(i+1) / float32(frames)
		t.samples[i*2+1] = -t.samples[i*2]
	}
	return t
}

func newTestPlayer(t *testing.T, tr *track) (*player, *fakeTransport, *fakeClock, *analysis.Tap) {
	t.Helper()
	params := analysis.DefaultParams(16, float64(tr.rate))
	params.FFTSize = 64
	params.MaxFreq = 400
	params.MinFreq = 20
	tap := analysis.NewTap(params.FFTSize)
	src, err := analysis.NewSource(tap, params)
	require.NoError(t, err)

	clock := &fakeClock{}
	events := &fakeTransport{}
	return newPlayer(tr, tap, src, events, clock.Now), events, clock, tap
}

func TestPlayer_ReportsDuration(t *testing.T) {
	_, events, _, _ := newTestPlayer(t, rampTrack(2000))
	assert.InDelta(t, 2.0, events.duration, 1e-12)
}

func TestPlayer_AdvancesWithClock(t *testing.T) {
	p, events, clock, tap := newTestPlayer(t, rampTrack(2000))

	p.Toggle()
	assert.True(t, p.Playing())
	clock.now = 50 * time.Millisecond
	p.mu.Lock()
	p.advance(clock.now)
	p.mu.Unlock()

	assert.InDelta(t, 0.05, p.Position(), 1e-12)
	assert.Equal(t, uint64(50), tap.Written())

	l := make([]float32, 1)
	r := make([]float32, 1)
	tap.Latest(l, r)
	assert.InDelta(t, 50.0/2000, l[0], 1e-6)
	assert.InDelta(t, -50.0/2000, r[0], 1e-6)
	assert.Equal(t, []string{"play"}, events.kinds())
}

func TestPlayer_TimeUpdates(t *testing.T) {
	p, events, clock, _ := newTestPlayer(t, rampTrack(5000))
	p.Toggle()

	for ms := 10; ms <= 600; ms += 10 {
		clock.now = time.Duration(ms) * time.Millisecond
		p.mu.Lock()
		p.advance(clock.now)
		p.mu.Unlock()
	}
	assert.Equal(t, []string{"play", "timeupdate", "timeupdate"}, events.kinds())
}

func TestPlayer_PausesAtEnd(t *testing.T) {
	p, events, clock, _ := newTestPlayer(t, rampTrack(100))
	p.Toggle()

	clock.now = time.Second
	var frame ringscope.AnalysisFrame
	frame.Left = make([]float32, 16)
	frame.Right = make([]float32, 16)
	frame.TimeLeft = make([]float32, 8)
	frame.TimeRight = make([]float32, 8)
	assert.True(t, p.Pull(&frame))

	assert.False(t, p.Playing())
	assert.InDelta(t, 0.1, p.Position(), 1e-12)
	kinds := events.kinds()
	assert.Equal(t, "pause", kinds[len(kinds)-1])

	// Playing again from the end restarts.
	p.Toggle()
	assert.Equal(t, []string{"play", "pause", "seek", "play"}, events.kinds())
	assert.Zero(t, p.Position())
}

func TestPlayer_PausedWritesSilence(t *testing.T) {
	p, _, clock, tap := newTestPlayer(t, rampTrack(2000))
	p.Toggle()
	clock.now = 20 * time.Millisecond
	p.Toggle() // pause at 0.02

	clock.now = 100 * time.Millisecond
	p.mu.Lock()
	p.advance(clock.now)
	p.mu.Unlock()

	assert.InDelta(t, 0.02, p.Position(), 1e-12)
	l := make([]float32, 1)
	r := make([]float32, 1)
	tap.Latest(l, r)
	assert.Zero(t, l[0])
}

func TestPlayer_Seek(t *testing.T) {
	p, events, clock, _ := newTestPlayer(t, rampTrack(2000))
	clock.now = 10 * time.Millisecond

	p.SeekTo(1.5)
	assert.InDelta(t, 1.5, p.Position(), 1e-12)
	p.SeekBy(-5)
	assert.Zero(t, p.Position())
	p.SeekTo(10)
	assert.InDelta(t, 2.0, p.Position(), 1e-12)

	assert.Equal(t, []string{"seek", "seek", "seek"}, events.kinds())
}

func TestPlayer_CarriesFractionalFrames(t *testing.T) {
	p, _, clock, _ := newTestPlayer(t, rampTrack(2000))
	p.Toggle()

	// 1000 Hz: 1.5 ms steps yield 1 or 2 frames but never lose time.
	for i := 1; i <= 10; i++ {
		clock.now = time.Duration(i) * 1500 * time.Microsecond
		p.mu.Lock()
		p.advance(clock.now)
		p.mu.Unlock()
	}
	assert.InDelta(t, 0.015, p.Position(), 1e-12)
}
