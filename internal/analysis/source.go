package analysis

import (
	"fmt"
	"math"
	"sync/atomic"

	ringscope "github.com/tphakala/go-audio-ringscope"
)

// Source feeds the visualizer from a Tap: each Pull analyzes the latest
// FFTSize samples of both channels and copies the newest TimeDomainSize
// samples for the phase trace.
type Source struct {
	tap   *Tap
	left  *Analyzer
	right *Analyzer

	scratchL []float32
	scratchR []float32

	volume    atomic.Uint32 // float32 bits
	suspended atomic.Bool
}

// NewSource creates a source over tap. The tap must hold at least FFTSize samples.
func NewSource(tap *Tap, params Params) (*Source, error) {
	left, err := NewAnalyzer(params)
	if err != nil {
		return nil, err
	}
	right, err := NewAnalyzer(params)
	if err != nil {
		return nil, err
	}
	if tap.Capacity() < params.FFTSize {
		return nil, fmt.Errorf("tap holds %d samples, analyzer needs %d", tap.Capacity(), params.FFTSize)
	}

	s := &Source{
		tap:      tap,
		left:     left,
		right:    right,
		scratchL: make([]float32, params.FFTSize),
		scratchR: make([]float32, params.FFTSize),
	}
	s.SetVolume(1)
	return s, nil
}

// SetVolume sets the master volume reported with each frame, clamped to [0, 1].
func (s *Source) SetVolume(v float64) {
	if math.IsNaN(v) {
		v = 0
	}
	v = math.Min(math.Max(v, 0), 1)
	s.volume.Store(math.Float32bits(float32(v)))
}

// Volume returns the current master volume.
func (s *Source) Volume() float64 {
	return float64(math.Float32frombits(s.volume.Load()))
}

// Suspend marks the audio graph as suspended (true) or running (false).
func (s *Source) Suspend(suspended bool) {
	s.suspended.Store(suspended)
}

// Pull implements ringscope.AnalysisSource.
func (s *Source) Pull(frame *ringscope.AnalysisFrame) bool {
	if s.suspended.Load() {
		return false
	}
	if len(frame.TimeLeft) > len(s.scratchL) || len(frame.TimeRight) != len(frame.TimeLeft) {
		return false
	}

	s.tap.Latest(s.scratchL, s.scratchR)
	if err := s.left.Process(frame.Left, s.scratchL); err != nil {
		return false
	}
	if err := s.right.Process(frame.Right, s.scratchR); err != nil {
		return false
	}

	n := len(frame.TimeLeft)
	copy(frame.TimeLeft, s.scratchL[len(s.scratchL)-n:])
	copy(frame.TimeRight, s.scratchR[len(s.scratchR)-n:])
	frame.Volume = math.Float32frombits(s.volume.Load())
	return true
}

// Silent is a source whose audio graph is always suspended.
type Silent struct{}

// Pull implements ringscope.AnalysisSource.
func (Silent) Pull(*ringscope.AnalysisFrame) bool {
	return false
}
