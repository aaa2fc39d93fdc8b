// Package analysis is a reference audio-analysis collaborator: it taps the
// stereo signal being played and produces per-frame constant-Q style
// magnitudes and time-domain snapshots for the visualizer.
package analysis

import (
	"sync"
)

// Tap is a stereo ring that always holds the most recent samples of each
// channel. A producer writes as audio is played; the frame loop copies out
// the latest window. Capacity is rounded up to a power of two so positions
// wrap with a mask.
type Tap struct {
	left  []float32
	right []float32
	mask  int

	writePos uint64
	mu       sync.Mutex
}

// NewTap creates a tap holding at least capacity samples per channel.
func NewTap(capacity int) *Tap {
	cap2 := 1
	for cap2 < capacity {
		cap2 <<= 1
	}
	return &Tap{
		left:  make([]float32, cap2),
		right: make([]float32, cap2),
		mask:  cap2 - 1,
	}
}

// Capacity returns the number of samples kept per channel.
func (t *Tap) Capacity() int {
	return len(t.left)
}

// Write appends a block of per-channel samples, overwriting the oldest.
// left and right must have equal length; the shorter length is used otherwise.
func (t *Tap) Write(left, right []float32) {
	n := min(len(left), len(right))

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range n {
		p := int(t.writePos) & t.mask
		t.left[p] = left[i]
		t.right[p] = right[i]
		t.writePos++
	}
}

// WriteInterleaved appends interleaved stereo frames. Mono input (channels 1)
// is duplicated to both channels; channels beyond two are ignored.
func (t *Tap) WriteInterleaved(samples []float32, channels int) {
	if channels < 1 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i+channels <= len(samples); i += channels {
		p := int(t.writePos) & t.mask
		l := samples[i]
		r := l
		if channels > 1 {
			r = samples[i+1]
		}
		t.left[p] = l
		t.right[p] = r
		t.writePos++
	}
}

// Latest copies the most recent len(dstLeft) samples into dstLeft and
// dstRight, oldest first. Positions not yet written are zero.
func (t *Tap) Latest(dstLeft, dstRight []float32) {
	n := min(len(dstLeft), len(dstRight), len(t.left))

	t.mu.Lock()
	defer t.mu.Unlock()

	start := int64(t.writePos) - int64(n)
	for i := range n {
		pos := start + int64(i)
		if pos < 0 {
			dstLeft[i], dstRight[i] = 0, 0
			continue
		}
		p := int(pos) & t.mask
		dstLeft[i] = t.left[p]
		dstRight[i] = t.right[p]
	}
}

// Written returns the total number of frames written since creation or Clear.
func (t *Tap) Written() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writePos
}

// Clear zeroes the tap.
func (t *Tap) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	clear(t.left)
	clear(t.right)
	t.writePos = 0
}
