package phase

import "math"

// History is a bounded FIFO of ribbons backed by one preallocated arena.
// Pushing into a full history evicts the oldest ribbon; Len never exceeds Cap.
type History struct {
	arena    []float32
	lens     []int
	slotSize int

	capacity int
	oldest   int
	n        int
}

// NewHistory creates a history of capacity ribbons of up to slotSize scalars.
// The reduced profile keeps only the current ribbon.
func NewHistory(capacity, slotSize int, reduced bool) *History {
	if reduced || capacity < 1 {
		capacity = 1
	}
	slotSize = max(slotSize, 0)
	return &History{
		arena:    make([]float32, capacity*slotSize),
		lens:     make([]int, capacity),
		slotSize: slotSize,
		capacity: capacity,
	}
}

// Push copies ribbon into the next slot, evicting the oldest ribbon when full.
// A ribbon larger than the slot size regrows the arena and clears the
// history, which only happens when the frame size changes.
func (h *History) Push(ribbon []float32) {
	if len(ribbon) > h.slotSize {
		h.slotSize = len(ribbon)
		h.arena = make([]float32, h.capacity*h.slotSize)
		h.Reset()
	}

	var slot int
	if h.n < h.capacity {
		slot = (h.oldest + h.n) % h.capacity
		h.n++
	} else {
		slot = h.oldest
		h.oldest = (h.oldest + 1) % h.capacity
	}

	start := slot * h.slotSize
	copy(h.arena[start:start+len(ribbon)], ribbon)
	h.lens[slot] = len(ribbon)
}

// Len returns the number of stored ribbons.
func (h *History) Len() int {
	return h.n
}

// Cap returns the maximum number of stored ribbons.
func (h *History) Cap() int {
	return h.capacity
}

// At returns the i-th stored ribbon, 0 being the oldest. The slice aliases
// the arena and is valid until the next Push.
func (h *History) At(i int) []float32 {
	slot := (h.oldest + i) % h.capacity
	start := slot * h.slotSize
	return h.arena[start : start+h.lens[slot]]
}

// Alpha returns the fade alpha of the i-th stored ribbon, 0 being the oldest.
// Positions are counted back from the newest, which is always at Cap, so
// the newest ribbon is fully opaque however full the history is.
func (h *History) Alpha(i int) float32 {
	return float32(Alpha(h.capacity-(h.n-1-i), h.capacity))
}

// Each calls fn for every ribbon from oldest to newest with its fade alpha.
func (h *History) Each(fn func(ribbon []float32, alpha float32)) {
	for i := range h.n {
		fn(h.At(i), h.Alpha(i))
	}
}

// Reset drops all ribbons and keeps the arena.
func (h *History) Reset() {
	h.oldest = 0
	h.n = 0
	clear(h.lens)
}

// Alpha is the quartic fade for 1-indexed position within capacity:
// (position/capacity)^4.
func Alpha(position, capacity int) float64 {
	if capacity < 1 || position < 1 {
		return 0
	}
	if position >= capacity {
		return 1
	}
	return math.Pow(float64(position)/float64(capacity), fadeExponent)
}
