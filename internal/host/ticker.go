// Package host provides frame hosts that drive the visualizer's per-frame
// callback outside a browser-style animation loop.
package host

import (
	"context"
	"sync"
	"time"
)

// DefaultFPS is the frame rate used when none is given.
const DefaultFPS = 60

// Ticker drives frame callbacks from a time.Ticker on one goroutine.
//
// When a callback overruns the frame interval, the ticks missed in the
// meantime are dropped rather than queued, the same way a throttled
// animation loop skips frames.
type Ticker struct {
	ctx      context.Context
	interval time.Duration
	origin   time.Time
}

// NewTicker creates a host ticking fps times per second until ctx is done.
func NewTicker(ctx context.Context, fps int) *Ticker {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Ticker{
		ctx:      ctx,
		interval: time.Second / time.Duration(fps),
		origin:   time.Now(),
	}
}

// Interval returns the time between frames.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Now returns the time elapsed since the ticker was created.
func (t *Ticker) Now() time.Duration {
	return time.Since(t.origin)
}

// RequestFrames starts calling callback once per interval. The returned
// cancel stops the loop and waits for an in-flight callback to return; it
// must not be called from inside the callback.
func (t *Ticker) RequestFrames(callback func(ts time.Duration)) (cancel func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-t.ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				callback(t.Now())
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}
