package playback

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const t0 = 3 * time.Second

func TestEstimate_DeadReckoning(t *testing.T) {
	e := New()
	e.Play(10.0, t0)

	assert.Equal(t, 10.5, e.Estimate(t0+500*time.Millisecond))
}

func TestEstimate_PausedIgnoresElapsed(t *testing.T) {
	e := New()
	e.Pause(10.0, t0)

	for _, dt := range []time.Duration{0, time.Millisecond, 500 * time.Millisecond, time.Hour} {
		assert.Equal(t, 10.0, e.Estimate(t0+dt))
	}
}

func TestEstimate_RenderBeforeUpdate(t *testing.T) {
	e := New()
	e.Play(10.0, t0)

	// A frame stamped before the report uses the report as is.
	assert.Equal(t, 10.0, e.Estimate(t0-16*time.Millisecond))
}

func TestEstimate_MonotonicWhilePlaying(t *testing.T) {
	e := New()
	e.Play(5, t0)

	prev := e.Estimate(t0)
	ts := t0
	for i := range 200 {
		ts += 16 * time.Millisecond
		// Host reports lag slightly behind the frame clock.
		if i%15 == 0 {
			e.TimeUpdate(5+(ts-t0).Seconds()-0.05, ts)
		}
		got := e.Estimate(ts)
		require.GreaterOrEqual(t, got, prev, "frame %d", i)
		prev = got
	}
}

func TestSeek_IsDiscontinuity(t *testing.T) {
	e := New()
	e.Play(50, t0)
	require.InDelta(t, 51, e.Estimate(t0+time.Second), 1e-12)

	e.Seek(20, t0+time.Second)
	assert.Equal(t, 20.0, e.Estimate(t0+time.Second))
	assert.True(t, e.Snapshot().Playing, "seek keeps play state")
}

func TestEstimate_ClampedToDuration(t *testing.T) {
	e := New()
	e.SetDuration(120)
	e.Play(119.5, t0)

	assert.Equal(t, 120.0, e.Estimate(t0+2*time.Second))
}

func TestSetDuration_Unknown(t *testing.T) {
	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		e := New()
		e.SetDuration(d)
		assert.False(t, e.Snapshot().DurationKnown(), "duration %v", d)
	}
}

func TestPositionSanitized(t *testing.T) {
	e := New()
	e.Seek(math.NaN(), t0)
	assert.Equal(t, 0.0, e.Estimate(t0))

	e.Seek(-3, t0)
	assert.Equal(t, 0.0, e.Estimate(t0))
}

func TestReset(t *testing.T) {
	e := New()
	e.SetDuration(300)
	e.Play(42, t0)
	_ = e.Estimate(t0 + time.Second)

	e.Reset()
	assert.Equal(t, State{}, e.Snapshot())
	assert.Equal(t, 0.0, e.Estimate(t0+time.Hour))
}

func TestPauseFreezesAtReportedPosition(t *testing.T) {
	e := New()
	e.Play(10, t0)
	e.Pause(10.25, t0+250*time.Millisecond)

	s := e.Snapshot()
	assert.False(t, s.Playing)
	assert.Equal(t, 10.25, s.Position)
	assert.Equal(t, t0+250*time.Millisecond, s.UpdatedAt)
}

func TestConcurrentWriters(t *testing.T) {
	e := New()
	e.SetDuration(100)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 1000 {
			e.Seek(float64(i%100), time.Duration(i)*time.Millisecond)
		}
	}()
	go func() {
		defer wg.Done()
		for i := range 1000 {
			e.TimeUpdate(float64(i%100), time.Duration(i)*time.Millisecond)
		}
	}()

	for i := range 1000 {
		got := e.Estimate(time.Duration(i) * time.Millisecond)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 100.0)
	}
	wg.Wait()
}

func BenchmarkEstimate(b *testing.B) {
	e := New()
	e.Play(10, 0)
	ts := time.Duration(0)
	for b.Loop() {
		ts += time.Millisecond
		_ = e.Estimate(ts)
	}
}
