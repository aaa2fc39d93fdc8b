package ringscope

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tphakala/go-audio-ringscope/internal/angles"
	"github.com/tphakala/go-audio-ringscope/internal/filter"
	"github.com/tphakala/go-audio-ringscope/internal/palette"
	"github.com/tphakala/go-audio-ringscope/internal/phase"
	"github.com/tphakala/go-audio-ringscope/internal/playback"
	"github.com/tphakala/go-audio-ringscope/internal/ring"
	"github.com/tphakala/go-audio-ringscope/internal/viewport"
	"github.com/tphakala/go-audio-ringscope/internal/waveform"
)

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithLogger sets the logger used for one-off failures such as a missing
// rendering context or an envelope that failed to load.
func WithLogger(l *log.Logger) Option {
	return func(v *Visualizer) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithSeekHandler sets the callback invoked when a seek gesture completes.
func WithSeekHandler(h SeekHandler) Option {
	return func(v *Visualizer) {
		v.seek = h
	}
}

// trackAssets is a loaded envelope bound to the track generation it was
// requested for.
type trackAssets struct {
	gen    uint64
	mapper *waveform.Mapper
}

// Visualizer renders the spectral ring, the seek band and the phase trace
// once per frame.
type Visualizer struct {
	cfg    Config
	logger *log.Logger
	seek   SeekHandler
	source AnalysisSource

	ctx    context.Context
	cancel context.CancelFunc

	// Mount and scheduling state, guarded by mu.
	mu         sync.Mutex
	renderer   Renderer
	frames     frameRenderer
	disabled   bool
	closed     bool
	stopFrames func()
	host       FrameHost
	loadCancel context.CancelFunc

	// Published by loader goroutines, adopted at tick start.
	table        atomic.Pointer[filter.Table]
	track        atomic.Pointer[trackAssets]
	trackGen     atomic.Uint64
	trackWanted  atomic.Bool
	resetPending atomic.Bool
	lastTick     atomic.Int64

	// Written from transport and pointer events as well as read by ticks.
	playback *playback.Estimator
	view     *viewport.Manager
	pointer  pointerState

	// Owned by the frame loop.
	tickMu    sync.Mutex
	frame     AnalysisFrame
	frameBufs AnalysisFrame
	dirs      [ringCount]*angles.Table
	rings     [ringCount]*ring.Resampler[float32]
	mapper    *waveform.Mapper
	builder   *phase.Builder
	history   *phase.History
	palette   palette.Palette

	stats statistics
}

// New creates a visualizer reading analysis data from source. A nil source
// renders the idle state. Loading of the interpolation table starts
// immediately in the background.
func New(config *Config, source AnalysisSource, opts ...Option) (*Visualizer, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	builder, err := phase.NewBuilder(config.TimeDomainSize, config.MiterLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &Visualizer{
		cfg:      *config,
		logger:   log.Default(),
		source:   source,
		ctx:      ctx,
		cancel:   cancel,
		playback: playback.New(),
		view:     viewport.NewManager(config.ratios()),
		builder:  builder,
		history: phase.NewHistory(config.MaxHistoryLength,
			builder.VertexCount()*phase.Stride, config.ReducedProfile),
		palette: config.palette(),
	}
	for _, opt := range opts {
		opt(v)
	}

	v.frameBufs = newAnalysisFrame(config.CQBins, config.TimeDomainSize)
	v.frameBufs.Volume = float32(config.Volume)
	v.frame = v.frameBufs

	// The right channel ring is mirrored about the vertical axis so the two
	// channels meet at the start angle.
	left := angles.New(config.CircleSamples, config.StartAngle)
	right := &angles.Table{
		Cos:   make([]float64, left.Len()),
		Sin:   append([]float64(nil), left.Sin...),
		Start: left.Start,
	}
	for i, c := range left.Cos {
		right.Cos[i] = -c
	}
	v.dirs = [ringCount]*angles.Table{left, right}

	go v.loadTable(ctx, config.tableLoader())
	return v, nil
}

func (v *Visualizer) loadTable(ctx context.Context, load filter.Loader) {
	t, err := load(ctx)
	if err != nil {
		if ctx.Err() == nil {
			v.logger.Printf("ringscope: interpolation table unavailable: %v", err)
			v.stats.tableErrors.Add(1)
		}
		return
	}
	v.table.Store(t)
}

// Mount creates the rendering backend. If the factory fails the visualizer
// is disabled for good: the failure is logged once, Start becomes a no-op
// and later Mount calls return ErrMissingContext without retrying.
func (v *Visualizer) Mount(factory RendererFactory) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.disabled {
		return ErrMissingContext
	}
	if v.renderer != nil {
		return nil
	}

	var (
		r   Renderer
		err error
	)
	if factory != nil {
		r, err = factory()
	}
	if err == nil && r == nil {
		err = errors.New("renderer factory returned no renderer")
	}
	if err != nil {
		v.disabled = true
		v.logger.Printf("ringscope: visualizer disabled: %v", err)
		return fmt.Errorf("%w: %w", ErrMissingContext, err)
	}

	v.renderer = r
	v.frames, _ = r.(frameRenderer)
	return nil
}

// Disabled reports whether mounting failed and the visualizer is inert.
func (v *Visualizer) Disabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.disabled
}

// Start registers the frame callback with host. Calling Start while already
// running, after a failed Mount, or after Close does nothing. The host must
// not invoke the callback from within RequestFrames.
func (v *Visualizer) Start(host FrameHost) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case v.disabled || v.closed || v.stopFrames != nil:
		return nil
	case v.renderer == nil:
		return ErrNotMounted
	}
	v.host = host
	v.stopFrames = host.RequestFrames(v.Tick)
	return nil
}

// now returns the frame-clock time of the last started host, or the last
// tick timestamp when no host was ever started.
func (v *Visualizer) now() time.Duration {
	v.mu.Lock()
	host := v.host
	v.mu.Unlock()
	if host != nil {
		return host.Now()
	}
	return time.Duration(v.lastTick.Load())
}

// Stop deregisters the frame callback. It is safe to call repeatedly.
func (v *Visualizer) Stop() {
	v.mu.Lock()
	stop := v.stopFrames
	v.stopFrames = nil
	v.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Running reports whether a frame callback is registered.
func (v *Visualizer) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stopFrames != nil
}

// Close stops the frame loop and cancels background loads. The visualizer
// cannot be restarted.
func (v *Visualizer) Close() {
	v.Stop()

	v.mu.Lock()
	v.closed = true
	if v.loadCancel != nil {
		v.loadCancel()
		v.loadCancel = nil
	}
	v.mu.Unlock()

	v.cancel()
}

// SetSource replaces the analysis source, as when the audio graph is
// rebuilt. A nil source renders the idle state.
func (v *Visualizer) SetSource(source AnalysisSource) {
	v.tickMu.Lock()
	defer v.tickMu.Unlock()
	v.source = source
}

// Resize records a new viewport size in CSS pixels and the device pixel
// ratio. It may be called at any time from any goroutine; the change is
// applied at the start of the next tick.
func (v *Visualizer) Resize(width, height, devicePixelRatio float64) {
	v.view.Resize(width, height, devicePixelRatio)
}

// SetTrack switches to a new track: playback state is reset immediately,
// the phase trail at the next tick, and the seek band is hidden until load
// produces the new envelope. A nil load shows no seek band.
func (v *Visualizer) SetTrack(load EnvelopeLoader) {
	gen := v.trackGen.Add(1)
	v.track.Store(nil)
	v.trackWanted.Store(load != nil)
	v.playback.Reset()
	v.resetPending.Store(true)
	v.pointer.reset()

	v.mu.Lock()
	if v.loadCancel != nil {
		v.loadCancel()
		v.loadCancel = nil
	}
	if v.closed || load == nil {
		v.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(v.ctx)
	v.loadCancel = cancel
	v.mu.Unlock()

	go v.loadEnvelope(ctx, gen, load)
}

func (v *Visualizer) loadEnvelope(ctx context.Context, gen uint64, load EnvelopeLoader) {
	env, err := load(ctx)
	var m *waveform.Mapper
	if err == nil {
		if env == nil {
			err = ErrMalformedEnvelope
		} else {
			m, err = waveform.NewMapper(&waveform.Envelope{Min: env.Min, Max: env.Max}, v.cfg.StartAngle)
		}
	}
	if err != nil {
		if ctx.Err() == nil {
			v.logger.Printf("ringscope: waveform envelope unavailable: %v", err)
			v.stats.envelopeErrors.Add(1)
		}
		return
	}

	next := &trackAssets{gen: gen, mapper: m}
	for {
		cur := v.track.Load()
		if v.trackGen.Load() != gen || (cur != nil && cur.gen > gen) {
			return
		}
		if v.track.CompareAndSwap(cur, next) {
			return
		}
	}
}

// currentTrack returns the envelope mapper of the current track, or nil
// while it is loading.
func (v *Visualizer) currentTrack() *waveform.Mapper {
	tr := v.track.Load()
	if tr == nil || tr.gen != v.trackGen.Load() {
		return nil
	}
	return tr.mapper
}

// Play reports that the media element started playing at position seconds.
// at is the frame-clock time of the event (FrameHost.Now).
func (v *Visualizer) Play(position float64, at time.Duration) {
	v.playback.Play(position, at)
}

// Pause reports that the media element paused at position seconds.
func (v *Visualizer) Pause(position float64, at time.Duration) {
	v.playback.Pause(position, at)
}

// Seek reports that the media element jumped to position seconds.
func (v *Visualizer) Seek(position float64, at time.Duration) {
	v.playback.Seek(position, at)
}

// TimeUpdate reports the media element's periodic position update.
func (v *Visualizer) TimeUpdate(position float64, at time.Duration) {
	v.playback.TimeUpdate(position, at)
}

// DurationChange reports the track length in seconds.
func (v *Visualizer) DurationChange(seconds float64) {
	v.playback.SetDuration(seconds)
}

// Position returns the estimated playback position at frame time ts.
func (v *Visualizer) Position(ts time.Duration) float64 {
	return v.playback.Estimate(ts)
}

// Tick renders one frame stamped ts. It does nothing until a renderer is
// mounted, and never after a failed Mount.
func (v *Visualizer) Tick(ts time.Duration) {
	v.mu.Lock()
	r, fr, disabled := v.renderer, v.frames, v.disabled
	v.mu.Unlock()
	if disabled || r == nil {
		return
	}

	v.tickMu.Lock()
	defer v.tickMu.Unlock()

	v.lastTick.Store(int64(ts))
	v.stats.frames.Add(1)

	if v.resetPending.Swap(false) {
		v.history.Reset()
	}
	v.mapper = v.currentTrack()

	v.pull()

	state, changed := v.view.Apply()
	if changed {
		v.stats.resizes.Add(1)
	}
	if !state.Valid() {
		v.stats.noSurface.Add(1)
		return
	}
	layout := state.Layout

	ringsReady := v.updateRings(layout)
	band := v.updateBand(ts, layout)
	ribbon := v.updatePhase(layout)
	energy := v.palette.Energy(v.frame.Left, v.frame.Right)

	if fr != nil {
		fr.BeginFrame()
	}
	r.SetTransform(Transform(state.Transform))
	if band.ready {
		v.drawBand(r, band, energy)
	}
	if ringsReady {
		v.drawRings(r, energy)
	}
	if ribbon {
		v.drawPhase(r, energy)
	}
	if fr != nil {
		if err := fr.EndFrame(); err != nil {
			if v.stats.renderErrors.Add(1) == 1 {
				v.logger.Printf("ringscope: frame submission failed: %v", err)
			}
		}
	}
}

// pull refreshes the analysis frame. A suspended source, or one that
// resized the frame buffers, leaves a silent frame.
func (v *Visualizer) pull() {
	f := &v.frame
	if v.source == nil || !v.source.Pull(f) {
		f.silence()
		v.stats.suspended.Add(1)
		return
	}
	if len(f.Left) != v.cfg.CQBins || len(f.Right) != v.cfg.CQBins ||
		len(f.TimeLeft) != v.cfg.TimeDomainSize || len(f.TimeRight) != v.cfg.TimeDomainSize {
		volume := f.Volume
		*f = v.frameBufs
		f.Volume = volume
		f.silence()
		v.stats.sourceErrors.Add(1)
	}
	if math.IsNaN(float64(f.Volume)) || f.Volume < 0 {
		f.Volume = 0
	} else if f.Volume > 1 {
		f.Volume = 1
	}
}

// updateRings runs the ring resampler for both channels, building the
// resamplers on the first tick after the interpolation table arrives.
func (v *Visualizer) updateRings(layout viewport.Layout) bool {
	if v.rings[0] == nil {
		t := v.table.Load()
		if t == nil {
			v.stats.ringSkipped.Add(1)
			return false
		}
		for i, dirs := range v.dirs {
			r, err := ring.New[float32](v.cfg.CQBins, t, dirs, v.cfg.RingScale)
			if err != nil {
				v.stats.ringSkipped.Add(1)
				return false
			}
			v.rings[i] = r
		}
	}

	base := float32(layout.RingRadius)
	gain := v.frame.Volume * float32(layout.Unit)
	mags := [ringCount][]float32{v.frame.Left, v.frame.Right}
	for i, r := range v.rings {
		if _, err := r.Process(mags[i], base, gain); err != nil {
			v.stats.ringSkipped.Add(1)
			return false
		}
	}
	return true
}

// bandGeometry is the seek band state for one frame.
type bandGeometry struct {
	ready  bool
	strip  []float32
	played int
	head   []float32
	hover  []float32
}

func (v *Visualizer) updateBand(ts time.Duration, layout viewport.Layout) bandGeometry {
	m := v.mapper
	if m == nil {
		v.stats.bandSkipped.Add(1)
		return bandGeometry{}
	}

	center := float32(layout.BandCenter)
	half := float32(layout.BandHalfHeight)
	b := bandGeometry{
		ready: true,
		strip: m.Map(center, half, v.frame.Volume),
	}

	duration := v.playback.Snapshot().Duration
	angle := waveform.HeadAngle(v.playback.Estimate(ts), duration)
	ptr := v.pointer.snapshot()
	if ptr.dragging {
		angle = ptr.dragAngle
	}
	b.played = m.PlayedBuckets(angle)

	inner := center - half*headMarkerOvershot
	outer := center + half*headMarkerOvershot
	width := float32(v.cfg.HeadWidth)
	if duration > 0 || ptr.dragging {
		b.head = m.Head(angle, inner, outer, width)
	}
	if ptr.hovering && !ptr.dragging {
		b.hover = m.Hover(ptr.hoverAngle, inner, outer, width)
	}
	return b
}

func (v *Visualizer) updatePhase(layout viewport.Layout) bool {
	ribbon, err := v.builder.Build(v.frame.TimeLeft, v.frame.TimeRight,
		float32(layout.PhaseRadius), float32(layout.RibbonWidth))
	if err != nil {
		return false
	}
	v.history.Push(ribbon)
	v.stats.historyLen.Store(int64(v.history.Len()))
	return true
}

func (v *Visualizer) color(energy float64, alpha float32) Color {
	c := v.palette.Color(energy, alpha)
	return Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (v *Visualizer) drawBand(r Renderer, b bandGeometry, energy float64) {
	total := v.mapper.VertexCount()
	playedVerts := b.played * 2

	// The unplayed strip starts at the last played bucket so the quad
	// spanning the head is drawn.
	first := max(playedVerts-stripBucketVerts, 0)

	r.UploadVertices(b.strip, stripStride)
	if n := total - first; n >= 3 {
		r.SetUniformColor(v.color(energy, unplayedBandAlpha))
		r.DrawTriangleStrip(first, n)
	}
	if playedVerts >= 3 {
		r.SetUniformColor(v.color(energy, playedBandAlpha))
		r.DrawTriangleStrip(0, playedVerts)
	}
	if b.hover != nil {
		r.UploadVertices(b.hover, stripStride)
		r.SetUniformColor(v.color(energy, hoverAlpha))
		r.DrawTriangleStrip(0, len(b.hover)/stripStride)
	}
	if b.head != nil {
		r.UploadVertices(b.head, stripStride)
		r.SetUniformColor(v.color(1, headAlpha))
		r.DrawTriangleStrip(0, len(b.head)/stripStride)
	}
}

func (v *Visualizer) drawRings(r Renderer, energy float64) {
	r.SetUniformColor(v.color(energy, ringAlpha))
	for _, rs := range v.rings {
		r.UploadVertices(rs.Vertices(), fanStride)
		r.DrawTriangleFan(0, rs.VertexCount())
	}
}

func (v *Visualizer) drawPhase(r Renderer, energy float64) {
	count := v.builder.VertexCount()
	v.history.Each(func(ribbon []float32, alpha float32) {
		r.UploadVertices(ribbon, phase.Stride)
		r.SetUniformColor(v.color(energy, alpha))
		r.DrawTriangleStrip(0, count)
	})
}

// statistics counts frame outcomes. Counters are updated by the frame loop
// and loader goroutines and read by GetStatistics.
type statistics struct {
	frames         atomic.Int64
	suspended      atomic.Int64
	ringSkipped    atomic.Int64
	bandSkipped    atomic.Int64
	noSurface      atomic.Int64
	resizes        atomic.Int64
	renderErrors   atomic.Int64
	sourceErrors   atomic.Int64
	tableErrors    atomic.Int64
	envelopeErrors atomic.Int64
	seeks          atomic.Int64
	historyLen     atomic.Int64
}

// GetStatistics returns frame counters.
//
// ringSkipped and bandSkipped count frames drawn without the ring or the
// seek band because their asset had not loaded (ErrIncompleteAsset).
func (v *Visualizer) GetStatistics() map[string]int64 {
	s := &v.stats
	return map[string]int64{
		"frames":         s.frames.Load(),
		"suspended":      s.suspended.Load(),
		"ringSkipped":    s.ringSkipped.Load(),
		"bandSkipped":    s.bandSkipped.Load(),
		"noSurface":      s.noSurface.Load(),
		"resizes":        s.resizes.Load(),
		"renderErrors":   s.renderErrors.Load(),
		"sourceErrors":   s.sourceErrors.Load(),
		"tableErrors":    s.tableErrors.Load(),
		"envelopeErrors": s.envelopeErrors.Load(),
		"seeks":          s.seeks.Load(),
		"historyLength":  s.historyLen.Load(),
	}
}

// AssetsReady reports whether the interpolation table and, if a track is
// set, its envelope have loaded. It returns an error wrapping
// ErrIncompleteAsset naming the first missing asset.
func (v *Visualizer) AssetsReady() error {
	if v.table.Load() == nil {
		return fmt.Errorf("%w: interpolation table", ErrIncompleteAsset)
	}
	if v.trackWanted.Load() && v.currentTrack() == nil {
		return fmt.Errorf("%w: waveform envelope", ErrIncompleteAsset)
	}
	return nil
}
