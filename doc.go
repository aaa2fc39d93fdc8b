// Package ringscope is the geometry and scheduling core of a circular audio
// visualizer: a spectral ring, a radial waveform seek band with a playback
// head, and a fading stereo phase trace, all rebuilt once per frame.
//
// # Overview
//
// Each frame the [Visualizer] pulls an [AnalysisFrame] from an
// [AnalysisSource], maps the constant-Q magnitudes of both channels onto an
// evenly spaced ring with windowed-sinc interpolation, lays the track's
// min/max envelope around the ring as a seek band, extrudes the stereo
// time-domain samples into a ribbon, and submits everything to a [Renderer].
//
// Drawing backends implement the small [Renderer] interface; the library
// never talks to a graphics API itself.
//
// # Quick Start
//
//	cfg := ringscope.DefaultConfig()
//	v, err := ringscope.New(cfg, source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	if err := v.Mount(newRenderer); err != nil {
//	    // No usable backend: the visualizer stays disabled.
//	    log.Print(err)
//	}
//	v.Resize(800, 800, 2)
//	v.SetTrack(ringscope.WAVEnvelope("track.wav", cfg.EnvelopeBuckets))
//	_ = v.Start(host)
//
// Transport events from the media element keep the playback head in step:
//
//	v.Play(position, host.Now())
//	v.TimeUpdate(position, host.Now())
//	v.DurationChange(duration)
//
// # Frame Pipeline
//
// A tick runs, in order:
//
//  1. pending track reset (phase history)
//  2. analysis pull; a suspended source yields a flat, silent frame
//  3. viewport recompute, when a resize is pending
//  4. spectral rings, once the interpolation table has loaded
//  5. seek band and playback head, once the envelope has loaded
//  6. phase ribbon and history
//  7. color from low-frequency energy, then submission to the renderer
//
// Missing assets skip only the step that needs them. Nothing that happens in
// a tick stops the loop; failures are counted in [Visualizer.GetStatistics].
//
// # Thread Safety
//
// Resize, SetTrack, the transport methods and the pointer methods may be
// called from any goroutine. Tick must only be called by one goroutine at a
// time, which is what a [FrameHost] guarantees.
package ringscope
