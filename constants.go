package ringscope

import "math"

// Geometry defaults
const (
	// DefaultCQBins is the number of constant-Q magnitude bins per channel.
	DefaultCQBins = 256

	// DefaultCircleSamples is the number of evenly spaced ring vertices.
	DefaultCircleSamples = 128

	// DefaultTimeDomainSize is the number of stereo sample pairs per phase ribbon.
	DefaultTimeDomainSize = 512

	// DefaultEnvelopeBuckets is the waveform resolution used when reducing audio files.
	DefaultEnvelopeBuckets = 720

	// DefaultStartAngle puts the first ring vertex and the track start at 12 o'clock.
	DefaultStartAngle = -math.Pi / 2

	// DefaultRingScale converts a unit magnitude into a fraction of the layout unit.
	DefaultRingScale = 0.35

	DefaultMaxHistoryLength = 12
	DefaultVolume           = 1.0
)

// Interaction defaults, in CSS pixels
const (
	DefaultHeadWidth = 3.0
	DefaultHitSlop   = 8.0
)

// Draw alphas
const (
	ringAlpha          = 0.55
	unplayedBandAlpha  = 0.35
	playedBandAlpha    = 1.0
	hoverAlpha         = 0.5
	headAlpha          = 1.0
	headMarkerOvershot = 1.15 // head bar extends past the band edges by this factor
)

// Limits
const (
	maxCQBins         = 1 << 14
	maxTimeDomainSize = 1 << 15
	maxHistoryLength  = 256
	ringCount         = 2 // left and right channel rings
	fanStride         = 2
	stripStride       = 2
	stripBucketVerts  = 2 // outer and inner vertex per envelope bucket
)
