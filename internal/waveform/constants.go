package waveform

// PCM normalization
const (
	pcm8BitOffset   = 128 // 8-bit WAV samples are unsigned, centered on 128
	pcm8BitDepth    = 8
	defaultBitDepth = 16 // assumed when the decoder reports no bit depth
)

// Marker geometry
const (
	markerVertices   = 4 // quad drawn as a triangle strip
	scalarsPerVertex = 2
	markerScalars    = markerVertices * scalarsPerVertex

	// stripScalarsPerBucket is two (x, y) vertices per bucket: min then max.
	stripScalarsPerBucket = 4
)
