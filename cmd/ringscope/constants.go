package main

import "time"

const (
	// CLI defaults
	defaultFPS      = 60
	minRequiredArgs = 1

	// Player
	stereoChannels     = 2
	timeUpdateInterval = 250 * time.Millisecond // media elements report roughly 4 times a second
	seekStep           = 5.0                    // seconds per arrow key
	volumeStep         = 0.1

	// tapCapacityFactor sizes the tap relative to the analysis window.
	tapCapacityFactor = 2

	// Braille cell geometry, in dots
	dotsPerCellX = 2
	dotsPerCellY = 4

	eventQueueSize = 32
)

// PCM decoding
const (
	defaultBitDepth = 16
	pcm8BitDepth    = 8
	pcm8BitOffset   = 128 // 8-bit WAV samples are unsigned
)
