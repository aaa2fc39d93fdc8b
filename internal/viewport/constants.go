package viewport

// Layout defaults, as fractions of half the shorter viewport side.
const (
	DefaultRingRatio       = 0.45
	DefaultBandCenterRatio = 0.78
	DefaultBandHalfRatio   = 0.12
	DefaultPhaseRatio      = 0.3
	DefaultRibbonRatio     = 0.004
)

const (
	defaultDevicePixelRatio = 1.0
	clipSpan                = 2.0 // clip space runs from -1 to 1
	matrixSize              = 3
)
