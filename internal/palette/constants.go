package palette

// Default palette: a cool blue that brightens with bass energy.
const (
	DefaultHue           = 205.0
	DefaultMinSaturation = 0.35
	DefaultMaxSaturation = 0.9
	DefaultMinLightness  = 0.35
	DefaultMaxLightness  = 0.7
	DefaultLowBins       = 16
	DefaultGain          = 1.5
)

const (
	degreesPerTurn   = 360.0
	degreesPerSector = 60.0
)
