package term

// Braille cell geometry
const (
	dotsPerCellX = 2
	dotsPerCellY = 4
	brailleBlank = 0x2800
)

const (
	// DefaultAlphaThreshold is the minimum alpha a primitive needs to light a dot.
	DefaultAlphaThreshold = 0.2

	colorMax = 255
)
