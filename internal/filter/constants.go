package filter

// Kernel design constants.
const (
	windowNormalizationFactor = 2.0

	// Table geometry bounds.
	minTaps               = 2
	maxTaps               = 64
	minSamplesPerCrossing = 1
	maxSamplesPerCrossing = 4096

	// Default kernel: 8 taps, 64 table entries per crossing, 80 dB Kaiser taper.
	DefaultTaps               = 8
	DefaultSamplesPerCrossing = 64
	DefaultAttenuation        = 80.0

	// phaseSumThreshold rejects kernels whose phase sums collapse toward zero.
	phaseSumThreshold = 1e-9

	defaultResponsePoints = 512
)

// Magnitude conversion constants.
const (
	minMagnitude = 1e-10 // Avoid log(0)
	dbMultiplier = 20.0  // 20*log10 for magnitude
)

// Binary table file layout.
const (
	tableMagic   = "RFIR"
	tableVersion = 1
)
