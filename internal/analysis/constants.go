package analysis

// Analyzer defaults
const (
	DefaultFFTSize   = 2048
	DefaultMinFreq   = 30.0
	DefaultMaxFreq   = 16000.0
	DefaultSmoothing = 0.6
	DefaultMinDB     = -70.0
	DefaultMaxDB     = -10.0

	nyquistDivisor = 2.0
	minFFTSize     = 16
	dbScale        = 20.0
	minAmplitude   = 1e-12 // floor before log10
)
