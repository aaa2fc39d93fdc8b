package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Params configures an Analyzer.
type Params struct {
	// FFTSize is the transform length; a power of two.
	FFTSize int `yaml:"fft_size"`

	// Bins is the number of log-spaced output bands.
	Bins int `yaml:"bins"`

	SampleRate float64 `yaml:"sample_rate"`
	MinFreq    float64 `yaml:"min_freq"`
	MaxFreq    float64 `yaml:"max_freq"`

	// Smoothing in [0, 1) blends each band with its previous value.
	Smoothing float64 `yaml:"smoothing"`

	// MinDB and MaxDB map band level onto [0, 1].
	MinDB float64 `yaml:"min_db"`
	MaxDB float64 `yaml:"max_db"`
}

// DefaultParams returns analyzer parameters for bins bands at sampleRate.
func DefaultParams(bins int, sampleRate float64) Params {
	return Params{
		FFTSize:    DefaultFFTSize,
		Bins:       bins,
		SampleRate: sampleRate,
		MinFreq:    DefaultMinFreq,
		MaxFreq:    DefaultMaxFreq,
		Smoothing:  DefaultSmoothing,
		MinDB:      DefaultMinDB,
		MaxDB:      DefaultMaxDB,
	}
}

// Validate checks analyzer parameters.
func (p *Params) Validate() error {
	if p.FFTSize < minFFTSize || p.FFTSize&(p.FFTSize-1) != 0 {
		return fmt.Errorf("fft size %d must be a power of two >= %d", p.FFTSize, minFFTSize)
	}
	if p.Bins < 1 {
		return fmt.Errorf("bins must be positive, got %d", p.Bins)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %f", p.SampleRate)
	}
	if p.MinFreq <= 0 || p.MaxFreq <= p.MinFreq {
		return fmt.Errorf("frequency range [%f, %f] invalid", p.MinFreq, p.MaxFreq)
	}
	if p.Smoothing < 0 || p.Smoothing >= 1 {
		return fmt.Errorf("smoothing %f out of range [0, 1)", p.Smoothing)
	}
	if p.MaxDB <= p.MinDB {
		return fmt.Errorf("dB range [%f, %f] invalid", p.MinDB, p.MaxDB)
	}
	return nil
}

// band covers FFT bins [lo, hi] and has a fractional center bin used when
// the band is narrower than one FFT bin.
type band struct {
	lo, hi int
	center float64
}

// Analyzer turns a block of samples into log-spaced band levels in [0, 1].
// It approximates a constant-Q transform: bands are evenly spaced in
// log-frequency, so each covers a constant ratio of frequencies.
type Analyzer struct {
	params Params
	fft    *fourier.FFT
	window []float64
	bands  []band

	// Per-call scratch.
	seq    []float64
	coeffs []complex128
	mags   []float64
}

// NewAnalyzer creates an analyzer with the given parameters.
func NewAnalyzer(params Params) (*Analyzer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer parameters: %w", err)
	}

	n := params.FFTSize
	win := make([]float64, n)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)

	a := &Analyzer{
		params: params,
		fft:    fourier.NewFFT(n),
		window: win,
		seq:    make([]float64, n),
		coeffs: make([]complex128, n/2+1),
		mags:   make([]float64, n/2+1),
	}
	a.bands = a.layoutBands()
	return a, nil
}

func (a *Analyzer) layoutBands() []band {
	p := a.params
	last := p.FFTSize / 2
	maxFreq := math.Min(p.MaxFreq, p.SampleRate/nyquistDivisor)
	ratio := maxFreq / p.MinFreq
	binHz := p.SampleRate / float64(p.FFTSize)

	bands := make([]band, p.Bins)
	for k := range p.Bins {
		f0 := p.MinFreq * math.Pow(ratio, float64(k)/float64(p.Bins))
		f1 := p.MinFreq * math.Pow(ratio, float64(k+1)/float64(p.Bins))
		lo := min(int(math.Ceil(f0/binHz)), last)
		hi := min(int(math.Floor(f1/binHz)), last)
		bands[k] = band{lo: lo, hi: hi, center: math.Sqrt(f0*f1) / binHz}
	}
	return bands
}

// FFTSize returns the number of samples consumed per call.
func (a *Analyzer) FFTSize() int {
	return a.params.FFTSize
}

// Bins returns the number of output bands.
func (a *Analyzer) Bins() int {
	return a.params.Bins
}

// Process windows samples (len FFTSize), transforms them and writes smoothed
// band levels into out (len Bins). out holds the previous frame's levels.
func (a *Analyzer) Process(out, samples []float32) error {
	if len(samples) != a.params.FFTSize {
		return fmt.Errorf("analyzer expects %d samples, got %d", a.params.FFTSize, len(samples))
	}
	if len(out) != a.params.Bins {
		return fmt.Errorf("analyzer expects %d output bins, got %d", a.params.Bins, len(out))
	}

	for i, s := range samples {
		a.seq[i] = float64(s) * a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.seq)

	// Hann coherent gain is 0.5, so a full-scale sine peaks at N/4.
	norm := 4.0 / float64(a.params.FFTSize)
	for i, c := range a.coeffs {
		a.mags[i] = cmplx.Abs(c) * norm
	}

	p := a.params
	span := p.MaxDB - p.MinDB
	for k, b := range a.bands {
		level := a.bandAmplitude(b)
		db := dbScale * math.Log10(math.Max(level, minAmplitude))
		v := math.Min(math.Max((db-p.MinDB)/span, 0), 1)
		out[k] = float32(p.Smoothing*float64(out[k]) + (1-p.Smoothing)*v)
	}
	return nil
}

// bandAmplitude returns the peak magnitude within the band, or the linearly
// interpolated magnitude at the band center when no FFT bin falls inside.
func (a *Analyzer) bandAmplitude(b band) float64 {
	if b.hi >= b.lo {
		peak := 0.0
		for _, m := range a.mags[b.lo : b.hi+1] {
			peak = math.Max(peak, m)
		}
		return peak
	}
	i := int(b.center)
	if i >= len(a.mags)-1 {
		return a.mags[len(a.mags)-1]
	}
	frac := b.center - float64(i)
	return a.mags[i]*(1-frac) + a.mags[i+1]*frac
}
