package ringscope

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/go-audio-ringscope/internal/filter"
	"github.com/tphakala/go-audio-ringscope/internal/palette"
	"github.com/tphakala/go-audio-ringscope/internal/phase"
	"github.com/tphakala/go-audio-ringscope/internal/viewport"
)

// Config holds visualizer configuration.
type Config struct {
	// CQBins is the number of magnitude bins per channel in each AnalysisFrame.
	// Must be at least CircleSamples: the ring resampler only decimates.
	CQBins int `yaml:"cq_bins"`

	// CircleSamples is the number of evenly spaced ring vertices.
	CircleSamples int `yaml:"circle_samples"`

	// TimeDomainSize is the number of samples per channel feeding the phase
	// trace. Must be a power of two.
	TimeDomainSize int `yaml:"time_domain_size"`

	// StartAngle is where the ring and the track start, in radians.
	// Angles increase clockwise on screen.
	StartAngle float64 `yaml:"start_angle"`

	// RingScale multiplies the filtered magnitude, in layout units, before it
	// is added to the ring's base radius.
	RingScale float64 `yaml:"ring_scale"`

	// Filter configures the ring interpolation kernel.
	Filter FilterConfig `yaml:"filter"`

	// MaxHistoryLength is the number of phase ribbons kept for the trail.
	MaxHistoryLength int `yaml:"max_history_length"`

	// ReducedProfile draws only the current phase ribbon, for slow devices.
	ReducedProfile bool `yaml:"reduced_profile"`

	// MiterLimit caps the ribbon miter length at sharp corners.
	MiterLimit float64 `yaml:"miter_limit"`

	// EnvelopeBuckets is the bucket count used when reducing audio files.
	EnvelopeBuckets int `yaml:"envelope_buckets"`

	// HeadWidth is the width of the playback head marker in CSS pixels.
	HeadWidth float64 `yaml:"head_width"`

	// HitSlop widens the seek band for pointer hit testing, in CSS pixels.
	HitSlop float64 `yaml:"hit_slop"`

	// Volume is used for frames whose source reports no volume of its own.
	Volume float64 `yaml:"volume"`

	Layout  LayoutConfig  `yaml:"layout"`
	Palette PaletteConfig `yaml:"palette"`
}

// FilterConfig configures the windowed-sinc interpolation table.
type FilterConfig struct {
	// Path loads a table written by fir-table instead of designing one.
	Path string `yaml:"path"`

	// Taps is the kernel span in input bins. Must be even.
	Taps int `yaml:"taps"`

	// SamplesPerCrossing is the table oversampling factor.
	SamplesPerCrossing int `yaml:"samples_per_crossing"`

	// Attenuation is the Kaiser taper's stopband attenuation in dB.
	Attenuation float64 `yaml:"attenuation"`
}

// LayoutConfig sizes each element as a fraction of half the shorter side
// of the viewport.
type LayoutConfig struct {
	Ring           float64 `yaml:"ring"`
	BandCenter     float64 `yaml:"band_center"`
	BandHalfHeight float64 `yaml:"band_half_height"`
	Phase          float64 `yaml:"phase"`
	RibbonWidth    float64 `yaml:"ribbon_width"`
}

// PaletteConfig controls the energy-driven color. Saturation and lightness
// rise from their minimum to their maximum with low-frequency energy.
type PaletteConfig struct {
	Hue           float64 `yaml:"hue"`
	MinSaturation float64 `yaml:"min_saturation"`
	MaxSaturation float64 `yaml:"max_saturation"`
	MinLightness  float64 `yaml:"min_lightness"`
	MaxLightness  float64 `yaml:"max_lightness"`
	LowBins       int     `yaml:"low_bins"`
	Gain          float64 `yaml:"gain"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	ratios := viewport.DefaultRatios()
	pal := palette.Default()
	return &Config{
		CQBins:         DefaultCQBins,
		CircleSamples:  DefaultCircleSamples,
		TimeDomainSize: DefaultTimeDomainSize,
		StartAngle:     DefaultStartAngle,
		RingScale:      DefaultRingScale,
		Filter: FilterConfig{
			Taps:               filter.DefaultTaps,
			SamplesPerCrossing: filter.DefaultSamplesPerCrossing,
			Attenuation:        filter.DefaultAttenuation,
		},
		MaxHistoryLength: DefaultMaxHistoryLength,
		MiterLimit:       phase.DefaultMiterLimit,
		EnvelopeBuckets:  DefaultEnvelopeBuckets,
		HeadWidth:        DefaultHeadWidth,
		HitSlop:          DefaultHitSlop,
		Volume:           DefaultVolume,
		Layout: LayoutConfig{
			Ring:           ratios.Ring,
			BandCenter:     ratios.BandCenter,
			BandHalfHeight: ratios.BandHalfHeight,
			Phase:          ratios.Phase,
			RibbonWidth:    ratios.RibbonWidth,
		},
		Palette: PaletteConfig{
			Hue:           pal.Hue,
			MinSaturation: pal.MinSaturation,
			MaxSaturation: pal.MaxSaturation,
			MinLightness:  pal.MinLightness,
			MaxLightness:  pal.MaxLightness,
			LowBins:       pal.LowBins,
			Gain:          pal.Gain,
		},
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.CircleSamples < 1 {
		return fmt.Errorf("%w: circle samples must be positive", ErrInvalidConfig)
	}
	if c.CQBins < c.CircleSamples {
		return fmt.Errorf("%w: cq bins (%d) must be at least circle samples (%d)",
			ErrInvalidConfig, c.CQBins, c.CircleSamples)
	}
	if c.CQBins > maxCQBins {
		return fmt.Errorf("%w: too many cq bins (max %d)", ErrInvalidConfig, maxCQBins)
	}
	if c.TimeDomainSize < 1 || c.TimeDomainSize > maxTimeDomainSize || c.TimeDomainSize&(c.TimeDomainSize-1) != 0 {
		return fmt.Errorf("%w: time domain size %d must be a power of two up to %d",
			ErrInvalidConfig, c.TimeDomainSize, maxTimeDomainSize)
	}
	if math.IsNaN(c.StartAngle) || math.IsInf(c.StartAngle, 0) {
		return fmt.Errorf("%w: start angle must be finite", ErrInvalidConfig)
	}
	if c.RingScale < 0 {
		return fmt.Errorf("%w: ring scale must not be negative", ErrInvalidConfig)
	}
	if c.MaxHistoryLength < 1 || c.MaxHistoryLength > maxHistoryLength {
		return fmt.Errorf("%w: history length must be 1-%d", ErrInvalidConfig, maxHistoryLength)
	}
	if c.MiterLimit < 1 {
		return fmt.Errorf("%w: miter limit must be at least 1", ErrInvalidConfig)
	}
	if c.EnvelopeBuckets < 1 {
		return fmt.Errorf("%w: envelope buckets must be positive", ErrInvalidConfig)
	}
	if c.HeadWidth < 0 || c.HitSlop < 0 {
		return fmt.Errorf("%w: head width and hit slop must not be negative", ErrInvalidConfig)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume must be in [0, 1]", ErrInvalidConfig)
	}

	if c.Filter.Path == "" {
		params := c.tableParams()
		if err := params.Validate(); err != nil {
			return fmt.Errorf("%w: filter: %w", ErrInvalidConfig, err)
		}
	}
	ratios := c.ratios()
	if err := ratios.Validate(); err != nil {
		return fmt.Errorf("%w: layout: %w", ErrInvalidConfig, err)
	}
	pal := c.palette()
	if err := pal.Validate(); err != nil {
		return fmt.Errorf("%w: palette: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Ratio returns the number of magnitude bins consumed per ring vertex.
func (c *Config) Ratio() float64 {
	return float64(c.CQBins) / float64(c.CircleSamples)
}

// tableParams derives interpolation table parameters: the cutoff follows the
// decimation ratio so the ring does not alias.
func (c *Config) tableParams() filter.TableParams {
	p := filter.DefaultTableParams(c.Ratio())
	p.Taps = c.Filter.Taps
	p.SamplesPerCrossing = c.Filter.SamplesPerCrossing
	p.Attenuation = c.Filter.Attenuation
	return p
}

func (c *Config) tableLoader() filter.Loader {
	if c.Filter.Path != "" {
		return filter.FileLoader(c.Filter.Path)
	}
	return filter.DesignLoader(c.tableParams())
}

func (c *Config) ratios() viewport.Ratios {
	return viewport.Ratios{
		Ring:           c.Layout.Ring,
		BandCenter:     c.Layout.BandCenter,
		BandHalfHeight: c.Layout.BandHalfHeight,
		Phase:          c.Layout.Phase,
		RibbonWidth:    c.Layout.RibbonWidth,
	}
}

func (c *Config) palette() palette.Palette {
	return palette.Palette{
		Hue:           c.Palette.Hue,
		MinSaturation: c.Palette.MinSaturation,
		MaxSaturation: c.Palette.MaxSaturation,
		MinLightness:  c.Palette.MinLightness,
		MaxLightness:  c.Palette.MaxLightness,
		LowBins:       c.Palette.LowBins,
		Gain:          c.Palette.Gain,
	}
}
