// Package palette derives the frame color from low-frequency energy: the hue
// stays fixed while saturation and lightness rise with the bass.
package palette

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f32"
)

// RGBA is a color with components in [0, 1].
type RGBA struct {
	R, G, B, A float32
}

// Palette configures the energy-to-color mapping.
type Palette struct {
	// Hue in degrees [0, 360).
	Hue float64 `yaml:"hue"`

	// Saturation and lightness ranges, each in [0, 1]. Silence maps to the
	// minimum and full-scale energy to the maximum.
	MinSaturation float64 `yaml:"min_saturation"`
	MaxSaturation float64 `yaml:"max_saturation"`
	MinLightness  float64 `yaml:"min_lightness"`
	MaxLightness  float64 `yaml:"max_lightness"`

	// LowBins is the number of lowest magnitude bins averaged per channel.
	LowBins int `yaml:"low_bins"`

	// Gain scales the averaged magnitude before it is clamped to [0, 1].
	Gain float64 `yaml:"gain"`
}

// Default returns the standard palette.
func Default() Palette {
	return Palette{
		Hue:           DefaultHue,
		MinSaturation: DefaultMinSaturation,
		MaxSaturation: DefaultMaxSaturation,
		MinLightness:  DefaultMinLightness,
		MaxLightness:  DefaultMaxLightness,
		LowBins:       DefaultLowBins,
		Gain:          DefaultGain,
	}
}

// Validate checks that ranges are ordered and within [0, 1].
func (p Palette) Validate() error {
	if p.Hue < 0 || p.Hue >= degreesPerTurn {
		return fmt.Errorf("hue %f out of range [0, 360)", p.Hue)
	}
	if !unitRange(p.MinSaturation, p.MaxSaturation) {
		return fmt.Errorf("saturation range [%f, %f] invalid", p.MinSaturation, p.MaxSaturation)
	}
	if !unitRange(p.MinLightness, p.MaxLightness) {
		return fmt.Errorf("lightness range [%f, %f] invalid", p.MinLightness, p.MaxLightness)
	}
	if p.LowBins < 1 {
		return fmt.Errorf("low bins must be positive, got %d", p.LowBins)
	}
	if p.Gain < 0 {
		return fmt.Errorf("gain must not be negative, got %f", p.Gain)
	}
	return nil
}

func unitRange(lo, hi float64) bool {
	return lo >= 0 && hi <= 1 && lo <= hi
}

// Energy returns the mean of the lowest LowBins magnitudes across both
// channels, scaled by Gain and clamped to [0, 1].
func (p Palette) Energy(left, right []float32) float64 {
	nl := min(p.LowBins, len(left))
	nr := min(p.LowBins, len(right))
	if nl+nr == 0 {
		return 0
	}
	sum := float64(f32.Sum(left[:nl])) + float64(f32.Sum(right[:nr]))
	e := sum / float64(nl+nr) * p.Gain
	if math.IsNaN(e) {
		return 0
	}
	return math.Min(math.Max(e, 0), 1)
}

// Color maps energy in [0, 1] to a color with the given alpha.
func (p Palette) Color(energy float64, alpha float32) RGBA {
	energy = math.Min(math.Max(energy, 0), 1)
	s := p.MinSaturation + energy*(p.MaxSaturation-p.MinSaturation)
	l := p.MinLightness + energy*(p.MaxLightness-p.MinLightness)
	r, g, b := HSLToRGB(p.Hue, s, l)
	return RGBA{R: float32(r), G: float32(g), B: float32(b), A: alpha}
}

// HSLToRGB converts hue in degrees and saturation/lightness in [0, 1] to RGB.
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}
	h = math.Mod(h, degreesPerTurn)
	if h < 0 {
		h += degreesPerTurn
	}

	c := (1 - math.Abs(2*l-1)) * s
	hp := h / degreesPerSector
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	m := l - c/2

	switch int(hp) {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
