package app

import (
	"image/color"
	"math"
)

const (
	ClassicTheme   ColorTheme = "classic"
	ThermalTheme   ColorTheme = "thermal"
	GrayscaleTheme ColorTheme = "grayscale"
)

type ColorTheme string

var (
	startMarkerColor = color.RGBA{R: 0x00, G: 0xa0, B: 0x00, A: 0xff}
	endMarkerColor   = color.RGBA{R: 0xd0, G: 0x00, B: 0x00, A: 0xff}
)

// Gradient maps track progress [0,1] to a color, so the direction of travel
// is readable from the rendered path.
type Gradient func(progress float64) color.Color

// GetColorTheme returns the gradient for a theme, defaulting to classic.
func GetColorTheme(theme ColorTheme) Gradient {
	switch theme {
	case ThermalTheme:
		return thermalGradient

	case GrayscaleTheme:
		return grayscaleGradient

	default:
		return classicGradient
	}
}

// classicGradient sweeps the hue from blue (start) to red (end).
func classicGradient(progress float64) color.Color {
	progress = clamp01(progress)
	return HSV{H: 240 * (1 - progress), S: 1, V: 0.85}.RGB()
}

// thermalGradient runs black -> red -> yellow -> near white.
func thermalGradient(progress float64) color.Color {
	progress = clamp01(progress)

	switch {
	case progress < 1.0/3:
		return HSV{H: 0, S: 1, V: progress * 3}.RGB()
	case progress < 2.0/3:
		return HSV{H: (progress*3 - 1) * 60, S: 1, V: 1}.RGB()
	default:
		return HSV{H: 60, S: 1 - (progress*3-2)*0.9, V: 1}.RGB()
	}
}

func grayscaleGradient(progress float64) color.Color {
	progress = clamp01(progress)
	v := uint8(32 + progress*191)
	return color.RGBA{R: v, G: v, B: v, A: 0xff}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}

// HSV represents a color in HSV color space
type HSV struct {
	H float64 // Hue [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value [0-1]
}

// RGB converts HSV color space to RGB
func (hsv HSV) RGB() color.Color {
	h := hsv.H
	s := hsv.S
	v := hsv.V

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 0xff,
	}
}
