package render

import (
	"image/color"
	"math"

	"github.com/opd-ai/go-barcard/internal/colors"
)

// ToNRGBA converts a color value to a non-premultiplied RGBA color.
func ToNRGBA(v colors.Value) color.NRGBA {
	return color.NRGBA{R: v.R, G: v.G, B: v.B, A: uint8(math.Round(v.A * 255))}
}

// Luminance returns the relative luminance of a color (0-1).
// Uses the sRGB luminance formula from WCAG 2.0.
func Luminance(c color.NRGBA) float64 {
	r := sRGBToLinear(float64(c.R) / 255.0)
	g := sRGBToLinear(float64(c.G) / 255.0)
	b := sRGBToLinear(float64(c.B) / 255.0)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// sRGBToLinear converts an sRGB component to linear RGB.
func sRGBToLinear(c float64) float64 {
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// IsLight returns true if the color is considered light (luminance > 0.5).
func IsLight(c color.NRGBA) bool {
	return Luminance(c) > 0.5
}

// AlphaBlend composites fg over bg and returns an opaque color when bg is
// opaque.
func AlphaBlend(bg, fg color.NRGBA) color.NRGBA {
	if fg.A == 255 {
		return fg
	}
	if fg.A == 0 {
		return bg
	}
	fa := float64(fg.A) / 255
	ba := float64(bg.A) / 255
	outA := fa + ba*(1-fa)
	if outA == 0 {
		return color.NRGBA{}
	}
	mix := func(f, b uint8) uint8 {
		return uint8(math.Round((float64(f)*fa + float64(b)*ba*(1-fa)) / outA))
	}
	return color.NRGBA{
		R: mix(fg.R, bg.R),
		G: mix(fg.G, bg.G),
		B: mix(fg.B, bg.B),
		A: uint8(math.Round(outA * 255)),
	}
}
