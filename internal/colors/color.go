// Package colors implements the canonical RGBA color model used by bar
// rendering: parsing of hex, rgb(), rgba(), hsl(), named and transparent
// colors, serialization back to CSS, and alpha-preserving interpolation.
package colors

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	// ErrEmptyColor is returned when an empty color string is parsed.
	ErrEmptyColor = errors.New("empty color string")

	// ErrIndirectReference is returned by Parse for theme or variable
	// references. They must be resolved through a Resolver first.
	ErrIndirectReference = errors.New("indirect color reference")

	// ErrUnrecognizedFormat is returned when no supported syntax matches.
	ErrUnrecognizedFormat = errors.New("unrecognized color format")
)

// Value is a canonical color. RGB channels are 0-255, alpha is 0.0-1.0.
type Value struct {
	R, G, B uint8
	A       float64
}

// NeutralGray is the color every failed parse degrades to.
var NeutralGray = Value{R: 128, G: 128, B: 128, A: 1}

// Transparent is the value of the "transparent" keyword.
var Transparent = Value{}

// RGB returns an opaque Value.
func RGB(r, g, b uint8) Value {
	return Value{R: r, G: g, B: b, A: 1}
}

// Parse parses a concrete color string.
// Supported formats:
//   - Hex: "#RGB", "#RGBA", "#RRGGBB", "#RRGGBBAA"
//   - Functions: "rgb(r, g, b)", "rgba(r, g, b, a)", "hsl(h, s%, l%)", "hsla(h, s%, l%, a)"
//   - "transparent" and CSS named colors
//
// Indirect references such as "var(--primary-color)" yield ErrIndirectReference.
func Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, ErrEmptyColor
	}
	if IsReference(s) {
		return Value{}, fmt.Errorf("%w: %q", ErrIndirectReference, s)
	}

	lower := strings.ToLower(s)
	switch {
	case lower == "transparent":
		return Transparent, nil
	case strings.HasPrefix(lower, "#"):
		return parseHex(lower[1:])
	case strings.HasPrefix(lower, "rgba("), strings.HasPrefix(lower, "rgb("):
		return parseRGBFunc(lower)
	case strings.HasPrefix(lower, "hsla("), strings.HasPrefix(lower, "hsl("):
		return parseHSLFunc(lower)
	}

	if c, ok := colornames.Map[lower]; ok {
		return Value{R: c.R, G: c.G, B: c.B, A: float64(c.A) / 255}, nil
	}

	return Value{}, fmt.Errorf("%w: %q", ErrUnrecognizedFormat, s)
}

// MustParse parses a color string and panics if parsing fails.
// Use this only for known-good literals.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsReference reports whether s names a theme or environment color rather
// than a concrete value.
func IsReference(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "var(") || strings.HasPrefix(s, "--")
}

func parseHex(s string) (Value, error) {
	switch len(s) {
	case 3, 4:
		expanded := make([]byte, 0, len(s)*2)
		for i := 0; i < len(s); i++ {
			expanded = append(expanded, s[i], s[i])
		}
		return parseHex(string(expanded))
	case 6, 8:
	default:
		return Value{}, fmt.Errorf("invalid hex color length: %d", len(s))
	}

	var channels [4]uint8
	channels[3] = 255
	for i := 0; i < len(s)/2; i++ {
		b, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return Value{}, fmt.Errorf("invalid hex component %q: %w", s[i*2:i*2+2], err)
		}
		channels[i] = uint8(b)
	}

	v := Value{R: channels[0], G: channels[1], B: channels[2], A: 1}
	if len(s) == 8 {
		v.A = float64(channels[3]) / 255
	}
	return v, nil
}

// funcArgs splits "name(a, b, c)" into its trimmed arguments.
func funcArgs(s string) ([]string, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("invalid color function: %q", s)
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func parseRGBFunc(s string) (Value, error) {
	parts, err := funcArgs(s)
	if err != nil {
		return Value{}, err
	}
	if len(parts) != 3 && len(parts) != 4 {
		return Value{}, fmt.Errorf("rgb() requires 3 or 4 values, got %d", len(parts))
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		c, err := parseChannel(parts[i])
		if err != nil {
			return Value{}, fmt.Errorf("invalid channel %d: %w", i, err)
		}
		rgb[i] = c
	}

	v := Value{R: rgb[0], G: rgb[1], B: rgb[2], A: 1}
	if len(parts) == 4 {
		a, err := parseAlpha(parts[3])
		if err != nil {
			return Value{}, fmt.Errorf("invalid alpha: %w", err)
		}
		v.A = a
	}
	return v, nil
}

func parseHSLFunc(s string) (Value, error) {
	parts, err := funcArgs(s)
	if err != nil {
		return Value{}, err
	}
	if len(parts) != 3 && len(parts) != 4 {
		return Value{}, fmt.Errorf("hsl() requires 3 or 4 values, got %d", len(parts))
	}

	h, err := strconv.ParseFloat(strings.TrimSuffix(parts[0], "deg"), 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid hue: %w", err)
	}
	sat, err := parsePercent(parts[1])
	if err != nil {
		return Value{}, fmt.Errorf("invalid saturation: %w", err)
	}
	light, err := parsePercent(parts[2])
	if err != nil {
		return Value{}, fmt.Errorf("invalid lightness: %w", err)
	}

	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, sat, light).Clamped().RGB255()

	v := Value{R: r, G: g, B: b, A: 1}
	if len(parts) == 4 {
		a, err := parseAlpha(parts[3])
		if err != nil {
			return Value{}, fmt.Errorf("invalid alpha: %w", err)
		}
		v.A = a
	}
	return v, nil
}

// parseChannel accepts integer or decimal channel values and rounds them
// into 0-255.
func parseChannel(s string) (uint8, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return clampChannel(math.Round(f)), nil
}

func parseAlpha(s string) (float64, error) {
	if strings.HasSuffix(s, "%") {
		p, err := parsePercent(s)
		if err != nil {
			return 0, err
		}
		return p, nil
	}
	a, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return clampAlpha(a), nil
}

// parsePercent parses "50%" or "50" as 0.5, clamped to [0,1].
func parsePercent(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	return clampAlpha(f / 100), nil
}

func clampChannel(f float64) uint8 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}

func clampAlpha(a float64) float64 {
	switch {
	case math.IsNaN(a) || a <= 0:
		return 0
	case a >= 1:
		return 1
	default:
		return a
	}
}

// String serializes the color for CSS: "#rrggbb" when fully opaque,
// "rgba(r,g,b,a)" otherwise. Alpha uses the shortest exact decimal so the
// output parses back to the same Value.
func (v Value) String() string {
	if v.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", v.R, v.G, v.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", v.R, v.G, v.B,
		strconv.FormatFloat(clampAlpha(v.A), 'f', -1, 64))
}

// Opaque reports whether the color has full alpha.
func (v Value) Opaque() bool {
	return v.A >= 1
}

// Lerp interpolates linearly between c1 and c2. RGB channels are rounded to
// the nearest integer; alpha interpolates continuously. The factor is not
// clamped: callers are expected to pass a value in [0,1].
func Lerp(c1, c2 Value, factor float64) Value {
	return Value{
		R: lerpChannel(c1.R, c2.R, factor),
		G: lerpChannel(c1.G, c2.G, factor),
		B: lerpChannel(c1.B, c2.B, factor),
		A: lerpAlpha(c1.A, c2.A, factor),
	}
}

// lerpAlpha keeps the result inside the [a1,a2] span so float rounding never
// pushes it past an endpoint.
func lerpAlpha(a1, a2, factor float64) float64 {
	if factor == 1 {
		return clampAlpha(a2)
	}
	a := a1 + (a2-a1)*factor
	if factor >= 0 && factor <= 1 {
		a = math.Max(math.Min(a1, a2), math.Min(math.Max(a1, a2), a))
	}
	return clampAlpha(a)
}

func lerpChannel(a, b uint8, factor float64) uint8 {
	fa := float64(a)
	return clampChannel(math.Round(fa + (float64(b)-fa)*factor))
}
