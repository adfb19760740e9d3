package css

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/go-barcard/internal/colors"
)

// Solid renders a flat background from a single color reference.
func Solid(color string, r colors.Resolver) string {
	v, _ := colors.Resolve(r, color)
	return v.String()
}

// PatternKind is an animated-pattern fill.
type PatternKind int

const (
	// PatternStripes draws translucent diagonal stripes over the color.
	PatternStripes PatternKind = iota
	// PatternShimmer draws a moving highlight band over the color.
	PatternShimmer
)

// String returns the configuration name of the pattern.
func (k PatternKind) String() string {
	switch k {
	case PatternStripes:
		return "stripes"
	case PatternShimmer:
		return "shimmer"
	default:
		return fmt.Sprintf("PatternKind(%d)", int(k))
	}
}

// ErrUnknownPattern is returned by ParsePattern for unsupported names.
var ErrUnknownPattern = errors.New("unknown fill pattern")

// ParsePattern parses a pattern name. An empty name selects stripes.
func ParsePattern(s string) (PatternKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stripes":
		return PatternStripes, nil
	case "shimmer":
		return PatternShimmer, nil
	default:
		return PatternStripes, fmt.Errorf("%w: %q", ErrUnknownPattern, s)
	}
}

const (
	stripeOverlay  = "rgba(255,255,255,0.15)"
	shimmerOverlay = "rgba(255,255,255,0.35)"
)

// Pattern renders a pattern fill layered over color.
func Pattern(kind PatternKind, color string, r colors.Resolver) string {
	base := Solid(color, r)
	switch kind {
	case PatternShimmer:
		return fmt.Sprintf("linear-gradient(90deg, transparent 0%%, %s 50%%, transparent 100%%), %s",
			shimmerOverlay, base)
	default:
		return fmt.Sprintf("repeating-linear-gradient(45deg, %[1]s 0px, %[1]s 10px, transparent 10px, transparent 20px), %[2]s",
			stripeOverlay, base)
	}
}
