// Package fill computes the rasterized appearance of a bar: which part of
// the bar is filled and the color of every column inside the fill. It is
// shared by the window and terminal previews.
package fill

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-barcard/internal/colors"
	"github.com/opd-ai/go-barcard/internal/css"
	"github.com/opd-ai/go-barcard/internal/gradient"
)

// Kind selects how the filled part of a bar is colored.
type Kind int

const (
	// KindGradient colors the fill from a stop list.
	KindGradient Kind = iota
	// KindSolid colors the fill with one color.
	KindSolid
	// KindPattern overlays a pattern on one color.
	KindPattern
)

// String returns the name of the fill kind.
func (k Kind) String() string {
	switch k {
	case KindGradient:
		return "gradient"
	case KindSolid:
		return "solid"
	case KindPattern:
		return "pattern"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Pattern overlay strengths and sizes, matching the CSS pattern layers.
const (
	StripeWidth    = 10
	StripeStrength = 0.15
	ShimmerWidth   = 0.3
	ShimmerPeak    = 0.35
)

// Spec describes a bar ready to be drawn.
type Spec struct {
	Kind       Kind
	Percentage float64
	Mode       css.Mode
	Direction  css.Direction
	// Stops is sorted and resolved; used by KindGradient.
	Stops []gradient.Resolved
	// Color is the solid or pattern base color.
	Color   colors.Value
	Pattern css.PatternKind
}

// Width returns the number of filled columns out of n.
func (s Spec) Width(n int) int {
	if n <= 0 {
		return 0
	}
	w := int(math.Round(float64(n) * clampPercent(s.Percentage) / 100))
	if w > n {
		w = n
	}
	return w
}

// Filled reports whether column i of n lies inside the fill.
func (s Spec) Filled(i, n int) bool {
	w := s.Width(n)
	if s.Direction == css.RightToLeft {
		return i >= n-w
	}
	return i < w
}

// Relative maps column i of n to its position inside the fill, from 0 at the
// anchored edge to 1 at the leading edge. Columns outside the fill yield a
// negative value.
func (s Spec) Relative(i, n int) float64 {
	w := s.Width(n)
	if w == 0 || !s.Filled(i, n) {
		return -1
	}
	offset := i
	if s.Direction == css.RightToLeft {
		offset = n - 1 - i
	}
	return (float64(offset) + 0.5) / float64(w)
}

// BaseColor returns the unpatterned color at relative fill position r.
//
// A full gradient spans the whole fill. A cropped gradient shows only the
// stop range up to the percentage, so the leading edge carries the color of
// the current value. Value-based fills are flat.
func (s Spec) BaseColor(r float64) colors.Value {
	if s.Kind != KindGradient {
		return s.Color
	}
	if len(s.Stops) == 0 {
		return colors.NeutralGray
	}
	pct := clampPercent(s.Percentage)
	switch s.Mode {
	case css.ModeValueBased:
		return gradient.ColorAt(s.Stops, pct)
	case css.ModeCropped:
		if pct <= 0 {
			return s.Stops[0].Color
		}
		return gradient.ColorAt(s.Stops, r*pct)
	default:
		return gradient.ColorAt(s.Stops, r*gradient.MaxPosition)
	}
}

// Cell is one rasterized column.
type Cell struct {
	Color  colors.Value
	Filled bool
}

// Columns rasterizes the bar into n columns. Pattern overlays move with
// phase, which callers advance to animate them.
func (s Spec) Columns(n int, phase float64) []Cell {
	if n <= 0 {
		return nil
	}
	cells := make([]Cell, n)
	for i := range cells {
		r := s.Relative(i, n)
		if r < 0 {
			continue
		}
		c := s.BaseColor(r)
		if s.Kind == KindPattern {
			c = s.overlay(c, i, n, phase)
		}
		cells[i] = Cell{Color: c, Filled: true}
	}
	return cells
}

var highlight = colors.RGB(255, 255, 255)

// overlay lightens column i of the base color according to the pattern.
func (s Spec) overlay(c colors.Value, i, n int, phase float64) colors.Value {
	switch s.Pattern {
	case css.PatternShimmer:
		center := math.Mod(phase, 1+ShimmerWidth) - ShimmerWidth/2
		x := (float64(i) + 0.5) / float64(n)
		d := math.Abs(x-center) / (ShimmerWidth / 2)
		if d >= 1 {
			return c
		}
		return blend(c, ShimmerPeak*(1-d))
	default:
		shift := int(phase * StripeWidth * 2)
		if ((i+shift)/StripeWidth)%2 == 0 {
			return blend(c, StripeStrength)
		}
		return c
	}
}

// blend lays white at the given opacity over c, keeping c's alpha.
func blend(c colors.Value, strength float64) colors.Value {
	out := colors.Lerp(c, highlight, strength)
	out.A = c.A
	return out
}

func clampPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
