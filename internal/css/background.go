// Package css turns gradient stop lists into CSS background expressions.
//
// Three display modes are supported. Full mode paints every stop at its
// native position and relies on the bar's width for the fill effect.
// Cropped mode squeezes the [0, percentage] slice of the gradient into the
// visible fill. Value-based mode emits a single flat color sampled at the
// current percentage.
package css

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/opd-ai/go-barcard/internal/colors"
	"github.com/opd-ai/go-barcard/internal/gradient"
)

var (
	// ErrUnknownMode is returned by ParseMode for unsupported mode names.
	ErrUnknownMode = errors.New("unknown gradient mode")

	// ErrUnknownDirection is returned by ParseDirection for unsupported names.
	ErrUnknownDirection = errors.New("unknown fill direction")
)

// Mode selects how a gradient is mapped onto the bar.
type Mode int

const (
	// ModeFull renders all stops across the whole bar.
	ModeFull Mode = iota
	// ModeCropped renders only the stops up to the current percentage.
	ModeCropped
	// ModeValueBased renders a flat color sampled at the percentage.
	ModeValueBased
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeCropped:
		return "cropped"
	case ModeValueBased:
		return "value-based"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name. An empty name selects ModeFull.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return ModeFull, nil
	case "cropped", "crop":
		return ModeCropped, nil
	case "value-based", "value_based", "value":
		return ModeValueBased, nil
	default:
		return ModeFull, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Direction is the fill direction of a bar.
type Direction int

const (
	// LeftToRight fills from the left edge.
	LeftToRight Direction = iota
	// RightToLeft fills from the right edge.
	RightToLeft
)

// Keyword returns the linear-gradient direction keyword.
func (d Direction) Keyword() string {
	if d == RightToLeft {
		return "to left"
	}
	return "to right"
}

// String returns the configuration name of the direction.
func (d Direction) String() string {
	if d == RightToLeft {
		return "right-to-left"
	}
	return "left-to-right"
}

// ParseDirection parses a direction name. An empty name selects LeftToRight.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ltr", "left-to-right", "to right":
		return LeftToRight, nil
	case "rtl", "right-to-left", "to left":
		return RightToLeft, nil
	default:
		return LeftToRight, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// Options controls Background.
type Options struct {
	Mode       Mode
	Percentage float64
	Direction  Direction
	// Resolver turns theme references into concrete colors. May be nil.
	Resolver colors.Resolver
}

// Output is the result of Build.
type Output struct {
	// CSS is the background expression.
	CSS string
	// Fallbacks counts stop colors that could not be resolved and were
	// rendered as neutral gray.
	Fallbacks int
}

// Background renders stops as a CSS background expression. It never fails:
// unresolvable colors render as neutral gray and the percentage is clamped
// into [0,100].
func Background(stops []gradient.Stop, opts Options) string {
	return Build(stops, opts).CSS
}

// Build is Background with resolution statistics.
func Build(stops []gradient.Stop, opts Options) Output {
	resolved, fallbacks := gradient.ResolveStops(stops, opts.Resolver)
	return Output{
		CSS:       BackgroundResolved(resolved, opts.Mode, opts.Percentage, opts.Direction),
		Fallbacks: fallbacks,
	}
}

// BackgroundResolved renders an already sorted and resolved stop list.
func BackgroundResolved(stops []gradient.Resolved, mode Mode, pct float64, dir Direction) string {
	switch len(stops) {
	case 0:
		return colors.NeutralGray.String()
	case 1:
		return stops[0].Color.String()
	}

	pct = gradient.ClampPosition(pct)
	switch mode {
	case ModeValueBased:
		return gradient.ColorAt(stops, pct).String()
	case ModeCropped:
		return cropped(stops, pct, dir)
	default:
		return Gradient(stops, dir)
	}
}

func cropped(stops []gradient.Resolved, pct float64, dir Direction) string {
	first := stops[0].Color
	if pct <= 0 {
		return first.String()
	}

	var visible []gradient.Resolved
	for _, s := range stops {
		if s.Position <= pct {
			visible = append(visible, gradient.Resolved{
				Position: s.Position / pct * 100,
				Color:    s.Color,
			})
		}
	}
	if len(visible) == 0 {
		return Gradient([]gradient.Resolved{{Position: 0, Color: first}, {Position: 100, Color: first}}, dir)
	}
	if visible[len(visible)-1].Position < 100 {
		visible = append(visible, gradient.Resolved{Position: 100, Color: gradient.ColorAt(stops, pct)})
	}
	return Gradient(visible, dir)
}

// Gradient emits a linear-gradient over stops in the given direction.
func Gradient(stops []gradient.Resolved, dir Direction) string {
	var b strings.Builder
	b.WriteString("linear-gradient(")
	b.WriteString(dir.Keyword())
	for _, s := range stops {
		b.WriteString(", ")
		b.WriteString(s.Color.String())
		b.WriteByte(' ')
		b.WriteString(Percent(s.Position))
	}
	b.WriteByte(')')
	return b.String()
}

// Percent formats p as a CSS percentage rounded to two decimals.
func Percent(p float64) string {
	r := math.Round(p*100) / 100
	if r == 0 || math.IsNaN(r) {
		r = 0 // drops negative zero and NaN
	}
	return strconv.FormatFloat(r, 'f', -1, 64) + "%"
}
