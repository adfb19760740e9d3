package gradient

import (
	"github.com/opd-ai/go-barcard/internal/colors"
)

// Resolved is a stop whose color reference has been turned into a Value.
type Resolved struct {
	Position float64
	Color    colors.Value
}

// ResolveStops sorts stops by position and resolves each color through r.
// The second return counts colors that fell back to a default.
func ResolveStops(stops []Stop, r colors.Resolver) ([]Resolved, int) {
	sorted := SortStops(stops)
	out := make([]Resolved, len(sorted))
	fallbacks := 0
	for i, s := range sorted {
		c, ok := colors.Resolve(r, s.Color)
		if !ok {
			fallbacks++
		}
		out[i] = Resolved{Position: s.Position, Color: c}
	}
	return out, fallbacks
}

// ColorAt returns the color at position pos of a sorted, resolved stop
// list. A position landing exactly on a stop yields that stop's color;
// otherwise the two bracketing stops are interpolated. Positions outside the
// stop range take the nearest end color, and two bracketing stops at the
// same position yield the lower one. An empty list yields NeutralGray.
func ColorAt(stops []Resolved, pos float64) colors.Value {
	switch len(stops) {
	case 0:
		return colors.NeutralGray
	case 1:
		return stops[0].Color
	}

	if pos <= stops[0].Position {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if pos >= last.Position {
		return last.Color
	}

	for i := 0; i < len(stops)-1; i++ {
		lower, upper := stops[i], stops[i+1]
		if pos == lower.Position {
			return lower.Color
		}
		if pos < upper.Position {
			span := upper.Position - lower.Position
			if span <= 0 {
				return lower.Color
			}
			return colors.Lerp(lower.Color, upper.Color, (pos-lower.Position)/span)
		}
	}
	return last.Color
}
