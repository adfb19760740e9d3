// Package gradient holds the gradient stop store: an ordered set of color
// stops with insert, delete, move and normalization rules, plus the
// color-at-position primitive shared by every rendering mode.
package gradient

import (
	"math"
	"sort"

	"github.com/opd-ai/go-barcard/internal/colors"
)

// Positions are percentages along the bar.
const (
	MinPosition = 0.0
	MaxPosition = 100.0
)

// MinStops is the smallest stop count a delete may leave behind.
const MinStops = 2

// Default scheme used when gradient mode is first enabled.
const (
	DefaultStartColor = "#ff0000"
	DefaultMidColor   = "#ffff00"
	DefaultEndColor   = "#00ff00"
	// InsertFallbackColor is used for inserts into lists with fewer than two stops.
	InsertFallbackColor = "#808080"
)

// Stop is one color anchor. Color is the raw, unresolved reference as
// authored (hex, rgb(), theme variable, ...).
type Stop struct {
	ID       int
	Position float64
	Color    string
}

// IsBoundary reports whether the stop is pinned at 0 or 100.
func (s Stop) IsBoundary() bool {
	return s.Position == MinPosition || s.Position == MaxPosition
}

// List is an immutable snapshot of a stop set. Every edit returns a new
// List; the id counter travels with the snapshot so ids stay unique for the
// lifetime of the list without any package-level state.
type List struct {
	stops  []Stop
	nextID int
}

// NewDefault returns the three-stop red/yellow/green list with ids 1, 2, 3.
func NewDefault() List {
	return List{
		stops: []Stop{
			{ID: 1, Position: 0, Color: DefaultStartColor},
			{ID: 2, Position: 50, Color: DefaultMidColor},
			{ID: 3, Position: 100, Color: DefaultEndColor},
		},
		nextID: 4,
	}
}

// NewList builds a List from existing stops, e.g. loaded from a card
// configuration. The id counter continues above the highest id present.
func NewList(stops ...Stop) List {
	l := List{stops: append([]Stop(nil), stops...), nextID: 1}
	for _, s := range stops {
		if s.ID >= l.nextID {
			l.nextID = s.ID + 1
		}
	}
	return l
}

// Reset returns the default list, resetting the id counter.
func (l List) Reset() List {
	return NewDefault()
}

// Len returns the number of stops.
func (l List) Len() int {
	return len(l.stops)
}

// NextID returns the id the next inserted stop will receive.
func (l List) NextID() int {
	return l.nextID
}

// Stops returns a copy of the stops in list order.
func (l List) Stops() []Stop {
	return append([]Stop(nil), l.stops...)
}

// Sorted returns a copy of the stops ordered by ascending position. Stops
// sharing a position keep their list order.
func (l List) Sorted() []Stop {
	return SortStops(l.stops)
}

// Find returns the stop with the given id.
func (l List) Find(id int) (Stop, bool) {
	if i := l.index(id); i >= 0 {
		return l.stops[i], true
	}
	return Stop{}, false
}

func (l List) index(id int) int {
	for i, s := range l.stops {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (l List) clone() List {
	return List{stops: l.Stops(), nextID: l.nextID}
}

// SortStops returns a position-sorted copy of stops.
func SortStops(stops []Stop) []Stop {
	sorted := append([]Stop(nil), stops...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	return sorted
}

// InsertAtLargestGap adds a stop in the middle of the widest gap between
// adjacent stops. Ties go to the first gap found scanning left to right.
// The new color is the midpoint of the two neighbours, resolved through r.
// Lists with fewer than two stops get a mid-gray stop at 50.
func (l List) InsertAtLargestGap(r colors.Resolver) (List, Stop) {
	next := l.clone()
	stop := Stop{ID: next.nextID, Position: 50, Color: InsertFallbackColor}
	next.nextID++

	sorted := l.Sorted()
	if len(sorted) >= 2 {
		gapStart := 0
		largest := math.Inf(-1)
		for i := 0; i < len(sorted)-1; i++ {
			if gap := sorted[i+1].Position - sorted[i].Position; gap > largest {
				largest = gap
				gapStart = i
			}
		}
		start, end := sorted[gapStart], sorted[gapStart+1]
		c1, _ := colors.Resolve(r, start.Color)
		c2, _ := colors.Resolve(r, end.Color)
		stop.Position = math.Round(start.Position + largest/2)
		stop.Color = colors.Lerp(c1, c2, 0.5).String()
	}

	next.stops = append(next.stops, stop)
	return next, stop
}

// Delete removes the stop with the given id. It refuses (returning the list
// unchanged and false) when the id is unknown, when the stop is pinned at 0
// or 100, or when fewer than MinStops would remain.
func (l List) Delete(id int) (List, bool) {
	i := l.index(id)
	if i < 0 || len(l.stops) <= MinStops || l.stops[i].IsBoundary() {
		return l, false
	}
	next := l.clone()
	next.stops = append(next.stops[:i], next.stops[i+1:]...)
	return next, true
}

// UpdatePosition moves a stop, clamping the position to [0,100].
func (l List) UpdatePosition(id int, position float64) (List, bool) {
	i := l.index(id)
	if i < 0 {
		return l, false
	}
	next := l.clone()
	next.stops[i].Position = ClampPosition(position)
	return next, true
}

// UpdateColor replaces the raw color of a stop.
func (l List) UpdateColor(id int, color string) (List, bool) {
	i := l.index(id)
	if i < 0 {
		return l, false
	}
	next := l.clone()
	next.stops[i].Color = color
	return next, true
}

// NormalizeBoundaries is applied when a free-form edit is committed. Every
// position is pulled back into [0,100], so a stop dragged past an end is
// pinned to that end. Interim edits may violate this until then.
func (l List) NormalizeBoundaries() List {
	next := l.clone()
	for i := range next.stops {
		next.stops[i].Position = ClampPosition(next.stops[i].Position)
	}
	return next
}

// ClampPosition clamps p into [0,100]; NaN becomes 0.
func ClampPosition(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < MinPosition:
		return MinPosition
	case p > MaxPosition:
		return MaxPosition
	default:
		return p
	}
}
