package render

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/opd-ai/go-barcard/internal/fill"
)

// WidgetStyle defines the visual appearance of a progress bar.
type WidgetStyle struct {
	// TrackColor is the color of the unfilled part.
	TrackColor color.NRGBA
	// BorderColor is the color used for the border.
	BorderColor color.NRGBA
	// BorderWidth is the width of the border in pixels.
	BorderWidth float32
	// ShowBorder indicates whether to draw the border.
	ShowBorder bool
	// ShowTrack indicates whether to draw the track.
	ShowTrack bool
}

// DefaultWidgetStyle returns a WidgetStyle with sensible defaults.
func DefaultWidgetStyle() WidgetStyle {
	return WidgetStyle{
		TrackColor:  color.NRGBA{R: 46, G: 46, B: 46, A: 255},
		BorderColor: color.NRGBA{R: 90, G: 90, B: 90, A: 255},
		BorderWidth: 1.0,
		ShowBorder:  true,
		ShowTrack:   true,
	}
}

// ProgressBar draws a horizontal bar described by a fill.Spec. The fill is
// rasterized one pixel column at a time so every display mode and direction
// is drawn exactly as the fill package samples it.
type ProgressBar struct {
	x, y          float64
	width, height float64
	style         WidgetStyle
	spec          fill.Spec
	phase         float64
	mu            sync.RWMutex
}

// NewProgressBar creates a new progress bar with the specified dimensions.
func NewProgressBar(x, y, width, height float64) *ProgressBar {
	return &ProgressBar{
		x:      x,
		y:      y,
		width:  width,
		height: height,
		style:  DefaultWidgetStyle(),
	}
}

// SetStyle sets the visual style of the progress bar.
func (pb *ProgressBar) SetStyle(style WidgetStyle) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.style = style
}

// SetPosition sets the top-left position of the progress bar.
func (pb *ProgressBar) SetPosition(x, y float64) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.x = x
	pb.y = y
}

// SetSize sets the width and height of the progress bar.
func (pb *ProgressBar) SetSize(width, height float64) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.width = width
	pb.height = height
}

// SetSpec sets what the bar shows.
func (pb *ProgressBar) SetSpec(spec fill.Spec) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.spec = spec
}

// SetPhase sets the pattern animation phase.
func (pb *ProgressBar) SetPhase(phase float64) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.phase = phase
}

// Spec returns what the bar shows.
func (pb *ProgressBar) Spec() fill.Spec {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.spec
}

// Percentage returns the displayed percentage.
func (pb *ProgressBar) Percentage() float64 {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.spec.Percentage
}

// span is a run of adjacent columns sharing a color.
type span struct {
	start, width int
	color        color.NRGBA
}

// spans rasterizes the fill into runs of equal color. Track columns are
// omitted.
func (pb *ProgressBar) spans() []span {
	cells := pb.spec.Columns(int(pb.width), pb.phase)
	var out []span
	for i, c := range cells {
		if !c.Filled {
			continue
		}
		clr := ToNRGBA(c.Color)
		if n := len(out); n > 0 && out[n-1].start+out[n-1].width == i && out[n-1].color == clr {
			out[n-1].width++
			continue
		}
		out = append(out, span{start: i, width: 1, color: clr})
	}
	return out
}

// Draw renders the progress bar onto the given screen.
func (pb *ProgressBar) Draw(screen *ebiten.Image) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	if pb.style.ShowTrack {
		vector.DrawFilledRect(
			screen,
			float32(pb.x), float32(pb.y),
			float32(pb.width), float32(pb.height),
			pb.style.TrackColor,
			false,
		)
	}

	for _, s := range pb.spans() {
		vector.DrawFilledRect(
			screen,
			float32(pb.x)+float32(s.start), float32(pb.y),
			float32(s.width), float32(pb.height),
			s.color,
			false,
		)
	}

	if pb.style.ShowBorder && pb.style.BorderWidth > 0 {
		vector.StrokeRect(
			screen,
			float32(pb.x), float32(pb.y),
			float32(pb.width), float32(pb.height),
			pb.style.BorderWidth,
			pb.style.BorderColor,
			false,
		)
	}
}
