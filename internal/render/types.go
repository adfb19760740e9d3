// Package render provides Ebiten-based rendering of bar cards.
package render

import (
	"fmt"
	"image/color"
	"time"

	"github.com/opd-ai/go-barcard/internal/fill"
)

// Config holds the window and layout options.
type Config struct {
	// Width is the window width in pixels.
	Width int
	// Title is the window title.
	Title string
	// BarHeight is the height of each bar in pixels.
	BarHeight int
	// Spacing is the vertical gap between rows in pixels.
	Spacing int
	// Padding is the horizontal margin around bars in pixels.
	Padding int
	// UpdateInterval is the time between bar refreshes.
	UpdateInterval time.Duration
	// BackgroundColor is the window background color.
	BackgroundColor color.NRGBA
	// TrackColor is the color of the unfilled part of each bar.
	TrackColor color.NRGBA
	// LabelColor is the color of bar labels.
	LabelColor color.NRGBA
	// ShimmerPeriod is the time a pattern takes to cycle once.
	ShimmerPeriod time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Width:           320,
		Title:           "barcard",
		BarHeight:       24,
		Spacing:         8,
		Padding:         10,
		UpdateInterval:  time.Second,
		BackgroundColor: color.NRGBA{R: 28, G: 28, B: 28, A: 255},
		TrackColor:      color.NRGBA{R: 46, G: 46, B: 46, A: 255},
		LabelColor:      color.NRGBA{R: 225, G: 225, B: 225, A: 255},
		ShimmerPeriod:   2 * time.Second,
	}
}

// Validate checks if the Config has valid values.
func (c Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", c.Width)
	}
	if c.BarHeight <= 0 {
		return fmt.Errorf("bar height must be positive, got %d", c.BarHeight)
	}
	if c.Spacing < 0 || c.Padding < 0 {
		return fmt.Errorf("spacing and padding must be non-negative, got %d and %d", c.Spacing, c.Padding)
	}
	if 2*c.Padding >= c.Width {
		return fmt.Errorf("padding %d leaves no room in width %d", c.Padding, c.Width)
	}
	return nil
}

// Bar is one row of the card.
type Bar struct {
	// Label is drawn above the bar.
	Label string
	// Fill describes the bar contents.
	Fill fill.Spec
}

// BarSource supplies the rows to draw. Bars is called at the configured
// update interval.
type BarSource interface {
	Bars() ([]Bar, error)
}

// BarSourceFunc adapts a function to BarSource.
type BarSourceFunc func() ([]Bar, error)

// Bars calls f.
func (f BarSourceFunc) Bars() ([]Bar, error) {
	return f()
}
