package config

import (
	"time"

	"github.com/opd-ai/go-barcard/internal/gradient"
)

// Default values for configuration options.
const (
	// DefaultTitle is the preview window title.
	DefaultTitle = "barcard"
	// DefaultWidth is the default bar width in pixels.
	DefaultWidth = 320
	// DefaultBarHeight is the default bar height in pixels.
	DefaultBarHeight = 24
	// DefaultSpacing is the default gap between bars in pixels.
	DefaultSpacing = 8
	// DefaultUpdateInterval is the default time between refreshes (1 second).
	DefaultUpdateInterval = time.Second
	// DefaultBackground is the default window background.
	DefaultBackground = "var(--card-background-color)"
	// DefaultTrackColor is the default unfilled bar color.
	DefaultTrackColor = "var(--secondary-background-color)"
)

// DefaultTheme returns the theme variables every card starts with.
func DefaultTheme() map[string]string {
	return map[string]string{
		"--primary-color":              "#03a9f4",
		"--accent-color":               "#ff9800",
		"--error-color":                "#db4437",
		"--warning-color":              "#ffa600",
		"--success-color":              "#43a047",
		"--info-color":                 "#039be5",
		"--disabled-color":             "#bdbdbd",
		"--primary-text-color":         "#e1e1e1",
		"--card-background-color":      "#1c1c1c",
		"--secondary-background-color": "#2e2e2e",
	}
}

// DefaultConfig returns a Config with sensible default values and no bars.
func DefaultConfig() Config {
	return Config{
		Window: DefaultWindowConfig(),
		Theme:  DefaultTheme(),
		States: map[string]StateConfig{},
	}
}

// DefaultWindowConfig returns a WindowConfig with default values.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Title:          DefaultTitle,
		Width:          DefaultWidth,
		BarHeight:      DefaultBarHeight,
		Spacing:        DefaultSpacing,
		UpdateInterval: DefaultUpdateInterval,
		Background:     DefaultBackground,
		TrackColor:     DefaultTrackColor,
	}
}

// DefaultBarConfig returns a gradient bar using the default stop list.
func DefaultBarConfig() BarConfig {
	return BarConfig{
		Fill:      FillGradient,
		Color:     "var(--primary-color)",
		Direction: "left-to-right",
		Gradient: GradientConfig{
			Mode:  "full",
			Stops: DefaultStops(),
		},
		Source: SourceConfig{Mode: "entity"},
	}
}

// DefaultStops returns the default red, yellow and green stop list.
func DefaultStops() []StopConfig {
	stops := gradient.NewDefault().Stops()
	out := make([]StopConfig, len(stops))
	for i, s := range stops {
		out[i] = StopConfig{Position: s.Position, Color: s.Color}
	}
	return out
}
