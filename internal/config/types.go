// Package config provides configuration data structures for barcard.
// It defines the card schema shared by the Lua and YAML formats: window
// settings, a theme color table, optional static entity states and the
// list of bars with their fill, percentage source and animation triggers.
package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a complete card configuration.
type Config struct {
	// Window contains preview window and layout settings.
	Window WindowConfig `yaml:"window"`
	// Theme maps theme variable names (e.g. "--primary-color") to colors.
	Theme map[string]string `yaml:"theme"`
	// States seeds the entity store with static readings.
	States map[string]StateConfig `yaml:"states"`
	// Bars lists the bars of the card in display order.
	Bars []BarConfig `yaml:"bars"`
}

// WindowConfig holds layout settings used by the previews.
type WindowConfig struct {
	// Title is the preview window title.
	Title string `yaml:"title"`
	// Width is the bar width in pixels.
	Width int `yaml:"width"`
	// BarHeight is the height of each bar in pixels.
	BarHeight int `yaml:"bar_height"`
	// Spacing is the vertical gap between bars in pixels.
	Spacing int `yaml:"spacing"`
	// UpdateInterval is the time between preview refreshes.
	UpdateInterval time.Duration `yaml:"update_interval"`
	// Background is the window background color.
	Background string `yaml:"background"`
	// TrackColor is the color of the unfilled part of a bar.
	TrackColor string `yaml:"track_color"`
}

// StateConfig is a static entity reading.
type StateConfig struct {
	State      any            `yaml:"state"`
	Attributes map[string]any `yaml:"attributes"`
}

// BarConfig describes one bar.
type BarConfig struct {
	// Name identifies the bar; it must be unique within the card.
	Name string `yaml:"name"`
	// Fill selects solid, gradient or pattern rendering.
	Fill FillKind `yaml:"fill"`
	// Color is the solid or pattern base color.
	Color string `yaml:"color"`
	// Pattern names the pattern for pattern fills ("stripes", "shimmer").
	Pattern string `yaml:"pattern"`
	// Direction is "left-to-right" or "right-to-left".
	Direction string `yaml:"direction"`
	// Gradient holds the stop list for gradient fills.
	Gradient GradientConfig `yaml:"gradient"`
	// Source selects where the fill percentage comes from.
	Source SourceConfig `yaml:"source"`
	// Animation is the regular animation trigger.
	Animation TriggerConfig `yaml:"animation"`
	// Override is the override animation trigger.
	Override TriggerConfig `yaml:"override"`
}

// GradientConfig holds gradient fill settings.
type GradientConfig struct {
	// Mode is "full", "cropped" or "value-based".
	Mode  string       `yaml:"mode"`
	Stops []StopConfig `yaml:"stops"`
}

// StopConfig is a gradient stop as written in a card file.
type StopConfig struct {
	Position float64 `yaml:"position"`
	Color    string  `yaml:"color"`
}

// SourceConfig selects the percentage source of a bar.
type SourceConfig struct {
	// Mode is "entity", "attribute", "difference" or "template".
	Mode            string `yaml:"mode"`
	Entity          string `yaml:"entity"`
	Attribute       string `yaml:"attribute"`
	AttributeEntity string `yaml:"attribute_entity"`
	// Max overrides the entity's max attribute. Nil means unset.
	Max           any    `yaml:"max"`
	CurrentEntity string `yaml:"current_entity"`
	TotalEntity   string `yaml:"total_entity"`
	Template      string `yaml:"template"`
}

// TriggerConfig is an animation trigger as written in a card file.
type TriggerConfig struct {
	// Enabled defaults to true when an animation is set.
	Enabled   *bool  `yaml:"enabled"`
	Animation string `yaml:"animation"`
	Entity    string `yaml:"entity"`
	// Kind is "state" or "attribute".
	Kind      string `yaml:"kind"`
	Attribute string `yaml:"attribute"`
	Match     string `yaml:"match"`
}

// IsEnabled reports whether the trigger is switched on.
func (t TriggerConfig) IsEnabled() bool {
	if t.Enabled != nil {
		return *t.Enabled
	}
	return t.Animation != "" && t.Animation != "none"
}

// FillKind selects how a bar is filled.
type FillKind int

const (
	// FillGradient fills the bar from its gradient stop list.
	FillGradient FillKind = iota
	// FillSolid fills the bar with a single color.
	FillSolid
	// FillPattern fills the bar with an animated pattern over a color.
	FillPattern
)

// String returns the string representation of FillKind.
func (f FillKind) String() string {
	switch f {
	case FillGradient:
		return "gradient"
	case FillSolid:
		return "solid"
	case FillPattern:
		return "pattern"
	default:
		return fmt.Sprintf("FillKind(%d)", int(f))
	}
}

// ParseFillKind converts a string to a FillKind. An empty string selects
// FillGradient.
func ParseFillKind(s string) (FillKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gradient":
		return FillGradient, nil
	case "solid", "color":
		return FillSolid, nil
	case "pattern":
		return FillPattern, nil
	default:
		return FillGradient, fmt.Errorf("unknown fill kind: %q", s)
	}
}

// UnmarshalYAML decodes a fill kind name.
func (f *FillKind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	kind, err := ParseFillKind(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*f = kind
	return nil
}

// MarshalYAML encodes a fill kind as its name.
func (f FillKind) MarshalYAML() (any, error) {
	return f.String(), nil
}

// Bar returns the bar with the given name.
func (c *Config) Bar(name string) (*BarConfig, bool) {
	for i := range c.Bars {
		if c.Bars[i].Name == name {
			return &c.Bars[i], true
		}
	}
	return nil, false
}

// Names returns the bar names in display order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		names[i] = b.Name
	}
	return names
}

// Validate checks the configuration for errors.
// Returns nil if valid, or an error describing the first problem found.
func (c *Config) Validate() error {
	if c.Window.Width < 0 {
		return fmt.Errorf("invalid width: %d (must be non-negative)", c.Window.Width)
	}
	if c.Window.BarHeight < 0 {
		return fmt.Errorf("invalid bar height: %d (must be non-negative)", c.Window.BarHeight)
	}
	if c.Window.UpdateInterval < 0 {
		return fmt.Errorf("invalid update interval: %v (must be non-negative)", c.Window.UpdateInterval)
	}
	seen := make(map[string]bool, len(c.Bars))
	for i, b := range c.Bars {
		if b.Name == "" {
			return fmt.Errorf("bar %d: missing name", i)
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate bar name: %q", b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}
