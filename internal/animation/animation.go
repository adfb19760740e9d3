// Package animation decides which animation, if any, a bar plays.
//
// A bar has a regular trigger and an optional override trigger. The
// regular trigger plays when it matches, or always when it names no entity
// or match value. The override needs an explicit match and, when it
// matches, replaces the regular outcome.
package animation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/go-barcard/internal/entity"
)

// Type identifies an animation effect.
type Type string

const (
	None    Type = "none"
	Blink   Type = "blink"
	Fade    Type = "fade"
	Pulse   Type = "pulse"
	Glow    Type = "glow"
	Shake   Type = "shake"
	Bounce  Type = "bounce"
	Stripes Type = "stripes"
	Shimmer Type = "shimmer"
)

// Types lists every animation identifier in display order.
var Types = []Type{None, Blink, Fade, Pulse, Glow, Shake, Bounce, Stripes, Shimmer}

// ErrUnknownType is returned by ParseType for unsupported identifiers.
var ErrUnknownType = errors.New("unknown animation type")

// ParseType parses an animation identifier. An empty string is None.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return None, nil
	}
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// CSSClass returns the class name applied to an animated bar, or "" for
// None.
func (t Type) CSSClass() string {
	if t == None || t == "" {
		return ""
	}
	return "bar-anim-" + string(t)
}

// Kind selects what a trigger compares.
type Kind int

const (
	// KindState compares the entity's primary state.
	KindState Kind = iota
	// KindAttribute compares a named attribute of the entity.
	KindAttribute
)

// ParseKind parses "state" or "attribute". An empty string is KindState.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "state":
		return KindState, nil
	case "attribute":
		return KindAttribute, nil
	default:
		return KindState, fmt.Errorf("unknown trigger kind %q", s)
	}
}

// Trigger is a regular or override animation trigger. Enabled is only
// consulted for the regular trigger.
type Trigger struct {
	Enabled   bool
	Animation Type
	Entity    string
	Kind      Kind
	// Attribute is read when Kind is KindAttribute. Empty falls back to the
	// primary state.
	Attribute string
	Match     string
}

func (t Trigger) hasAnimation() bool {
	return t.Animation != "" && t.Animation != None
}

// alwaysOn reports whether the trigger lacks a target and so always plays.
func (t Trigger) alwaysOn() bool {
	return t.Entity == "" || t.Match == ""
}

// matches performs the exact string comparison against live state.
func (t Trigger) matches(lookup entity.Lookup) bool {
	if lookup == nil || t.Entity == "" {
		return false
	}
	attr := ""
	if t.Kind == KindAttribute {
		attr = t.Attribute
	}
	v, ok := lookup.Lookup(t.Entity, attr)
	if !ok {
		return false
	}
	return entity.Stringify(v) == t.Match
}

// Outcome is the resolver's state.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeRegular
	OutcomeOverride
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeRegular:
		return "matched-regular"
	case OutcomeOverride:
		return "matched-override"
	default:
		return "none"
	}
}

// Result is the resolved animation.
type Result struct {
	Outcome   Outcome
	Animation Type
}

// Resolve evaluates both triggers against lookup.
//
// The override is configured when it names an animation and an entity; it
// is tested independently of the regular trigger and wins whenever it
// matches. The regular trigger plays only when enabled with an animation,
// and then either because it has no target or because its target matches.
// A regular trigger with an entity but an empty match value counts as having
// no target and always plays; it never tests for an empty state.
func Resolve(regular, override Trigger, lookup entity.Lookup) Result {
	if override.hasAnimation() && override.Entity != "" && override.matches(lookup) {
		return Result{Outcome: OutcomeOverride, Animation: override.Animation}
	}

	if !regular.Enabled || !regular.hasAnimation() {
		return Result{Outcome: OutcomeNone, Animation: None}
	}
	if regular.alwaysOn() || regular.matches(lookup) {
		return Result{Outcome: OutcomeRegular, Animation: regular.Animation}
	}
	return Result{Outcome: OutcomeNone, Animation: None}
}
