// Package percent converts raw entity readings into a bar fill percentage.
//
// Every resolution mode clamps its result into [0,100]. Division by zero
// and non-numeric input yield 0; NaN and infinities never escape.
package percent

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// Min is the lowest percentage a bar can show.
	Min = 0.0
	// Max is the highest percentage a bar can show.
	Max = 100.0

	// UnitPercent is the unit of measurement that implies a 0-100 range.
	UnitPercent = "%"
	// DeviceClassBattery is the device class that implies a 0-100 range.
	DeviceClassBattery = "battery"
)

var (
	// ErrUnknownSource is returned by Resolve for a nil or foreign Source.
	ErrUnknownSource = errors.New("unknown percentage source")

	// ErrNotNumeric is returned when a template result is not a number.
	ErrNotNumeric = errors.New("value is not numeric")
)

// Source is one of Entity, Attribute, Difference or Template.
type Source interface {
	source()
}

// Entity derives the percentage from an entity's primary state.
type Entity struct {
	Value any
	// Max is the entity's declared upper bound. Nil means absent.
	Max         any
	Unit        string
	DeviceClass string
}

// Attribute derives the percentage from a named attribute value.
type Attribute struct {
	Value any
	// Max defaults to 100 when nil.
	Max any
	// PercentUnit marks the value as already being a percentage. A string
	// value ending in "%" is treated the same way.
	PercentUnit bool
}

// Difference expresses Current as a share of Total.
type Difference struct {
	Current any
	Total   any
}

// Template carries an already evaluated template result. Values up to 1
// are read as fractions, larger values as percentages.
type Template struct {
	Evaluated float64
}

func (Entity) source()     {}
func (Attribute) source()  {}
func (Difference) source() {}
func (Template) source()   {}

// Resolve computes the fill percentage for src.
func Resolve(src Source) (float64, error) {
	switch s := src.(type) {
	case Entity:
		return resolveEntity(s), nil
	case Attribute:
		return resolveAttribute(s), nil
	case Difference:
		return resolveDifference(s), nil
	case Template:
		return resolveTemplate(s), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnknownSource, src)
	}
}

func resolveEntity(s Entity) float64 {
	value, ok := Number(s.Value)
	if !ok {
		return 0
	}
	max := Max
	if s.Unit != UnitPercent && !strings.EqualFold(s.DeviceClass, DeviceClassBattery) {
		if m, ok := Number(s.Max); ok {
			max = m
		}
	}
	return ratio(value, max)
}

func resolveAttribute(s Attribute) float64 {
	value, ok := Number(s.Value)
	if !ok {
		return 0
	}
	if s.PercentUnit || HasPercentMarker(s.Value) {
		return Clamp(value)
	}
	max := Max
	if m, ok := Number(s.Max); ok {
		max = m
	}
	return ratio(value, max)
}

func resolveDifference(s Difference) float64 {
	current, ok := Number(s.Current)
	if !ok {
		return 0
	}
	total, ok := Number(s.Total)
	if !ok {
		return 0
	}
	return ratio(current, total)
}

func resolveTemplate(s Template) float64 {
	v := s.Evaluated
	if v <= 1 {
		v *= 100
	}
	return Clamp(v)
}

// ratio is value/max as a clamped percentage. A non-positive max yields 0.
func ratio(value, max float64) float64 {
	if !(max > 0) {
		return 0
	}
	return Clamp(value / max * 100)
}

// Clamp clamps p into [0,100]. NaN becomes 0.
func Clamp(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < Min:
		return Min
	case p > Max:
		return Max
	default:
		return p
	}
}

// Number interprets a looked-up value as a float. Numeric strings are
// accepted with surrounding whitespace and an optional trailing "%".
func Number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		p, ok := parseNumber(x)
		if !ok {
			return 0, false
		}
		f = p
	case fmt.Stringer:
		// json.Number and similar named numeric strings
		p, ok := parseNumber(x.String())
		if !ok {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), UnitPercent))
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return p, true
}

// HasPercentMarker reports whether v is a string ending in "%".
func HasPercentMarker(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasSuffix(strings.TrimSpace(s), UnitPercent)
}

// FromTemplateResult interprets a template evaluator's string or number
// result.
func FromTemplateResult(v any) (Template, error) {
	f, ok := Number(v)
	if !ok {
		return Template{}, fmt.Errorf("%w: %v", ErrNotNumeric, v)
	}
	return Template{Evaluated: f}, nil
}
