package percent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/go-barcard/internal/entity"
)

// Mode names the active percentage source of a bar.
type Mode string

const (
	ModeEntity     Mode = "entity"
	ModeAttribute  Mode = "attribute"
	ModeDifference Mode = "difference"
	ModeTemplate   Mode = "template"
)

// ErrUnknownMode is returned for an unsupported Config.Mode.
var ErrUnknownMode = errors.New("unknown percentage mode")

// ParseMode parses a mode name. An empty name selects ModeEntity.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeEntity, nil
	case ModeEntity, ModeAttribute, ModeDifference, ModeTemplate:
		return m, nil
	default:
		return ModeEntity, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// TemplateEvaluator evaluates template text into a string or number.
type TemplateEvaluator interface {
	Evaluate(template string) (any, error)
}

// TemplateFunc adapts a function to TemplateEvaluator.
type TemplateFunc func(template string) (any, error)

// Evaluate calls f.
func (f TemplateFunc) Evaluate(template string) (any, error) {
	return f(template)
}

// Literal is a TemplateEvaluator that returns the template text itself, for
// callers that store pre-evaluated results.
var Literal = TemplateFunc(func(template string) (any, error) {
	return template, nil
})

// Config selects and parameterizes a percentage source.
type Config struct {
	Mode   Mode
	Entity string

	// Max overrides the entity's own max attribute when non-nil.
	Max any

	Attribute string
	// AttributeEntity reads the attribute from another entity. Empty means
	// Entity.
	AttributeEntity string

	CurrentEntity string
	TotalEntity   string

	Template string
}

// Source builds the Source for c from live entity state. Missing entities
// produce sources that resolve to 0.
func (c Config) Source(lookup entity.Lookup, eval TemplateEvaluator) (Source, error) {
	get := func(id, attr string) any {
		if lookup == nil || id == "" {
			return nil
		}
		v, _ := lookup.Lookup(id, attr)
		return v
	}

	switch c.Mode {
	case ModeEntity, "":
		max := c.Max
		if max == nil {
			max = get(c.Entity, entity.AttrMax)
		}
		return Entity{
			Value:       get(c.Entity, ""),
			Max:         max,
			Unit:        entity.Stringify(get(c.Entity, entity.AttrUnit)),
			DeviceClass: entity.Stringify(get(c.Entity, entity.AttrDeviceClass)),
		}, nil

	case ModeAttribute:
		id := c.AttributeEntity
		if id == "" {
			id = c.Entity
		}
		return Attribute{
			Value: get(id, c.Attribute),
			Max:   c.Max,
		}, nil

	case ModeDifference:
		return Difference{
			Current: get(c.CurrentEntity, ""),
			Total:   get(c.TotalEntity, ""),
		}, nil

	case ModeTemplate:
		if eval == nil {
			eval = Literal
		}
		result, err := eval.Evaluate(c.Template)
		if err != nil {
			return nil, fmt.Errorf("evaluating template: %w", err)
		}
		return FromTemplateResult(result)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, c.Mode)
	}
}
