// Package config provides configuration parsing and validation for barcard.
// This file implements validation of card settings, bar definitions and
// entity references.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opd-ai/go-barcard/internal/animation"
	"github.com/opd-ai/go-barcard/internal/colors"
	"github.com/opd-ai/go-barcard/internal/css"
	"github.com/opd-ai/go-barcard/internal/gradient"
	"github.com/opd-ai/go-barcard/internal/percent"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues (e.g., unresolvable colors).
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Merge combines another ValidationResult into this one.
func (vr *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	vr.Errors = append(vr.Errors, other.Errors...)
	vr.Warnings = append(vr.Warnings, other.Warnings...)
}

// Validator provides comprehensive configuration validation.
type Validator struct {
	// knownEntities are entity ids supplied from outside the card.
	knownEntities map[string]bool
	// strictMode turns unknown entity references and unresolvable colors
	// into errors.
	strictMode bool
}

// NewValidator creates a new Validator with default settings.
func NewValidator() *Validator {
	return &Validator{
		knownEntities: map[string]bool{},
	}
}

// WithStrictMode enables strict validation.
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.strictMode = strict
	return v
}

// WithKnownEntities registers entity ids that exist outside the card's
// static states.
func (v *Validator) WithKnownEntities(ids ...string) *Validator {
	for _, id := range ids {
		v.knownEntities[id] = true
	}
	return v
}

// Validate performs comprehensive validation of a Config.
func (v *Validator) Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}
	theme := colors.Theme(cfg.Theme)

	v.validateWindow(&cfg.Window, theme, result)
	v.validateTheme(theme, result)

	known := make(map[string]bool, len(cfg.States)+len(v.knownEntities))
	for id := range cfg.States {
		known[id] = true
	}
	for id := range v.knownEntities {
		known[id] = true
	}

	seen := make(map[string]bool, len(cfg.Bars))
	for i := range cfg.Bars {
		b := &cfg.Bars[i]
		field := fmt.Sprintf("bars[%d]", i)
		if b.Name == "" {
			result.AddError(field+".name", "must not be empty")
		} else {
			field = fmt.Sprintf("bars[%s]", b.Name)
			if seen[b.Name] {
				result.AddError(field+".name", "duplicate bar name")
			}
			seen[b.Name] = true
		}
		v.validateBar(field, b, theme, known, result)
	}

	return result
}

// validateWindow validates WindowConfig settings.
func (v *Validator) validateWindow(wc *WindowConfig, theme colors.Theme, result *ValidationResult) {
	if wc.Width < 0 {
		result.AddError("window.width", fmt.Sprintf("must be non-negative, got %d", wc.Width))
	}
	if wc.BarHeight < 0 {
		result.AddError("window.bar_height", fmt.Sprintf("must be non-negative, got %d", wc.BarHeight))
	}
	if wc.Spacing < 0 {
		result.AddError("window.spacing", fmt.Sprintf("must be non-negative, got %d", wc.Spacing))
	}

	const maxDimension = 10000
	if wc.Width > maxDimension {
		result.AddWarning("window.width", fmt.Sprintf("unusually large value %d", wc.Width))
	}

	if wc.UpdateInterval < 0 {
		result.AddError("window.update_interval",
			fmt.Sprintf("must be non-negative, got %v", wc.UpdateInterval))
	}
	// Warn on very fast update intervals (< 100ms)
	if wc.UpdateInterval > 0 && wc.UpdateInterval < 100*time.Millisecond {
		result.AddWarning("window.update_interval",
			fmt.Sprintf("very fast interval %v may cause high CPU usage", wc.UpdateInterval))
	}

	v.checkColor("window.background", wc.Background, theme, result)
	v.checkColor("window.track_color", wc.TrackColor, theme, result)
}

// validateTheme checks that every theme entry resolves to a concrete color.
func (v *Validator) validateTheme(theme colors.Theme, result *ValidationResult) {
	for name := range theme {
		if !strings.HasPrefix(name, "--") {
			result.AddWarning("theme."+name, "theme variables conventionally start with \"--\"")
		}
		v.checkColor("theme."+name, "var("+name+")", theme, result)
	}
}

func (v *Validator) validateBar(field string, b *BarConfig, theme colors.Theme, known map[string]bool, result *ValidationResult) {
	if _, err := css.ParseDirection(b.Direction); err != nil {
		result.AddError(field+".direction", err.Error())
	}

	switch b.Fill {
	case FillSolid:
		v.checkColor(field+".color", b.Color, theme, result)
	case FillPattern:
		v.checkColor(field+".color", b.Color, theme, result)
		if _, err := css.ParsePattern(b.Pattern); err != nil {
			result.AddError(field+".pattern", err.Error())
		}
	case FillGradient:
		v.validateGradient(field+".gradient", &b.Gradient, theme, result)
	default:
		result.AddError(field+".fill", fmt.Sprintf("unknown fill kind: %d", b.Fill))
	}

	v.validateSource(field+".source", &b.Source, known, result)
	v.validateTrigger(field+".animation", &b.Animation, known, result)
	v.validateTrigger(field+".override", &b.Override, known, result)
}

func (v *Validator) validateGradient(field string, gc *GradientConfig, theme colors.Theme, result *ValidationResult) {
	if _, err := css.ParseMode(gc.Mode); err != nil {
		result.AddError(field+".mode", err.Error())
	}
	if len(gc.Stops) < gradient.MinStops {
		result.AddWarning(field+".stops",
			fmt.Sprintf("%d stop(s) render as a flat color", len(gc.Stops)))
	}

	hasStart, hasEnd := false, false
	for i, s := range gc.Stops {
		sf := fmt.Sprintf("%s.stops[%d]", field, i)
		if s.Position < gradient.MinPosition || s.Position > gradient.MaxPosition {
			result.AddWarning(sf+".position",
				fmt.Sprintf("%v is outside [0,100] and will be clamped", s.Position))
		}
		hasStart = hasStart || s.Position == gradient.MinPosition
		hasEnd = hasEnd || s.Position == gradient.MaxPosition
		v.checkColor(sf+".color", s.Color, theme, result)
	}
	if len(gc.Stops) >= gradient.MinStops && !(hasStart && hasEnd) {
		result.AddWarning(field+".stops", "no stops pinned at 0 and 100")
	}
}

func (v *Validator) validateSource(field string, sc *SourceConfig, known map[string]bool, result *ValidationResult) {
	mode, err := percent.ParseMode(sc.Mode)
	if err != nil {
		result.AddError(field+".mode", err.Error())
		return
	}

	switch mode {
	case percent.ModeEntity:
		v.requireEntity(field+".entity", sc.Entity, known, result)
	case percent.ModeAttribute:
		id := sc.AttributeEntity
		if id == "" {
			id = sc.Entity
		}
		v.requireEntity(field+".attribute_entity", id, known, result)
		if sc.Attribute == "" {
			result.AddError(field+".attribute", "required in attribute mode")
		}
	case percent.ModeDifference:
		v.requireEntity(field+".current_entity", sc.CurrentEntity, known, result)
		v.requireEntity(field+".total_entity", sc.TotalEntity, known, result)
	case percent.ModeTemplate:
		if strings.TrimSpace(sc.Template) == "" {
			result.AddError(field+".template", "required in template mode")
		}
	}

	if sc.Max != nil {
		if m, ok := percent.Number(sc.Max); !ok || m <= 0 {
			result.AddError(field+".max", fmt.Sprintf("must be a positive number, got %v", sc.Max))
		}
	}
}

func (v *Validator) validateTrigger(field string, tc *TriggerConfig, known map[string]bool, result *ValidationResult) {
	if _, err := animation.ParseType(tc.Animation); err != nil {
		result.AddError(field+".animation", err.Error())
	}
	kind, err := animation.ParseKind(tc.Kind)
	if err != nil {
		result.AddError(field+".kind", err.Error())
	}
	if kind == animation.KindAttribute && tc.Attribute == "" {
		result.AddWarning(field+".attribute", "attribute trigger without attribute compares the state")
	}
	if tc.Entity != "" {
		v.checkEntity(field+".entity", tc.Entity, known, result)
	}
}

// requireEntity reports a missing id as an error and an unknown one per
// checkEntity.
func (v *Validator) requireEntity(field, id string, known map[string]bool, result *ValidationResult) {
	if id == "" {
		result.AddError(field, "required")
		return
	}
	v.checkEntity(field, id, known, result)
}

// checkEntity flags references to entities that are not known. Nothing is
// flagged when no entities are known at all.
func (v *Validator) checkEntity(field, id string, known map[string]bool, result *ValidationResult) {
	if len(known) == 0 || known[id] {
		return
	}
	msg := fmt.Sprintf("unknown entity: %s", id)
	if v.strictMode {
		result.AddError(field, msg)
	} else {
		result.AddWarning(field, msg)
	}
}

// checkColor flags colors that would degrade to neutral gray.
func (v *Validator) checkColor(field, s string, theme colors.Theme, result *ValidationResult) {
	if s == "" {
		return
	}
	if _, ok := colors.Resolve(theme, s); ok {
		return
	}
	msg := fmt.Sprintf("unresolvable color %q renders as neutral gray", s)
	if v.strictMode {
		result.AddError(field, msg)
	} else {
		result.AddWarning(field, msg)
	}
}

// ValidateConfig is a convenience function to validate a Config with default settings.
// Returns nil if the config is valid, or an error describing validation failures.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	validator := NewValidator()
	result := validator.Validate(cfg)
	return result.Error()
}

// ValidateConfigStrict validates a Config with strict mode enabled.
// Unknown entities and unresolvable colors are treated as errors.
func ValidateConfigStrict(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	validator := NewValidator().WithStrictMode(true)
	result := validator.Validate(cfg)
	return result.Error()
}
