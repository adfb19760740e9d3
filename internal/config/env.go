// Package config provides configuration parsing for barcard.
// This file implements environment variable expansion support for configuration values.
package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// It supports the following formats:
//   - ${VAR_NAME} - replaced with value of VAR_NAME
//   - ${VAR_NAME:-default} - replaced with VAR_NAME's value, or "default" if unset/empty
//   - $VAR_NAME - replaced with value of VAR_NAME (simple format)
//
// Unknown or unset variables without defaults are replaced with empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Check for ${VAR} or ${VAR:-default} format
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			inner := match[2 : len(match)-1]

			// Check for default value syntax: VAR:-default
			if idx := strings.Index(inner, ":-"); idx >= 0 {
				varName := inner[:idx]
				defaultVal := inner[idx+2:]
				if val := os.Getenv(varName); val != "" {
					return val
				}
				return defaultVal
			}

			return os.Getenv(inner)
		}

		if strings.HasPrefix(match, "$") {
			return os.Getenv(match[1:])
		}

		return match
	})
}

// ExpandEnvConfig expands environment variables in all string values that
// name colors, entities or templates. It modifies the Config in place.
func ExpandEnvConfig(cfg *Config) {
	ExpandEnvConfigWithOptions(cfg)
}

// EnvConfigOption is a functional option for environment variable expansion.
type EnvConfigOption func(*envConfigOptions)

type envConfigOptions struct {
	expandColors    bool
	expandEntities  bool
	expandTemplates bool
}

// defaultEnvConfigOptions returns the default options (all expansion enabled).
func defaultEnvConfigOptions() *envConfigOptions {
	return &envConfigOptions{
		expandColors:    true,
		expandEntities:  true,
		expandTemplates: true,
	}
}

// WithExpandColors controls whether theme values and bar colors are expanded.
func WithExpandColors(expand bool) EnvConfigOption {
	return func(o *envConfigOptions) {
		o.expandColors = expand
	}
}

// WithExpandEntities controls whether entity ids are expanded.
func WithExpandEntities(expand bool) EnvConfigOption {
	return func(o *envConfigOptions) {
		o.expandEntities = expand
	}
}

// WithExpandTemplates controls whether percentage templates are expanded.
func WithExpandTemplates(expand bool) EnvConfigOption {
	return func(o *envConfigOptions) {
		o.expandTemplates = expand
	}
}

// ExpandEnvConfigWithOptions expands environment variables with specific options.
func ExpandEnvConfigWithOptions(cfg *Config, opts ...EnvConfigOption) {
	if cfg == nil {
		return
	}

	options := defaultEnvConfigOptions()
	for _, opt := range opts {
		opt(options)
	}

	if options.expandColors {
		cfg.Window.Background = ExpandEnv(cfg.Window.Background)
		cfg.Window.TrackColor = ExpandEnv(cfg.Window.TrackColor)
		for k, v := range cfg.Theme {
			cfg.Theme[k] = ExpandEnv(v)
		}
	}

	for i := range cfg.Bars {
		b := &cfg.Bars[i]
		if options.expandColors {
			b.Color = ExpandEnv(b.Color)
			for j := range b.Gradient.Stops {
				b.Gradient.Stops[j].Color = ExpandEnv(b.Gradient.Stops[j].Color)
			}
		}
		if options.expandEntities {
			for _, id := range []*string{
				&b.Source.Entity, &b.Source.AttributeEntity,
				&b.Source.CurrentEntity, &b.Source.TotalEntity,
				&b.Animation.Entity, &b.Override.Entity,
			} {
				*id = ExpandEnv(*id)
			}
		}
		if options.expandTemplates {
			b.Source.Template = ExpandEnv(b.Source.Template)
		}
	}
}
