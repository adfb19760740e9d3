package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLConfigParser parses YAML card files.
type YAMLConfigParser struct {
	// knownFields rejects keys that do not map to a Config field.
	knownFields bool
}

// NewYAMLConfigParser creates a YAMLConfigParser that rejects unknown keys.
func NewYAMLConfigParser() *YAMLConfigParser {
	return &YAMLConfigParser{knownFields: true}
}

// WithKnownFields controls whether unknown keys are rejected.
func (p *YAMLConfigParser) WithKnownFields(strict bool) *YAMLConfigParser {
	p.knownFields = strict
	return p
}

// Parse decodes content on top of DefaultConfig. Theme entries are merged
// with the default theme; an empty document yields the defaults.
func (p *YAMLConfigParser) Parse(content []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(p.knownFields)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyBarDefaults(&cfg)
	return &cfg, nil
}

// MarshalYAML renders cfg as a YAML card file.
func MarshalYAML(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode YAML configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML configuration: %w", err)
	}
	return buf.Bytes(), nil
}
