// Package config provides configuration parsing for barcard.
// This file implements the unified parser that auto-detects the configuration format.

package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
)

// Parser provides a unified interface for parsing card configuration files.
// It automatically detects whether a file uses the Lua or the YAML format.
type Parser struct {
	yamlParser *YAMLConfigParser
	luaParser  *LuaConfigParser
}

// NewParser creates a new Parser that can handle both YAML and Lua configurations.
func NewParser() (*Parser, error) {
	luaParser, err := NewLuaConfigParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create Lua parser: %w", err)
	}

	return &Parser{
		yamlParser: NewYAMLConfigParser(),
		luaParser:  luaParser,
	}, nil
}

// ParseFile reads and parses a configuration file, auto-detecting the format.
// Returns a Config on success or an error if parsing fails.
func (p *Parser) ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return p.Parse(content)
}

// Parse parses configuration content, auto-detecting the format.
// It uses the presence of a "card = " assignment to detect Lua format.
func (p *Parser) Parse(content []byte) (*Config, error) {
	if isLuaConfig(content) {
		return p.luaParser.Parse(content)
	}
	return p.yamlParser.Parse(content)
}

// luaConfigPattern matches "card" followed by optional whitespace and "="
// at the start of a line. A YAML file would use "card:" instead.
var luaConfigPattern = regexp.MustCompile(`(?m)^\s*card\s*=`)

// isLuaConfig determines if the content is a Lua configuration.
func isLuaConfig(content []byte) bool {
	return luaConfigPattern.Match(content)
}

// ParseFromFS reads and parses a configuration file from an embedded filesystem.
// It auto-detects the format (YAML or Lua) based on content.
func (p *Parser) ParseFromFS(fsys fs.FS, path string) (*Config, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS %s: %w", path, err)
	}

	return p.Parse(content)
}

// ParseReader parses configuration from an io.Reader.
// The format parameter must be "yaml", "lua" or "" to auto-detect.
func (p *Parser) ParseReader(r io.Reader, format string) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch format {
	case "lua":
		return p.luaParser.Parse(content)
	case "yaml", "yml":
		return p.yamlParser.Parse(content)
	case "":
		return p.Parse(content)
	default:
		return nil, fmt.Errorf("unknown format: %s (expected 'lua' or 'yaml')", format)
	}
}

// Close releases resources associated with the parser.
func (p *Parser) Close() error {
	if p.luaParser != nil {
		return p.luaParser.Close()
	}
	return nil
}

// applyBarDefaults fills unset per-bar settings after decoding. Bars are
// decoded from scratch so their zero values are replaced here.
func applyBarDefaults(cfg *Config) {
	def := DefaultBarConfig()
	for i := range cfg.Bars {
		b := &cfg.Bars[i]
		if b.Direction == "" {
			b.Direction = def.Direction
		}
		if b.Color == "" {
			b.Color = def.Color
		}
		if b.Gradient.Mode == "" {
			b.Gradient.Mode = def.Gradient.Mode
		}
		if b.Fill == FillGradient && len(b.Gradient.Stops) == 0 {
			b.Gradient.Stops = DefaultStops()
		}
		if b.Source.Mode == "" {
			b.Source.Mode = def.Source.Mode
		}
	}
	if cfg.Theme == nil {
		cfg.Theme = DefaultTheme()
	}
	if cfg.States == nil {
		cfg.States = map[string]StateConfig{}
	}
}
