// Package config provides configuration parsing and migration for barcard.
// This file implements conversion of card configurations, typically parsed
// from YAML, to the Lua card format.
package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Migrator converts card configurations to the Lua card format.
type Migrator struct {
	// includeComments adds explanatory comments to the output.
	includeComments bool
	// preserveDefaults includes settings even when they match defaults.
	preserveDefaults bool
}

// MigratorOption is a functional option for configuring a Migrator.
type MigratorOption func(*Migrator)

// WithComments enables adding explanatory comments to the Lua output.
func WithComments(include bool) MigratorOption {
	return func(m *Migrator) {
		m.includeComments = include
	}
}

// WithDefaults includes settings that match default values in the output.
func WithDefaults(preserve bool) MigratorOption {
	return func(m *Migrator) {
		m.preserveDefaults = preserve
	}
}

// NewMigrator creates a new Migrator with the given options.
func NewMigrator(opts ...MigratorOption) *Migrator {
	m := &Migrator{
		includeComments:  true,
		preserveDefaults: false,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MigrateToLua converts a Config to a Lua card file.
// The output parses back to an equivalent Config with LuaConfigParser.
func (m *Migrator) MigrateToLua(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	var buf bytes.Buffer

	if m.includeComments {
		buf.WriteString("-- barcard Lua card\n")
		buf.WriteString("-- Generated by barcard\n\n")
	}

	buf.WriteString("card = {\n")
	m.writeWindow(&buf, cfg)
	m.writeTheme(&buf, cfg)
	m.writeStates(&buf, cfg)
	m.writeBars(&buf, cfg)
	buf.WriteString("}\n")

	return buf.Bytes(), nil
}

// writeWindow writes the window table.
func (m *Migrator) writeWindow(buf *bytes.Buffer, cfg *Config) {
	defaults := DefaultWindowConfig()
	w := cfg.Window

	var body bytes.Buffer
	if m.preserveDefaults || w.Title != defaults.Title {
		m.writeString(&body, 2, "title", w.Title)
	}
	if m.preserveDefaults || w.Width != defaults.Width {
		m.writeInt(&body, 2, "width", w.Width)
	}
	if m.preserveDefaults || w.BarHeight != defaults.BarHeight {
		m.writeInt(&body, 2, "bar_height", w.BarHeight)
	}
	if m.preserveDefaults || w.Spacing != defaults.Spacing {
		m.writeInt(&body, 2, "spacing", w.Spacing)
	}
	if m.preserveDefaults || w.UpdateInterval != defaults.UpdateInterval {
		m.writeFloat(&body, 2, "update_interval", w.UpdateInterval.Seconds())
	}
	if m.preserveDefaults || w.Background != defaults.Background {
		m.writeString(&body, 2, "background", w.Background)
	}
	if m.preserveDefaults || w.TrackColor != defaults.TrackColor {
		m.writeString(&body, 2, "track_color", w.TrackColor)
	}
	if body.Len() == 0 {
		return
	}

	if m.includeComments {
		buf.WriteString("    -- Window settings\n")
	}
	buf.WriteString("    window = {\n")
	buf.Write(body.Bytes())
	buf.WriteString("    },\n")
}

// writeTheme writes theme entries that differ from the default theme.
func (m *Migrator) writeTheme(buf *bytes.Buffer, cfg *Config) {
	defaults := DefaultTheme()
	var names []string
	for name, value := range cfg.Theme {
		if m.preserveDefaults || defaults[name] != value {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)

	if m.includeComments {
		buf.WriteString("\n    -- Theme colors\n")
	}
	buf.WriteString("    theme = {\n")
	for _, name := range names {
		fmt.Fprintf(buf, "        [%s] = %s,\n", luaQuote(name), luaQuote(cfg.Theme[name]))
	}
	buf.WriteString("    },\n")
}

// writeStates writes static entity states in id order.
func (m *Migrator) writeStates(buf *bytes.Buffer, cfg *Config) {
	if len(cfg.States) == 0 {
		return
	}
	ids := make([]string, 0, len(cfg.States))
	for id := range cfg.States {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if m.includeComments {
		buf.WriteString("\n    -- Static entity states\n")
	}
	buf.WriteString("    states = {\n")
	for _, id := range ids {
		st := cfg.States[id]
		fmt.Fprintf(buf, "        [%s] = {\n", luaQuote(id))
		if st.State != nil {
			fmt.Fprintf(buf, "            state = %s,\n", luaScalar(st.State))
		}
		if len(st.Attributes) > 0 {
			keys := make([]string, 0, len(st.Attributes))
			for k := range st.Attributes {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			buf.WriteString("            attributes = {\n")
			for _, k := range keys {
				fmt.Fprintf(buf, "                [%s] = %s,\n", luaQuote(k), luaScalar(st.Attributes[k]))
			}
			buf.WriteString("            },\n")
		}
		buf.WriteString("        },\n")
	}
	buf.WriteString("    },\n")
}

// writeBars writes the bars array.
func (m *Migrator) writeBars(buf *bytes.Buffer, cfg *Config) {
	if len(cfg.Bars) == 0 {
		return
	}
	if m.includeComments {
		buf.WriteString("\n    -- Bars\n")
	}
	buf.WriteString("    bars = {\n")
	for _, b := range cfg.Bars {
		buf.WriteString("        {\n")
		m.writeString(buf, 3, "name", b.Name)
		m.writeString(buf, 3, "fill", b.Fill.String())
		if b.Color != "" {
			m.writeString(buf, 3, "color", b.Color)
		}
		if b.Pattern != "" {
			m.writeString(buf, 3, "pattern", b.Pattern)
		}
		if b.Direction != "" {
			m.writeString(buf, 3, "direction", b.Direction)
		}
		if b.Fill == FillGradient {
			m.writeGradient(buf, &b.Gradient)
		}
		m.writeSource(buf, &b.Source)
		m.writeTrigger(buf, "animation", &b.Animation)
		m.writeTrigger(buf, "override", &b.Override)
		buf.WriteString("        },\n")
	}
	buf.WriteString("    },\n")
}

func (m *Migrator) writeGradient(buf *bytes.Buffer, gc *GradientConfig) {
	indent := strings.Repeat("    ", 3)
	buf.WriteString(indent + "gradient = {\n")
	if gc.Mode != "" {
		m.writeString(buf, 4, "mode", gc.Mode)
	}
	buf.WriteString(indent + "    stops = {\n")
	for _, s := range gc.Stops {
		fmt.Fprintf(buf, "%s        { position = %s, color = %s },\n",
			indent, formatNumber(s.Position), luaQuote(s.Color))
	}
	buf.WriteString(indent + "    },\n")
	buf.WriteString(indent + "},\n")
}

func (m *Migrator) writeSource(buf *bytes.Buffer, sc *SourceConfig) {
	fields := []struct{ key, value string }{
		{"mode", sc.Mode},
		{"entity", sc.Entity},
		{"attribute", sc.Attribute},
		{"attribute_entity", sc.AttributeEntity},
		{"current_entity", sc.CurrentEntity},
		{"total_entity", sc.TotalEntity},
		{"template", sc.Template},
	}
	buf.WriteString("            source = {\n")
	for _, f := range fields {
		if f.value != "" {
			m.writeString(buf, 4, f.key, f.value)
		}
	}
	if sc.Max != nil {
		fmt.Fprintf(buf, "                max = %s,\n", luaScalar(sc.Max))
	}
	buf.WriteString("            },\n")
}

func (m *Migrator) writeTrigger(buf *bytes.Buffer, name string, tc *TriggerConfig) {
	if tc.Animation == "" && tc.Entity == "" && tc.Enabled == nil {
		return
	}
	fmt.Fprintf(buf, "            %s = {\n", name)
	if tc.Enabled != nil {
		m.writeBool(buf, 4, "enabled", *tc.Enabled)
	}
	fields := []struct{ key, value string }{
		{"animation", tc.Animation},
		{"entity", tc.Entity},
		{"kind", tc.Kind},
		{"attribute", tc.Attribute},
		{"match", tc.Match},
	}
	for _, f := range fields {
		if f.value != "" {
			m.writeString(buf, 4, f.key, f.value)
		}
	}
	buf.WriteString("            },\n")
}

// writeBool writes a boolean setting to the buffer.
func (m *Migrator) writeBool(buf *bytes.Buffer, depth int, name string, value bool) {
	fmt.Fprintf(buf, "%s%s = %t,\n", strings.Repeat("    ", depth), name, value)
}

// writeString writes a string setting to the buffer.
func (m *Migrator) writeString(buf *bytes.Buffer, depth int, name, value string) {
	fmt.Fprintf(buf, "%s%s = %s,\n", strings.Repeat("    ", depth), name, luaQuote(value))
}

// writeInt writes an integer setting to the buffer.
func (m *Migrator) writeInt(buf *bytes.Buffer, depth int, name string, value int) {
	fmt.Fprintf(buf, "%s%s = %d,\n", strings.Repeat("    ", depth), name, value)
}

// writeFloat writes a float setting to the buffer.
func (m *Migrator) writeFloat(buf *bytes.Buffer, depth int, name string, value float64) {
	// Keep a decimal point so Lua reads it back as a float
	if value == float64(int(value)) {
		fmt.Fprintf(buf, "%s%s = %.1f,\n", strings.Repeat("    ", depth), name, value)
	} else {
		fmt.Fprintf(buf, "%s%s = %g,\n", strings.Repeat("    ", depth), name, value)
	}
}

// luaQuote quotes s as a Lua string literal.
func luaQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

// luaScalar renders a decoded state value as a Lua literal.
func luaScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return luaQuote(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatNumber(x)
	default:
		return luaQuote(fmt.Sprint(x))
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MigrateYAMLFile reads a YAML card file and converts it to Lua format.
// This is a convenience function that combines parsing and migration.
func MigrateYAMLFile(path string, opts ...MigratorOption) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return MigrateYAMLContent(content, opts...)
}

// MigrateYAMLContent converts YAML card content to Lua format.
func MigrateYAMLContent(content []byte, opts ...MigratorOption) ([]byte, error) {
	cfg, err := NewYAMLConfigParser().Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	migrator := NewMigrator(opts...)
	return migrator.MigrateToLua(cfg)
}
