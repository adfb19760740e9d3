// Package config provides configuration parsing for barcard.
// This file implements the Lua card parser.

package config

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-barcard/internal/entity"
)

// LuaConfigParser parses Lua card files. The file assigns a table to the
// global "card"; the Golua runtime executes it and the table is read back
// into a Config.
type LuaConfigParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaConfigParser creates a new LuaConfigParser with a fresh Lua runtime.
func NewLuaConfigParser() (*LuaConfigParser, error) {
	return NewLuaConfigParserWithOutput(io.Discard)
}

// NewLuaConfigParserWithOutput creates a LuaConfigParser with custom output
// for Lua's print.
func NewLuaConfigParserWithOutput(stdout io.Writer) (*LuaConfigParser, error) {
	if stdout == nil {
		stdout = os.Stdout
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &LuaConfigParser{
		runtime: runtime,
		cleanup: cleanup,
	}, nil
}

// Parse executes content and extracts the card table.
func (p *LuaConfigParser) Parse(content []byte) (*Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Reset the card global so a previous parse does not leak through
	p.runtime.GlobalEnv().Set(rt.StringValue("card"), rt.TableValue(rt.NewTable()))

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		"card",
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Lua configuration: %w", err)
	}

	// Execute with resource limits
	ctx := rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    10_000_000,
			Memory: 50 * 1024 * 1024, // 50 MB
		},
	}
	p.runtime.PushContext(ctx)
	defer p.runtime.PopContext()

	thread := p.runtime.MainThread()
	_, err = rt.Call1(thread, rt.FunctionValue(closure))
	if err != nil {
		return nil, fmt.Errorf("failed to execute Lua configuration: %w", err)
	}

	return p.extractConfig()
}

// extractConfig reads the card global into a Config.
func (p *LuaConfigParser) extractConfig() (*Config, error) {
	cfg := DefaultConfig()

	cardVal := p.runtime.GlobalEnv().Get(rt.StringValue("card"))
	if cardVal == rt.NilValue {
		applyBarDefaults(&cfg)
		return &cfg, nil
	}

	card, ok := cardVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("card is not a table")
	}

	if t := getTableTable(card, "window"); t != nil {
		extractWindow(&cfg.Window, t)
	}

	if t := getTableTable(card, "theme"); t != nil {
		var err error
		forEachPair(t, func(k string, v rt.Value) {
			s, ok := v.TryString()
			if !ok {
				err = fmt.Errorf("invalid theme.%s: expected a color string", k)
				return
			}
			cfg.Theme[k] = s
		})
		if err != nil {
			return nil, err
		}
	}

	if t := getTableTable(card, "states"); t != nil {
		forEachPair(t, func(id string, v rt.Value) {
			cfg.States[id] = extractState(v)
		})
	}

	if t := getTableTable(card, "bars"); t != nil {
		for i := int64(1); ; i++ {
			v := t.Get(rt.IntValue(i))
			if v == rt.NilValue {
				break
			}
			bt, ok := v.TryTable()
			if !ok {
				return nil, fmt.Errorf("bars[%d] is not a table", i)
			}
			bar, err := extractBar(bt)
			if err != nil {
				return nil, fmt.Errorf("bars[%d]: %w", i, err)
			}
			cfg.Bars = append(cfg.Bars, bar)
		}
	}

	applyBarDefaults(&cfg)
	return &cfg, nil
}

func extractWindow(wc *WindowConfig, t *rt.Table) {
	if val := getTableString(t, "title"); val != nil {
		wc.Title = *val
	}
	if val := getTableInt(t, "width"); val != nil {
		wc.Width = *val
	}
	if val := getTableInt(t, "bar_height"); val != nil {
		wc.BarHeight = *val
	}
	if val := getTableInt(t, "spacing"); val != nil {
		wc.Spacing = *val
	}
	// Seconds
	if val := getTableFloat(t, "update_interval"); val != nil {
		wc.UpdateInterval = time.Duration(*val * float64(time.Second))
	}
	if val := getTableString(t, "background"); val != nil {
		wc.Background = *val
	}
	if val := getTableString(t, "track_color"); val != nil {
		wc.TrackColor = *val
	}
}

// extractState accepts either a bare value or {state = ..., attributes = {...}}.
func extractState(v rt.Value) StateConfig {
	t, ok := v.TryTable()
	if !ok {
		return StateConfig{State: luaToGo(v)}
	}
	st := StateConfig{State: luaToGo(t.Get(rt.StringValue("state")))}
	if at := getTableTable(t, "attributes"); at != nil {
		st.Attributes = map[string]any{}
		forEachPair(at, func(k string, v rt.Value) {
			st.Attributes[k] = luaToGo(v)
		})
	}
	return st
}

func extractBar(t *rt.Table) (BarConfig, error) {
	var b BarConfig

	if val := getTableString(t, "name"); val != nil {
		b.Name = *val
	}
	if val := getTableString(t, "fill"); val != nil {
		fill, err := ParseFillKind(*val)
		if err != nil {
			return b, fmt.Errorf("invalid fill: %w", err)
		}
		b.Fill = fill
	}
	if val := getTableString(t, "color"); val != nil {
		b.Color = *val
	}
	if val := getTableString(t, "pattern"); val != nil {
		b.Pattern = *val
	}
	if val := getTableString(t, "direction"); val != nil {
		b.Direction = *val
	}

	if gt := getTableTable(t, "gradient"); gt != nil {
		if val := getTableString(gt, "mode"); val != nil {
			b.Gradient.Mode = *val
		}
		if st := getTableTable(gt, "stops"); st != nil {
			for i := int64(1); ; i++ {
				v := st.Get(rt.IntValue(i))
				if v == rt.NilValue {
					break
				}
				stop, ok := v.TryTable()
				if !ok {
					return b, fmt.Errorf("gradient.stops[%d] is not a table", i)
				}
				var sc StopConfig
				if val := getTableFloat(stop, "position"); val != nil {
					sc.Position = *val
				}
				if val := getTableString(stop, "color"); val != nil {
					sc.Color = *val
				}
				b.Gradient.Stops = append(b.Gradient.Stops, sc)
			}
		}
	}

	if st := getTableTable(t, "source"); st != nil {
		src := &b.Source
		for key, target := range map[string]*string{
			"mode":             &src.Mode,
			"entity":           &src.Entity,
			"attribute":        &src.Attribute,
			"attribute_entity": &src.AttributeEntity,
			"current_entity":   &src.CurrentEntity,
			"total_entity":     &src.TotalEntity,
			"template":         &src.Template,
		} {
			if val := getTableString(st, key); val != nil {
				*target = *val
			}
		}
		if v := st.Get(rt.StringValue("max")); v != rt.NilValue {
			src.Max = luaToGo(v)
		}
	}

	if tt := getTableTable(t, "animation"); tt != nil {
		b.Animation = extractTrigger(tt)
	}
	if tt := getTableTable(t, "override"); tt != nil {
		b.Override = extractTrigger(tt)
	}
	return b, nil
}

func extractTrigger(t *rt.Table) TriggerConfig {
	var tc TriggerConfig
	tc.Enabled = getTableBool(t, "enabled")
	for key, target := range map[string]*string{
		"animation": &tc.Animation,
		"entity":    &tc.Entity,
		"kind":      &tc.Kind,
		"attribute": &tc.Attribute,
	} {
		if val := getTableString(t, key); val != nil {
			*target = *val
		}
	}
	// Match values may be written as numbers or booleans
	if v := t.Get(rt.StringValue("match")); v != rt.NilValue {
		tc.Match = entity.Stringify(luaToGo(v))
	}
	return tc
}

// Close releases resources associated with the parser's Lua runtime.
func (p *LuaConfigParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// forEachPair calls fn for every string-keyed entry of table.
func forEachPair(table *rt.Table, fn func(key string, v rt.Value)) {
	k, v, ok := table.Next(rt.NilValue)
	for ok && k != rt.NilValue {
		if s, isStr := k.TryString(); isStr {
			fn(s, v)
		}
		k, v, ok = table.Next(k)
	}
}

// luaToGo converts a scalar Lua value to string, int64, float64 or bool.
// Other values become nil.
func luaToGo(v rt.Value) any {
	switch v.Type() {
	case rt.IntType:
		n, _ := v.TryInt()
		return n
	case rt.FloatType:
		f, _ := v.TryFloat()
		return f
	case rt.StringType:
		s, _ := v.TryString()
		return s
	case rt.BoolType:
		b, _ := v.TryBool()
		return b
	default:
		return nil
	}
}

// getTableTable retrieves a nested table from a Lua table.
// Returns nil if the key doesn't exist or is not a table.
func getTableTable(table *rt.Table, key string) *rt.Table {
	val := table.Get(rt.StringValue(key))
	if t, ok := val.TryTable(); ok {
		return t
	}
	return nil
}

// getTableBool retrieves a boolean value from a Lua table.
// Returns nil if the key doesn't exist or is not a boolean.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if b, ok := val.TryBool(); ok {
		return &b
	}

	// Handle string "true"/"false" for compatibility
	if s, ok := val.TryString(); ok {
		b := parseBool(s)
		return &b
	}

	return nil
}

// getTableString retrieves a string value from a Lua table.
// Returns nil if the key doesn't exist or is not a string.
func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if s, ok := val.TryString(); ok {
		return &s
	}

	return nil
}

// getTableFloat retrieves a float64 value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableFloat(table *rt.Table, key string) *float64 {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if n, ok := val.TryFloat(); ok {
		return &n
	}

	// Try int conversion
	if n, ok := val.TryInt(); ok {
		f := float64(n)
		return &f
	}

	return nil
}

// getTableInt retrieves an int value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}

	// Try float conversion (truncate)
	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}

	return nil
}

// parseBool accepts the usual yes/no spellings of a boolean.
func parseBool(s string) bool {
	switch s {
	case "yes", "true", "1", "on":
		return true
	default:
		return false
	}
}
