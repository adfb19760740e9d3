package barcard

import (
	"time"

	"github.com/opd-ai/go-barcard/internal/colors"
	"github.com/opd-ai/go-barcard/internal/entity"
	"github.com/opd-ai/go-barcard/internal/percent"
)

// Config formats accepted by NewFromReader.
const (
	FormatAuto = ""
	FormatLua  = "lua"
	FormatYAML = "yaml"
)

// Options configures an Engine.
type Options struct {
	// States supplies live entity state. If nil, the engine serves the
	// states declared in the card file, editable through SetState.
	States entity.Lookup

	// Templates evaluates template-mode sources. If nil, the template text
	// itself is read as the evaluated result.
	Templates percent.TemplateEvaluator

	// ColorCacheTTL is how long resolved theme references are cached.
	// Zero means colors.DefaultCacheTTL.
	ColorCacheTTL time.Duration

	// StrictValidation turns unknown entities and unresolvable colors in
	// the card file into load errors.
	StrictValidation bool

	// ExpandEnv expands ${VAR} references in colors, entity ids and
	// templates after parsing.
	ExpandEnv bool

	// Logger sets a custom logger. If nil, no logging is performed.
	Logger Logger

	// Metrics sets the metrics collector. If nil, DefaultMetrics() is used.
	Metrics *Metrics

	// WatchConfig starts watching the card file as soon as the engine is
	// created from a path.
	WatchConfig bool

	// WatchDebounce collapses rapid file changes into one reload.
	// Zero means DefaultWatchDebounce.
	WatchDebounce time.Duration
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		ColorCacheTTL: colors.DefaultCacheTTL,
		ExpandEnv:     true,
		WatchDebounce: DefaultWatchDebounce,
	}
}

// withDefaults fills nil collaborators so the engine never checks for them.
func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = NopLogger()
	}
	if o.Metrics == nil {
		o.Metrics = DefaultMetrics()
	}
	if o.ColorCacheTTL <= 0 {
		o.ColorCacheTTL = colors.DefaultCacheTTL
	}
	return o
}

// Logger interface for custom logging.
// It follows the slog-style signature for compatibility with Go's structured logging.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}
