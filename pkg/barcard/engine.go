package barcard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-barcard/internal/colors"
	"github.com/opd-ai/go-barcard/internal/config"
	"github.com/opd-ai/go-barcard/internal/entity"
)

// Engine renders the bars of one card. It is safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	cfg      *config.Config
	resolver *colors.CachedResolver
	store    *entity.Store
	opts     Options

	configSource string
	configPath   string
	configLoader func() (*config.Config, error)
	lastReload   time.Time

	watcher      *configWatcher
	errorHandler ErrorHandler
	eventHandler EventHandler
	lastError    atomic.Value
	closed       bool
}

// New creates an Engine from a card file (Lua or YAML, detected from the
// content).
//
// Example:
//
//	e, err := barcard.New("card.yaml", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer e.Close()
//	res, err := e.Render("cpu")
func New(configPath string, opts *Options) (*Engine, error) {
	loader := func() (*config.Config, error) {
		p, err := config.NewParser()
		if err != nil {
			return nil, fmt.Errorf("parser init: %w", err)
		}
		defer p.Close()
		return p.ParseFile(configPath)
	}
	e, err := newEngine(configPath, loader, opts)
	if err != nil {
		return nil, err
	}
	e.configPath = configPath

	if e.opts.WatchConfig {
		if err := e.Watch(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// NewFromFS creates an Engine from a card file inside fsys, e.g. an
// embed.FS bundled with the binary.
func NewFromFS(fsys fs.FS, configPath string, opts *Options) (*Engine, error) {
	loader := func() (*config.Config, error) {
		p, err := config.NewParser()
		if err != nil {
			return nil, fmt.Errorf("parser init: %w", err)
		}
		defer p.Close()
		return p.ParseFromFS(fsys, configPath)
	}
	return newEngine("embedded:"+configPath, loader, opts)
}

// NewFromReader creates an Engine from card content. format is FormatLua,
// FormatYAML or FormatAuto.
func NewFromReader(r io.Reader, format string, opts *Options) (*Engine, error) {
	switch format {
	case FormatAuto, FormatLua, FormatYAML:
	default:
		return nil, fmt.Errorf("%w: %q (expected %q, %q or auto)", ErrInvalidFormat, format, FormatLua, FormatYAML)
	}

	// The reader is consumed once; reloads parse the same bytes.
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, NewCategorizedError(fmt.Errorf("read config: %w", err), ErrorCategoryIO, SeverityCritical)
	}
	loader := func() (*config.Config, error) {
		p, err := config.NewParser()
		if err != nil {
			return nil, fmt.Errorf("parser init: %w", err)
		}
		defer p.Close()
		return p.ParseReader(bytes.NewReader(content), format)
	}
	return newEngine("reader", loader, opts)
}

func newEngine(source string, loader func() (*config.Config, error), opts *Options) (*Engine, error) {
	if opts == nil {
		defaultOpts := DefaultOptions()
		opts = &defaultOpts
	}
	e := &Engine{
		opts:         opts.withDefaults(),
		store:        entity.NewStore(),
		configSource: source,
		configLoader: loader,
	}

	cfg, err := e.load()
	if err != nil {
		return nil, err
	}
	e.apply(cfg)
	e.opts.Logger.Info("card loaded", "source", source, "bars", len(cfg.Bars))
	return e, nil
}

// load parses and validates the card without touching engine state.
func (e *Engine) load() (*config.Config, error) {
	cfg, err := e.configLoader()
	if err != nil {
		return nil, NewCategorizedError(fmt.Errorf("parse config: %w", err), ErrorCategoryConfig, SeverityCritical).
			WithContext("source", e.configSource)
	}
	if e.opts.ExpandEnv {
		config.ExpandEnvConfig(cfg)
	}

	validator := config.NewValidator().WithStrictMode(e.opts.StrictValidation)
	if e.opts.States != nil {
		if lister, ok := e.opts.States.(interface{ IDs() []string }); ok {
			validator.WithKnownEntities(lister.IDs()...)
		}
	}
	result := validator.Validate(cfg)
	for _, w := range result.Warnings {
		e.opts.Logger.Warn("config warning", "field", w.Field, "message", w.Message)
	}
	if err := result.Error(); err != nil {
		return nil, NewCategorizedError(err, ErrorCategoryConfig, SeverityCritical).
			WithContext("source", e.configSource)
	}
	return cfg, nil
}

// apply swaps in a loaded card.
func (e *Engine) apply(cfg *config.Config) {
	resolver := colors.NewCachedResolver(colors.Theme(cfg.Theme), e.opts.ColorCacheTTL)

	e.mu.Lock()
	e.store.Replace(statesOf(cfg.States))
	e.cfg = cfg
	e.resolver = resolver
	e.lastReload = time.Now()
	e.mu.Unlock()

	e.opts.Metrics.SetBars(len(cfg.Bars))
}

// lookup returns the entity state collaborator.
func (e *Engine) lookup() entity.Lookup {
	if e.opts.States != nil {
		return e.opts.States
	}
	return e.store
}

// Render renders the named bar.
func (e *Engine) Render(name string) (Result, error) {
	c, err := e.compile(name)
	if err != nil {
		return Result{}, err
	}
	return c.result, nil
}

// RenderAll renders every bar in card order.
func (e *Engine) RenderAll() []Result {
	all := e.compileAll()
	results := make([]Result, len(all))
	for i, c := range all {
		results[i] = c.result
	}
	return results
}

func (e *Engine) compile(name string) (compiled, error) {
	e.mu.RLock()
	cfg, resolver := e.cfg, e.resolver
	e.mu.RUnlock()

	b, ok := cfg.Bar(name)
	if !ok {
		return compiled{}, fmt.Errorf("%w: %q", ErrBarNotFound, name)
	}
	return e.compileBar(b, resolver), nil
}

func (e *Engine) compileAll() []compiled {
	e.mu.RLock()
	cfg, resolver := e.cfg, e.resolver
	e.mu.RUnlock()

	out := make([]compiled, len(cfg.Bars))
	for i := range cfg.Bars {
		out[i] = e.compileBar(&cfg.Bars[i], resolver)
	}
	return out
}

func (e *Engine) compileBar(b *config.BarConfig, resolver colors.Resolver) compiled {
	start := time.Now()
	c := compileBar(b, resolver, e.lookup(), e.opts.Templates)
	e.opts.Metrics.RecordRenderLatency(time.Since(start))
	e.opts.Metrics.IncrementRenders()

	if c.fallbacks > 0 {
		e.opts.Metrics.AddColorFallbacks(c.fallbacks)
		e.opts.Logger.Debug("color fell back to gray", "bar", b.Name, "count", c.fallbacks)
	}
	if c.result.Animated() {
		e.opts.Metrics.IncrementAnimated()
	}
	if c.stateErr != nil {
		e.notifyError(NewCategorizedError(c.stateErr, ErrorCategoryState, SeverityWarning).WithContext("bar", b.Name))
	}
	return c
}

// Names returns the bar names in card order.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.Names()
}

// SetState updates the primary state of an entity in the card's own state
// store. It has no effect on renders when Options.States is set.
func (e *Engine) SetState(entityID string, value any) {
	e.store.Set(entityID, value)
}

// SetAttribute updates one attribute in the card's own state store.
func (e *Engine) SetAttribute(entityID, attribute string, value any) {
	e.store.SetAttribute(entityID, attribute, value)
}

// Reload re-reads the card. On failure the previous card stays active and
// the error is returned and reported to the error handler.
func (e *Engine) Reload() error {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	cfg, err := e.load()
	if err != nil {
		e.opts.Metrics.IncrementReloadFailures()
		wrapped := fmt.Errorf("config reload failed: %w", err)
		e.notifyError(wrapped)
		return wrapped
	}
	e.apply(cfg)
	e.opts.Metrics.IncrementConfigReloads()
	e.opts.Logger.Info("card reloaded", "source", e.configSource, "bars", len(cfg.Bars))
	e.emitEvent(EventConfigReloaded, "configuration reloaded")
	return nil
}

// Watch reloads the card whenever its file changes. Only engines created
// with New can be watched. Calling Watch twice is a no-op.
func (e *Engine) Watch() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.configPath == "" {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotWatchable, e.configSource)
	}
	if e.watcher != nil {
		e.mu.Unlock()
		return nil
	}

	// Reload reports its own failures.
	reload := func() error {
		_ = e.Reload()
		return nil
	}
	w, err := newConfigWatcher(e.configPath, e.opts.WatchDebounce, reload, func(err error) {
		e.notifyError(NewCategorizedError(err, ErrorCategoryIO, SeverityWarning).WithContext("source", e.configSource))
	})
	if err != nil {
		e.mu.Unlock()
		return NewCategorizedError(fmt.Errorf("watch config: %w", err), ErrorCategoryIO, SeverityError)
	}
	e.watcher = w
	e.mu.Unlock()

	e.opts.Metrics.SetWatching(true)
	e.opts.Logger.Info("watching card", "path", e.configPath)
	e.emitEvent(EventWatchStarted, e.configPath)
	return nil
}

// Close stops watching and marks the engine closed. Renders keep working
// on the last loaded card.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	w := e.watcher
	e.watcher = nil
	e.mu.Unlock()

	if w != nil {
		w.Stop()
		e.opts.Metrics.SetWatching(false)
		e.emitEvent(EventWatchStopped, e.configPath)
	}
	return nil
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var lastErr error
	if v := e.lastError.Load(); v != nil {
		lastErr = v.(errorBox).err
	}
	return Status{
		ConfigSource: e.configSource,
		Bars:         len(e.cfg.Bars),
		Watching:     e.watcher != nil,
		LastReload:   e.lastReload,
		LastError:    lastErr,
	}
}

// SetErrorHandler registers a callback for runtime errors.
func (e *Engine) SetErrorHandler(handler ErrorHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errorHandler = handler
}

// SetEventHandler registers a callback for lifecycle events.
func (e *Engine) SetEventHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eventHandler = handler
}

// errorBox gives atomic.Value a single concrete type.
type errorBox struct{ err error }

// notifyError stores err, logs it and invokes the error handler.
func (e *Engine) notifyError(err error) {
	e.lastError.Store(errorBox{err})
	e.opts.Metrics.IncrementErrors()

	var ce *CategorizedError
	if errors.As(err, &ce) && ce.Severity < SeverityError {
		e.opts.Logger.Warn("barcard error", "error", err)
	} else {
		e.opts.Logger.Error("barcard error", "error", err)
	}

	e.mu.RLock()
	handler := e.errorHandler
	e.mu.RUnlock()

	if handler != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					e.opts.Logger.Error("error handler panicked", "panic", r, "original_error", err)
				}
			}()
			handler(err)
		}()
	}
	e.emitEvent(EventError, err.Error())
}

// emitEvent sends an event to the event handler if configured.
func (e *Engine) emitEvent(eventType EventType, message string) {
	e.opts.Metrics.IncrementEventsEmitted()

	e.mu.RLock()
	handler := e.eventHandler
	e.mu.RUnlock()

	if handler == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.opts.Logger.Error("event handler panicked", "panic", r, "event", eventType.String())
			}
		}()
		handler(Event{Type: eventType, Timestamp: time.Now(), Message: message})
	}()
}
