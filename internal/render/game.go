package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/opd-ai/go-barcard/internal/fill"
)

// ErrGameTerminated is returned when the game loop is terminated via context cancellation.
var ErrGameTerminated = errors.New("game terminated")

// ErrorHandler is a function type for handling errors during game updates.
type ErrorHandler func(err error)

// DefaultErrorHandler writes errors to stderr.
func DefaultErrorHandler(err error) {
	fmt.Fprintf(os.Stderr, "update error: %v\n", err)
}

// TextRendererInterface defines the interface for text rendering.
// This allows for mocking in tests.
type TextRendererInterface interface {
	DrawText(screen *ebiten.Image, s string, x, y float64, clr color.Color)
	MeasureText(s string) (width, height float64)
	LineHeight() float64
}

// Game implements ebiten.Game and draws one labelled ProgressBar per bar.
type Game struct {
	config       Config
	textRenderer TextRendererInterface
	source       BarSource
	errorHandler ErrorHandler
	lastUpdate   time.Time
	started      time.Time
	bars         []Bar
	widgets      []*ProgressBar
	mu           sync.RWMutex
	running      bool
	ctx          context.Context
}

// NewGame creates a new Game instance with the provided configuration.
func NewGame(config Config) *Game {
	return NewGameWithRenderer(config, NewTextRenderer())
}

// NewGameWithRenderer creates a new Game instance with a custom text renderer.
// This is useful for testing.
func NewGameWithRenderer(config Config, renderer TextRendererInterface) *Game {
	return &Game{
		config:       config,
		textRenderer: renderer,
		errorHandler: DefaultErrorHandler,
		started:      time.Now(),
	}
}

// SetErrorHandler sets a custom error handler for update errors.
// If nil is passed, errors will be silently ignored.
func (g *Game) SetErrorHandler(handler ErrorHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errorHandler = handler
}

// SetSource sets where bars are refreshed from. The first Update after this
// call refreshes immediately.
func (g *Game) SetSource(src BarSource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.source = src
	g.lastUpdate = time.Time{}
}

// SetContext sets a context for the game loop. When the context is cancelled,
// the game loop will terminate gracefully.
func (g *Game) SetContext(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ctx = ctx
}

// SetBars replaces the rows to draw.
func (g *Game) SetBars(bars []Bar) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setBarsLocked(bars)
}

// Bars returns a copy of the rows being drawn.
func (g *Game) Bars() []Bar {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Bar, len(g.bars))
	copy(out, g.bars)
	return out
}

func (g *Game) setBarsLocked(bars []Bar) {
	g.bars = make([]Bar, len(bars))
	copy(g.bars, bars)
	g.layoutLocked()
}

// rowHeight is the height of a label plus its bar.
func (g *Game) rowHeight() float64 {
	return g.textRenderer.LineHeight() + float64(g.config.BarHeight)
}

// layoutLocked positions one widget per bar.
func (g *Game) layoutLocked() {
	style := DefaultWidgetStyle()
	style.TrackColor = g.config.TrackColor

	pad := float64(g.config.Padding)
	width := float64(g.config.Width) - 2*pad
	row := g.rowHeight() + float64(g.config.Spacing)
	label := g.textRenderer.LineHeight()

	g.widgets = make([]*ProgressBar, len(g.bars))
	for i, b := range g.bars {
		pb := NewProgressBar(pad, float64(g.config.Spacing)+float64(i)*row+label, width, float64(g.config.BarHeight))
		pb.SetStyle(style)
		pb.SetSpec(b.Fill)
		g.widgets[i] = pb
	}
}

// Height returns the window height needed for the current rows.
func (g *Game) Height() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.heightLocked()
}

func (g *Game) heightLocked() int {
	rows := len(g.bars)
	if rows == 0 {
		rows = 1
	}
	h := float64(rows)*(g.rowHeight()+float64(g.config.Spacing)) + float64(g.config.Spacing)
	return int(math.Ceil(h))
}

// Update implements ebiten.Game.Update.
// It is called every tick (typically 60 times per second).
func (g *Game) Update() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	// Check for context cancellation (used for programmatic shutdown)
	if g.ctx != nil {
		select {
		case <-g.ctx.Done():
			return ErrGameTerminated
		default:
		}
	}

	if g.source != nil && time.Since(g.lastUpdate) >= g.config.UpdateInterval {
		bars, err := g.source.Bars()
		if err != nil {
			if g.errorHandler != nil {
				g.errorHandler(err)
			}
		} else {
			g.setBarsLocked(bars)
		}
		g.lastUpdate = time.Now()
	}

	phase := g.phaseLocked(time.Now())
	for _, w := range g.widgets {
		w.SetPhase(phase)
	}
	return nil
}

// phaseLocked returns the pattern phase at now, cycling once per
// ShimmerPeriod.
func (g *Game) phaseLocked(now time.Time) float64 {
	if g.config.ShimmerPeriod <= 0 {
		return 0
	}
	elapsed := now.Sub(g.started)
	return float64(elapsed%g.config.ShimmerPeriod) / float64(g.config.ShimmerPeriod) * (1 + fill.ShimmerWidth)
}

// Draw implements ebiten.Game.Draw.
// It is called every frame to render the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	screen.Fill(g.config.BackgroundColor)

	label := g.textRenderer.LineHeight()
	for i, w := range g.widgets {
		x, y := float64(g.config.Padding), w.y-label
		g.textRenderer.DrawText(screen, g.bars[i].Label, x, y, g.config.LabelColor)
		w.Draw(screen)
	}
}

// Layout implements ebiten.Game.Layout.
// It returns the game's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config.Width, g.heightLocked()
}

// Config returns the current configuration.
func (g *Game) Config() Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config
}

// SetConfig updates the game configuration in-place and lays the rows out
// again. This allows hot-reloading without stopping the game loop.
func (g *Game) SetConfig(config Config) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config = config
	g.layoutLocked()
}

// Run starts the Ebiten game loop.
// This function blocks until the window is closed.
func (g *Game) Run() error {
	cfg := g.Config()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid render config: %w", err)
	}
	ebiten.SetWindowSize(cfg.Width, g.Height())
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	err := ebiten.RunGame(g)

	g.mu.Lock()
	g.running = false
	g.mu.Unlock()

	if errors.Is(err, ErrGameTerminated) {
		return nil
	}
	return err
}

// IsRunning returns whether the game loop is currently running.
func (g *Game) IsRunning() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.running
}
