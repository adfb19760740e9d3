//go:build !noebiten

package barcard

import (
	"context"
	"fmt"

	"github.com/opd-ai/go-barcard/internal/css"
	"github.com/opd-ai/go-barcard/internal/render"
)

// RunWindow opens a window showing every bar and keeps it current until
// the window is closed or ctx is cancelled. Reloads are picked up on the
// next refresh.
func (e *Engine) RunWindow(ctx context.Context) error {
	game := render.NewGame(e.windowConfig())
	game.SetContext(ctx)
	game.SetErrorHandler(func(err error) {
		e.notifyError(NewCategorizedError(err, ErrorCategoryRender, SeverityWarning))
	})
	game.SetSource(render.BarSourceFunc(func() ([]render.Bar, error) {
		if cfg := e.windowConfig(); cfg != game.Config() {
			game.SetConfig(cfg)
		}
		return e.windowBars(), nil
	}))

	if err := game.Run(); err != nil {
		return NewCategorizedError(fmt.Errorf("window: %w", err), ErrorCategoryRender, SeverityError)
	}
	return nil
}

// windowConfig maps the card's window section onto the renderer config.
func (e *Engine) windowConfig() render.Config {
	e.mu.RLock()
	win := e.cfg.Window
	e.mu.RUnlock()

	rc := render.DefaultConfig()
	if win.Title != "" {
		rc.Title = win.Title
	}
	if win.Width > 0 {
		rc.Width = win.Width
	}
	if win.BarHeight > 0 {
		rc.BarHeight = win.BarHeight
	}
	if win.Spacing >= 0 {
		rc.Spacing = win.Spacing
	}
	if win.UpdateInterval > 0 {
		rc.UpdateInterval = win.UpdateInterval
	}
	bg, track := e.windowColors()
	rc.BackgroundColor = render.ToNRGBA(bg)
	rc.TrackColor = render.ToNRGBA(track)
	return rc
}

func (e *Engine) windowBars() []render.Bar {
	all := e.compileAll()
	bars := make([]render.Bar, len(all))
	for i, c := range all {
		label := fmt.Sprintf("%s %s", c.result.Name, css.Percent(c.result.Percentage))
		if c.result.Animated() {
			label += " [" + c.result.Animation + "]"
		}
		bars[i] = render.Bar{Label: label, Fill: c.spec}
	}
	return bars
}
