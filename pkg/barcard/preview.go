package barcard

import (
	"io"

	"github.com/muesli/termenv"

	"github.com/opd-ai/go-barcard/internal/colors"
	"github.com/opd-ai/go-barcard/internal/preview"
)

// PreviewOptions configures WritePreview.
type PreviewOptions struct {
	// Width is the number of cells per bar. Zero uses the default.
	Width int
	// Phase advances pattern fills; 0 draws them at rest.
	Phase float64
	// TrueColor forces 24-bit color instead of detecting the terminal.
	TrueColor bool
}

// WritePreview draws every bar to w as a row of colored terminal cells.
func (e *Engine) WritePreview(w io.Writer, opts PreviewOptions) error {
	all := e.compileAll()
	rows := make([]preview.Row, len(all))
	for i, c := range all {
		rows[i] = preview.Row{
			Name:       c.result.Name,
			Percentage: c.result.Percentage,
			Animation:  c.result.Animation,
			Fill:       c.spec,
		}
	}

	_, track := e.windowColors()
	popts := []preview.Option{
		preview.WithWidth(opts.Width),
		preview.WithPhase(opts.Phase),
		preview.WithTrack(track),
	}
	if opts.TrueColor {
		popts = append(popts, preview.WithProfile(termenv.TrueColor))
	}
	if err := preview.New(w, popts...).Write(rows); err != nil {
		return NewCategorizedError(err, ErrorCategoryRender, SeverityError)
	}
	return nil
}

// windowColors resolves the card background and track colors.
func (e *Engine) windowColors() (background, track colors.Value) {
	e.mu.RLock()
	win, resolver := e.cfg.Window, e.resolver
	e.mu.RUnlock()

	background, _ = colors.Resolve(resolver, win.Background)
	track, _ = colors.Resolve(resolver, win.TrackColor)
	return background, track
}
