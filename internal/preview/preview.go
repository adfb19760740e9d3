// Package preview draws bar cards in the terminal. Each bar is a row of
// colored cells whose backgrounds follow the same column sampling as the
// window preview, followed by a label with the percentage and the active
// animation.
package preview

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/opd-ai/go-barcard/internal/colors"
	"github.com/opd-ai/go-barcard/internal/fill"
)

// DefaultWidth is the number of cells per bar.
const DefaultWidth = 40

// Row is one bar to preview.
type Row struct {
	Name       string
	Percentage float64
	// Animation is the resolved animation id; "" or "none" hides it.
	Animation string
	Fill      fill.Spec
}

// Preview renders rows with a lipgloss renderer bound to one output.
type Preview struct {
	renderer  *lipgloss.Renderer
	out       io.Writer
	width     int
	nameWidth int
	track     colors.Value
	phase     float64
}

// Option configures a Preview.
type Option func(*Preview)

// WithWidth sets the number of cells per bar.
func WithWidth(n int) Option {
	return func(p *Preview) {
		if n > 0 {
			p.width = n
		}
	}
}

// WithTrack sets the color of unfilled cells.
func WithTrack(c colors.Value) Option {
	return func(p *Preview) {
		p.track = c
	}
}

// WithProfile forces a color profile instead of detecting one from the
// output.
func WithProfile(profile termenv.Profile) Option {
	return func(p *Preview) {
		p.renderer.SetColorProfile(profile)
	}
}

// WithPhase sets the pattern animation phase.
func WithPhase(phase float64) Option {
	return func(p *Preview) {
		p.phase = phase
	}
}

// New creates a Preview writing to w.
func New(w io.Writer, opts ...Option) *Preview {
	p := &Preview{
		renderer: lipgloss.NewRenderer(w),
		out:      w,
		width:    DefaultWidth,
		track:    colors.RGB(46, 46, 46),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Bar renders the cells of one bar.
func (p *Preview) Bar(spec fill.Spec) string {
	cells := spec.Columns(p.width, p.phase)

	var b strings.Builder
	run, runColor := 0, ""
	flush := func() {
		if run == 0 {
			return
		}
		style := p.renderer.NewStyle().Background(lipgloss.Color(runColor))
		b.WriteString(style.Render(strings.Repeat(" ", run)))
		run = 0
	}
	for _, c := range cells {
		hex := Hex(p.track)
		if c.Filled {
			hex = Hex(over(p.track, c.Color))
		}
		if hex != runColor {
			flush()
			runColor = hex
		}
		run++
	}
	flush()
	return b.String()
}

// Label renders the text shown after a bar.
func (p *Preview) Label(r Row) string {
	pct := r.Percentage
	if math.IsNaN(pct) {
		pct = 0
	}
	label := fmt.Sprintf("%5.1f%%", pct)
	if r.Animation != "" && r.Animation != "none" {
		label += " " + p.renderer.NewStyle().Italic(true).Render("["+r.Animation+"]")
	}
	return label
}

// Row renders a name, bar and label on one line.
func (p *Preview) Row(r Row) string {
	name := p.renderer.NewStyle().Bold(true).Width(p.nameWidth).Render(r.Name)
	return lipgloss.JoinHorizontal(lipgloss.Top, name, " ", p.Bar(r.Fill), " ", p.Label(r))
}

// Render renders all rows, one per line, with names aligned.
func (p *Preview) Render(rows []Row) string {
	p.nameWidth = 0
	for _, r := range rows {
		if w := lipgloss.Width(r.Name); w > p.nameWidth {
			p.nameWidth = w
		}
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = p.Row(r)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Write renders rows to the preview's output followed by a newline.
func (p *Preview) Write(rows []Row) error {
	if _, err := io.WriteString(p.out, p.Render(rows)+"\n"); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}

// Hex formats an opaque color as #rrggbb.
func Hex(c colors.Value) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// over composites c onto an opaque base.
func over(base, c colors.Value) colors.Value {
	if c.A >= 1 {
		return c
	}
	out := colors.Lerp(base, c, c.A)
	out.A = 1
	return out
}
