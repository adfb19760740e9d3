package render

import (
	"bytes"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// defaultFontSize is the default label size in points.
const defaultFontSize = 12.0

// TextRenderer draws bar labels using Ebiten's text package.
type TextRenderer struct {
	fontSource *text.GoTextFaceSource
	fontSize   float64
	mu         sync.RWMutex
}

// NewTextRenderer creates a TextRenderer with the embedded Go font.
func NewTextRenderer() *TextRenderer {
	fontSource, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		// This should never fail with the embedded font
		panic("failed to load embedded font: " + err.Error())
	}

	return &TextRenderer{
		fontSource: fontSource,
		fontSize:   defaultFontSize,
	}
}

// SetFontSize sets the font size for text rendering.
func (tr *TextRenderer) SetFontSize(size float64) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.fontSize = size
}

func (tr *TextRenderer) face() *text.GoTextFace {
	return &text.GoTextFace{Source: tr.fontSource, Size: tr.fontSize}
}

// DrawText renders text with its top-left corner at x, y.
func (tr *TextRenderer) DrawText(screen *ebiten.Image, s string, x, y float64, clr color.Color) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, tr.face(), op)
}

// MeasureText returns the width and height of s.
func (tr *TextRenderer) MeasureText(s string) (width, height float64) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return text.Measure(s, tr.face(), tr.fontSize*1.2)
}

// LineHeight returns the height of a single line of text.
func (tr *TextRenderer) LineHeight() float64 {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.fontSize * 1.2
}
