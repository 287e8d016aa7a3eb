package overlay

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mcdev12/splittimer/go/internal/splittimer"
)

const (
	marginX     = 2
	primaryRow  = 1
	yoursRow    = 3
	fastestRow  = 4
	flashGlyph  = '▀'
	dimAlphaCut = 0.5
)

// Renderer draws a splittimer.View onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render clears the screen and draws the flash bar and, when the overlay is
// shown, the timer labels.
func (r *Renderer) Render(v splittimer.View) {
	r.screen.Clear()
	width, height := r.screen.Size()

	if v.FlashAlpha > 0 {
		style := tcell.StyleDefault.Foreground(flashColor(v.FlashColor, v.FlashAlpha))
		drawFill(r.screen, 0, 0, width, flashGlyph, style)
		if height > 1 {
			drawFill(r.screen, 0, height-1, width, flashGlyph, style)
		}
	}

	if v.OverlayShown() {
		base := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		if v.OverlayAlpha < dimAlphaCut {
			base = base.Dim(true)
		}
		if v.PrimaryVisible {
			drawText(r.screen, marginX, primaryRow, width-marginX, v.PrimaryText, base.Bold(true))
		}
		if v.CheckpointVisible {
			drawText(r.screen, marginX, yoursRow, width-marginX, v.CheckpointText, base)
		}
		if v.ComparisonVisible {
			drawText(r.screen, marginX, fastestRow, width-marginX, v.ComparisonText, base.Foreground(tcell.ColorSilver))
		}
	}

	r.screen.Show()
}

// flashColor scales the verdict color toward black by alpha.
func flashColor(c splittimer.Color, alpha float64) tcell.Color {
	var red, green, blue int32
	switch c {
	case splittimer.ColorRed:
		red = 255
	case splittimer.ColorGreen:
		green = 255
	default:
		red, green, blue = 255, 255, 255
	}
	if alpha > 1 {
		alpha = 1
	}
	scale := func(ch int32) int32 { return int32(float64(ch) * alpha) }
	return tcell.NewRGBColor(scale(red), scale(green), scale(blue))
}

func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	if width <= 0 {
		return
	}
	i := 0
	for _, ch := range text {
		if i >= width {
			return
		}
		screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

func drawFill(screen tcell.Screen, x, y, width int, ch rune, style tcell.Style) {
	for i := 0; i < width; i++ {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}
