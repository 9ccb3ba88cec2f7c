package viewer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// Colors used in the UI
var (
	ColorBackground     = color.RGBA{20, 20, 30, 255}
	ColorPanel          = color.RGBA{30, 35, 50, 255}
	ColorPanelLight     = color.RGBA{45, 50, 70, 255}
	ColorPrimary        = color.RGBA{70, 130, 180, 255}
	ColorPrimaryHover   = color.RGBA{100, 160, 210, 255}
	ColorSecondary      = color.RGBA{60, 60, 80, 255}
	ColorSecondaryHover = color.RGBA{80, 80, 100, 255}
	ColorSuccess        = color.RGBA{50, 150, 80, 255}
	ColorDanger         = color.RGBA{180, 60, 60, 255}
	ColorText           = color.RGBA{220, 220, 230, 255}
	ColorTextMuted      = color.RGBA{140, 140, 160, 255}
	ColorBorder         = color.RGBA{60, 65, 80, 255}
	ColorReach          = color.RGBA{250, 220, 90, 255}
	ColorSelected       = color.RGBA{255, 255, 255, 255}
)

var face = text.NewGoXFace(basicfont.Face7x13)

const lineHeight = 16

// Button represents a clickable button.
type Button struct {
	X, Y, W, H int
	Text       string
	OnClick    func()
	Disabled   bool
	Primary    bool
	hovered    bool
}

// Contains reports whether a screen point is inside the button.
func (b *Button) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.W && y >= b.Y && y < b.Y+b.H
}

// Update handles button input. It reports whether the button was clicked
// so the caller can stop the click reaching the map.
func (b *Button) Update() bool {
	if b.Disabled {
		b.hovered = false
		return false
	}

	b.hovered = b.Contains(ebiten.CursorPosition())
	if b.hovered && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if b.OnClick != nil {
			b.OnClick()
		}
		return true
	}
	return false
}

// Draw renders the button.
func (b *Button) Draw(screen *ebiten.Image) {
	bg := ColorSecondary
	switch {
	case b.Disabled:
	case b.Primary && b.hovered:
		bg = ColorPrimaryHover
	case b.Primary:
		bg = ColorPrimary
	case b.hovered:
		bg = ColorSecondaryHover
	}

	vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), bg, false)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 1, ColorBorder, false)

	textColor := ColorText
	if b.Disabled {
		textColor = ColorTextMuted
	}
	DrawTextCentered(screen, b.Text, b.X+b.W/2, b.Y+b.H/2-lineHeight/2, textColor)
}

// DrawPanel draws a panel background.
func DrawPanel(screen *ebiten.Image, x, y, w, h int) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), ColorPanel, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, ColorBorder, false)
}

// DrawText draws text with its top-left corner at a position.
func DrawText(screen *ebiten.Image, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = lineHeight
	text.Draw(screen, s, face, op)
}

// DrawTextCentered draws text centered horizontally on x.
func DrawTextCentered(screen *ebiten.Image, s string, x, y int, clr color.Color) {
	w, _ := text.Measure(s, face, lineHeight)
	DrawText(screen, s, x-int(w)/2, y, clr)
}

// wrap breaks s into lines of at most width characters, on spaces where
// possible.
func wrap(s string, width int) []string {
	var lines []string
	for len(s) > width {
		cut := width
		for i := width; i > 0; i-- {
			if s[i] == ' ' {
				cut = i
				break
			}
		}
		lines = append(lines, s[:cut])
		s = s[cut:]
		if len(s) > 0 && s[0] == ' ' {
			s = s[1:]
		}
	}
	return append(lines, s)
}
