package maps

import (
	"encoding/hex"
	"image"
	"image/color"
	"strings"
)

// Palette controls how Render colours a political map.
type Palette struct {
	Countries      map[CountryID]color.NRGBA
	Unowned        color.NRGBA
	Water          color.NRGBA
	InternalBorder color.NRGBA
	ExternalBorder color.NRGBA
}

// DefaultPalette returns the stock colours. Country colours are added by
// the caller.
func DefaultPalette() Palette {
	return Palette{
		Countries:      make(map[CountryID]color.NRGBA),
		Unowned:        color.NRGBA{R: 205, G: 195, B: 170, A: 255},
		Water:          color.NRGBA{R: 70, G: 130, B: 180, A: 255},
		InternalBorder: color.NRGBA{R: 160, G: 160, B: 160, A: 255},
		ExternalBorder: color.NRGBA{R: 20, G: 20, B: 20, A: 255},
	}
}

// Render paints each province in its owner's colour and overlays the
// border classification. Void pixels stay transparent.
func Render(w *World, ownerOf OwnerFunc, borders map[ProvinceID]*BorderSet, pal Palette) *image.NRGBA {
	if ownerOf == nil {
		ownerOf = Unowned
	}
	img := image.NewNRGBA(image.Rect(0, 0, w.Width, w.Height))

	for _, p := range w.Provinces {
		fill := pal.Unowned
		switch owner, ok := ownerOf(p.ID); {
		case p.IsWater:
			fill = pal.Water
		case ok:
			if c, found := pal.Countries[owner]; found {
				fill = c
			}
		}
		for _, px := range p.Pixels {
			img.SetNRGBA(px.X, px.Y, fill)
		}
	}

	for _, set := range borders {
		for _, px := range set.Internal {
			img.SetNRGBA(px.X, px.Y, pal.InternalBorder)
		}
		for _, px := range set.External {
			img.SetNRGBA(px.X, px.Y, pal.ExternalBorder)
		}
	}

	return img
}

// ParseHexColor parses "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (color.NRGBA, bool) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || len(b) != 3 {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: 255}, true
}
