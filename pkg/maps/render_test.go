package maps

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_OwnershipAndBorders(t *testing.T) {
	w := mustWorld(t, bitmap(
		"RRRGGGWW.",
		"RRRGGGWW.",
		"RRRGGGWW.",
	))
	r, g := idOf(red), idOf(green)
	owners := Ownership{r: "crimson", g: "crimson"}

	pal := DefaultPalette()
	crimson := color.NRGBA{R: 200, G: 40, B: 40, A: 255}
	pal.Countries["crimson"] = crimson

	img := Render(w, owners.Owner, w.Borders(owners.Owner), pal)

	assert.Equal(t, crimson, img.NRGBAAt(1, 1), "interior takes the owner colour")
	assert.Equal(t, pal.InternalBorder, img.NRGBAAt(2, 1), "same-owner border")
	assert.Equal(t, pal.ExternalBorder, img.NRGBAAt(5, 1), "border with water")
	assert.Equal(t, pal.ExternalBorder, img.NRGBAAt(0, 0), "grid edge")
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(8, 1), "void stays transparent")

	plain := Render(w, nil, nil, pal)
	assert.Equal(t, pal.Unowned, plain.NRGBAAt(1, 1))
	assert.Equal(t, pal.Water, plain.NRGBAAt(6, 1))
}

func TestParseHexColor(t *testing.T) {
	c, ok := ParseHexColor("#c82828")
	assert.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 200, G: 40, B: 40, A: 255}, c)

	_, ok = ParseHexColor("c8282")
	assert.False(t, ok)
	_, ok = ParseHexColor("zzzzzz")
	assert.False(t, ok)
}
