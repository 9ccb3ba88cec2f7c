package maps

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

// Test palette. '.' is transparent.
var (
	red    = color.NRGBA{R: 255, A: 255}
	green  = color.NRGBA{G: 255, A: 255}
	blue   = color.NRGBA{B: 255, A: 255}
	yellow = color.NRGBA{R: 255, G: 255, A: 255}
	black  = color.NRGBA{A: 255}
	water  = color.NRGBA{R: 40, G: 200, B: 230, A: 255}

	legend = map[byte]color.NRGBA{
		'R': red,
		'r': {R: 253, G: 2, B: 1, A: 255}, // within tolerance of red
		'o': {R: 240, G: 0, B: 0, A: 255}, // outside tolerance of red
		'G': green,
		'B': blue,
		'Y': yellow,
		'K': black,
		'W': water,
	}
)

// bitmap builds an image from rows of legend characters.
func bitmap(rows ...string) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			if c, ok := legend[row[x]]; ok {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}

func idOf(c color.NRGBA) ProvinceID {
	return NewProvinceID(c, 1)
}

func mustWorld(t *testing.T, img image.Image) *World {
	t.Helper()
	w, err := NewWorld("test", "Test", img, DefaultOptions())
	require.NoError(t, err)
	return w
}

func generatedWorld(t *testing.T, seed int64) *World {
	t.Helper()
	opts := DefaultGeneratorOptions()
	opts.Seed = seed
	opts.Margin = 3
	return mustWorld(t, NewGenerator(opts).Generate())
}
