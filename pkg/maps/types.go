// Package maps turns a colour-coded province bitmap into provinces, a
// pixel lookup, border classifications and a province adjacency graph.
package maps

import (
	"image"
	"image/color"
)

// ProvinceID identifies a province by its representative colour.
// The packed form is seq<<24 | r<<16 | g<<8 | b, where seq is 1 for the
// first region of a colour in scan order and grows for each further
// disjoint region of the same colour. seq has 40 bits, more than a bitmap
// can have pixels. Zero means "no province".
type ProvinceID uint64

// NoProvince is stored in the lookup for transparent pixels.
const NoProvince ProvinceID = 0

// CountryID identifies a country that can own provinces.
type CountryID string

// RGB is an opaque colour triple.
type RGB struct {
	R, G, B uint8
}

// ColorRange is an inclusive per-channel colour range.
type ColorRange struct {
	Min RGB
	Max RGB
}

// Contains reports whether c falls inside the range on every channel.
func (r ColorRange) Contains(c color.NRGBA) bool {
	return c.R >= r.Min.R && c.R <= r.Max.R &&
		c.G >= r.Min.G && c.G <= r.Max.G &&
		c.B >= r.Min.B && c.B <= r.Max.B
}

// Options controls segmentation.
type Options struct {
	// Tolerance is the largest per-channel difference between two
	// neighbouring pixels that still counts as the same colour.
	Tolerance uint8
	// OpacityThreshold is the smallest alpha treated as opaque.
	// Zero is treated as 1, so fully transparent pixels are always void.
	OpacityThreshold uint8
	// WaterRanges marks provinces whose seed colour falls in any range.
	WaterRanges []ColorRange
}

// DefaultWaterRange is the cyan band used by the stock world bitmaps.
var DefaultWaterRange = ColorRange{
	Min: RGB{0, 180, 200},
	Max: RGB{100, 255, 255},
}

// DefaultOptions returns the stock segmentation settings.
func DefaultOptions() Options {
	return Options{
		Tolerance:        3,
		OpacityThreshold: 255,
		WaterRanges:      []ColorRange{DefaultWaterRange},
	}
}

// Province is a maximal 4-connected region of like-coloured opaque pixels.
// Provinces are immutable once segmentation returns; ownership is kept by
// the game layer and passed in through an OwnerFunc.
type Province struct {
	ID      ProvinceID
	Index   int // position in scan order
	Color   color.NRGBA
	Pixels  []image.Point
	Bounds  image.Rectangle
	IsWater bool
}

// PixelCount returns the number of pixels in the province.
func (p *Province) PixelCount() int {
	return len(p.Pixels)
}

// Lookup maps every pixel of the bitmap to the province containing it.
type Lookup struct {
	Width  int
	Height int
	ids    []ProvinceID
}

func newLookup(w, h int) *Lookup {
	return &Lookup{Width: w, Height: h, ids: make([]ProvinceID, w*h)}
}

// At returns the province at the given coordinates.
// Returns NoProvince for transparent pixels or out of bounds.
func (l *Lookup) At(x, y int) ProvinceID {
	if x < 0 || x >= l.Width || y < 0 || y >= l.Height {
		return NoProvince
	}
	return l.ids[y*l.Width+x]
}

// Segmentation is the output of Segment.
type Segmentation struct {
	Provinces []*Province
	Lookup    *Lookup
}

// OwnerFunc reports the owner of a province; false means unowned.
type OwnerFunc func(ProvinceID) (CountryID, bool)

// Ownership is a province to country assignment.
type Ownership map[ProvinceID]CountryID

// Owner implements OwnerFunc.
func (o Ownership) Owner(id ProvinceID) (CountryID, bool) {
	c, ok := o[id]
	if !ok || c == "" {
		return "", false
	}
	return c, true
}

// Clone returns an independent copy.
func (o Ownership) Clone() Ownership {
	out := make(Ownership, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Unowned is an OwnerFunc for maps with no political layer.
func Unowned(ProvinceID) (CountryID, bool) {
	return "", false
}
