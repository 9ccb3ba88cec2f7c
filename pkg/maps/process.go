package maps

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Segmentation errors
var (
	ErrEmptyBitmap    = errors.New("bitmap has no pixels")
	ErrBitmapTooLarge = errors.New("bitmap too large")
)

// dirs are the 4 orthogonal neighbour offsets (up, down, left, right).
var dirs = [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// Segment scans the bitmap once in row-major order and flood-fills every
// unvisited opaque pixel into a province. Transparent pixels are skipped.
//
// A neighbour joins the region when its colour is within opts.Tolerance of
// the pixel it was reached from, so two adjacent like-coloured pixels always
// end up in the same province.
func Segment(img image.Image, opts Options) (*Segmentation, error) {
	if img == nil {
		return nil, ErrEmptyBitmap
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyBitmap, w, h)
	}
	if int64(w)*int64(h) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBitmapTooLarge, w, h)
	}

	src := toNRGBA(img)
	threshold := opts.OpacityThreshold
	if threshold == 0 {
		threshold = 1
	}

	s := &segmenter{
		src:       src,
		w:         w,
		h:         h,
		tolerance: opts.Tolerance,
		threshold: threshold,
		lookup:    newLookup(w, h),
		queue:     make([]int32, w*h),
		seqs:      make(map[uint32]int),
	}

	provinces := make([]*Province, 0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if s.lookup.ids[i] != NoProvince || !s.opaque(i) {
				continue
			}

			seed := s.at(i)
			key := rgbKey(seed)
			s.seqs[key]++

			p := &Province{
				ID:      NewProvinceID(seed, s.seqs[key]),
				Index:   len(provinces),
				Color:   color.NRGBA{R: seed.R, G: seed.G, B: seed.B, A: 255},
				IsWater: isWater(seed, opts.WaterRanges),
			}
			s.fill(p, i)
			provinces = append(provinces, p)
		}
	}

	return &Segmentation{Provinces: provinces, Lookup: s.lookup}, nil
}

// segmenter holds the scratch state of one Segment call.
type segmenter struct {
	src       *image.NRGBA
	w, h      int
	tolerance uint8
	threshold uint8
	lookup    *Lookup

	// queue is shared by every fill; each pixel is enqueued at most once
	// over the whole scan, so w*h entries always suffice.
	queue []int32
	seqs  map[uint32]int
}

func (s *segmenter) at(i int) color.NRGBA {
	o := i * 4
	p := s.src.Pix[o : o+4 : o+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

func (s *segmenter) opaque(i int) bool {
	return s.src.Pix[i*4+3] >= s.threshold
}

// fill grows p from the seed pixel, claiming lookup entries as it goes.
func (s *segmenter) fill(p *Province, seed int) {
	head, tail := 0, 0
	s.queue[tail] = int32(seed)
	tail++
	s.lookup.ids[seed] = p.ID

	minX, minY := s.w, s.h
	maxX, maxY := -1, -1

	for head < tail {
		i := int(s.queue[head])
		head++

		x, y := i%s.w, i/s.w
		p.Pixels = append(p.Pixels, image.Pt(x, y))
		minX, minY = min(minX, x), min(minY, y)
		maxX, maxY = max(maxX, x), max(maxY, y)

		c := s.at(i)
		for _, d := range dirs {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= s.w || ny < 0 || ny >= s.h {
				continue
			}
			n := ny*s.w + nx
			if s.lookup.ids[n] != NoProvince || !s.opaque(n) {
				continue
			}
			if !sameColor(c, s.at(n), s.tolerance) {
				continue
			}
			s.lookup.ids[n] = p.ID
			s.queue[tail] = int32(n)
			tail++
		}
	}

	p.Bounds = image.Rect(minX, minY, maxX+1, maxY+1)
}

func isWater(c color.NRGBA, ranges []ColorRange) bool {
	for _, r := range ranges {
		if r.Contains(c) {
			return true
		}
	}
	return false
}

// toNRGBA returns img as a zero-origin NRGBA, converting only when needed.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
