package maps

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(x0, y0, x1, y1 int) []image.Point {
	var pts []image.Point
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			pts = append(pts, image.Pt(x, y))
		}
	}
	return pts
}

func TestTracePolygon_Degenerate(t *testing.T) {
	assert.Nil(t, TracePolygon(nil, DefaultTraceOptions()))

	one := []image.Point{image.Pt(4, 7)}
	assert.Equal(t, one, TracePolygon(one, DefaultTraceOptions()))
}

func TestTracePolygon_Square(t *testing.T) {
	got := TracePolygon(rect(0, 0, 2, 2), DefaultTraceOptions())
	want := []image.Point{image.Pt(0, 0), image.Pt(1, 0), image.Pt(1, 1), image.Pt(0, 1)}
	assert.Equal(t, want, got, "clockwise from the top-left pixel")
}

func TestTracePolygon_StartsAtSmallestPixel(t *testing.T) {
	// Pixel order in the input must not matter.
	pts := rect(3, 2, 6, 5)
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
	got := TracePolygon(pts, DefaultTraceOptions())
	require.NotEmpty(t, got)
	assert.Equal(t, image.Pt(3, 2), got[0])
	assert.Len(t, got, 8, "a 3x3 block has 8 perimeter pixels")
	assert.NotContains(t, got, image.Pt(4, 3))
}

func TestTracePolygon_ThinLineTerminates(t *testing.T) {
	got := TracePolygon(rect(0, 0, 3, 1), DefaultTraceOptions())
	assert.Equal(t, []image.Point{image.Pt(0, 0), image.Pt(1, 0), image.Pt(2, 0), image.Pt(1, 0)}, got)
}

func TestTracePolygon_LShapeCutsInnerCorner(t *testing.T) {
	pts := []image.Point{image.Pt(0, 0), image.Pt(0, 1), image.Pt(0, 2), image.Pt(1, 2)}
	got := TracePolygon(pts, DefaultTraceOptions())
	want := []image.Point{image.Pt(0, 0), image.Pt(0, 1), image.Pt(1, 2), image.Pt(0, 2), image.Pt(0, 1)}
	assert.Equal(t, want, got, "the walk steps diagonally from (0,1) to (1,2)")
}

func TestTracePolygon_DiagonalRegion(t *testing.T) {
	pts := []image.Point{image.Pt(0, 0), image.Pt(1, 1), image.Pt(2, 2)}
	got := TracePolygon(pts, DefaultTraceOptions())
	assert.Subset(t, pts, got)
	assert.Equal(t, image.Pt(0, 0), got[0])
}

func TestTracePolygon_OutputIsBounded(t *testing.T) {
	pts := rect(0, 0, 60, 60)
	got := TracePolygon(pts, TraceOptions{MaxPoints: 50, StepFactor: 4})
	assert.Len(t, got, 48)
	assert.Equal(t, image.Pt(0, 0), got[0])

	full := TracePolygon(pts, TraceOptions{StepFactor: 4})
	assert.Len(t, full, 4*59)
}

func TestTracePolygon_StepBoundReturnsPartial(t *testing.T) {
	// Walking out and back along a 30-pixel line takes 58 steps; the bound is 38.
	got := TracePolygon(rect(0, 0, 30, 1), TraceOptions{StepFactor: 1})
	assert.Len(t, got, 39)
	assert.Equal(t, image.Pt(0, 0), got[0])
	assert.Equal(t, image.Pt(20, 0), got[len(got)-1])
}

func TestTracePolygon_GeneratedProvincesStayOnBoundary(t *testing.T) {
	w := generatedWorld(t, 13)
	for _, p := range w.Provinces {
		outline := w.Outline(p.ID, DefaultTraceOptions())
		require.NotEmpty(t, outline, p.ID.String())
		for _, px := range outline {
			require.Equal(t, p.ID, w.Lookup.At(px.X, px.Y))
			boundary := false
			for _, d := range dirs {
				if w.Lookup.At(px.X+d[0], px.Y+d[1]) != p.ID {
					boundary = true
				}
			}
			assert.True(t, boundary, "%v is interior to %s", px, p.ID)
		}
	}
	assert.Nil(t, w.Outline(NoProvince, DefaultTraceOptions()))
}
