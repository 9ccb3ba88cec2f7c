package maps

import "image"

// TraceOptions bounds the work and output of TracePolygon.
type TraceOptions struct {
	// MaxPoints caps the outline length; longer outlines are sampled at a
	// uniform stride. Zero means no cap.
	MaxPoints int
	// StepFactor bounds the walk to StepFactor*len(pixels)+8 steps.
	StepFactor int
}

// DefaultTraceOptions returns the limits used for rendering outlines.
func DefaultTraceOptions() TraceOptions {
	return TraceOptions{MaxPoints: 500, StepFactor: 4}
}

// Moore neighbourhood in clockwise order on a y-down grid:
// E, SE, S, SW, W, NW, N, NE.
var (
	mooreDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	mooreDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

const dirWest = 4

// TracePolygon walks the outer boundary of a pixel region with Moore
// neighbour tracing and returns the boundary pixels in clockwise order.
// Consecutive points are 8-connected: the walk steps diagonally across
// inner corners and may revisit a pixel on the way back along a thin arm.
//
// The walk starts at the smallest pixel (lowest x, then lowest y) and stops
// when a (pixel, entry direction) state repeats. It never runs longer than
// the step bound; if the bound is hit the partial outline is returned.
func TracePolygon(pixels []image.Point, opts TraceOptions) []image.Point {
	switch len(pixels) {
	case 0:
		return nil
	case 1:
		return []image.Point{pixels[0]}
	}

	// Local mask over the region's bounding box.
	start := pixels[0]
	bounds := image.Rectangle{Min: pixels[0], Max: pixels[0].Add(image.Pt(1, 1))}
	for _, p := range pixels[1:] {
		if p.X < start.X || (p.X == start.X && p.Y < start.Y) {
			start = p
		}
		bounds = bounds.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	w, h := bounds.Dx(), bounds.Dy()
	mask := make([]bool, w*h)
	for _, p := range pixels {
		mask[(p.Y-bounds.Min.Y)*w+(p.X-bounds.Min.X)] = true
	}
	inside := func(x, y int) bool {
		lx, ly := x-bounds.Min.X, y-bounds.Min.Y
		if lx < 0 || lx >= w || ly < 0 || ly >= h {
			return false
		}
		return mask[ly*w+lx]
	}

	factor := opts.StepFactor
	if factor <= 0 {
		factor = 4
	}
	maxSteps := factor*len(pixels) + 8

	// The start pixel is leftmost, so its west neighbour is outside.
	cx, cy := start.X, start.Y
	back := dirWest
	state := func(x, y, dir int) int {
		return ((y-bounds.Min.Y)*w+(x-bounds.Min.X))*8 + dir
	}
	seen := map[int]struct{}{state(cx, cy, back): {}}
	outline := []image.Point{start}

	for steps := 0; steps < maxSteps; steps++ {
		next, nextBack, ok := mooreStep(cx, cy, back, inside)
		if !ok {
			// Isolated pixel; nothing to walk.
			break
		}
		cx, cy, back = next.X, next.Y, nextBack

		key := state(cx, cy, back)
		if _, done := seen[key]; done {
			break
		}
		seen[key] = struct{}{}
		outline = append(outline, next)
	}

	if n := len(outline); n > 1 && outline[n-1] == outline[0] {
		outline = outline[:n-1]
	}
	return samplePoints(outline, opts.MaxPoints)
}

// mooreStep scans clockwise around (cx, cy) starting just after the
// backtrack direction and returns the first region pixel found, together
// with the direction from that pixel back to the last outside pixel examined.
func mooreStep(cx, cy, back int, inside func(x, y int) bool) (image.Point, int, bool) {
	bx, by := cx+mooreDX[back], cy+mooreDY[back]
	for k := 1; k <= 8; k++ {
		i := (back + k) % 8
		tx, ty := cx+mooreDX[i], cy+mooreDY[i]
		if inside(tx, ty) {
			return image.Pt(tx, ty), mooreDir(bx-tx, by-ty), true
		}
		bx, by = tx, ty
	}
	return image.Point{}, 0, false
}

// mooreDir maps a unit offset to its index in the Moore neighbourhood.
func mooreDir(dx, dy int) int {
	for i := 0; i < 8; i++ {
		if mooreDX[i] == dx && mooreDY[i] == dy {
			return i
		}
	}
	return dirWest
}

// samplePoints keeps every stride-th point so at most limit points remain.
func samplePoints(pts []image.Point, limit int) []image.Point {
	if limit <= 0 || len(pts) <= limit {
		return pts
	}
	stride := (len(pts) + limit - 1) / limit
	out := make([]image.Point, 0, limit)
	for i := 0; i < len(pts); i += stride {
		out = append(out, pts[i])
	}
	return out
}
