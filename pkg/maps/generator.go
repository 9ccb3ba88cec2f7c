package maps

import (
	"image"
	"image/color"
	"math/rand"
	"time"
)

// GeneratorOptions contains settings for synthetic bitmap generation.
type GeneratorOptions struct {
	Width       int   // Grid width in cells: 20-60
	Provinces   int   // Target province count: 24-120
	WaterBorder bool  // Whether to surround the land with water
	Islands     int   // Island spread: 1-5 (1=one landmass, 5=many islands)
	CellSize    int   // Pixels per grid cell: 1-16
	Margin      int   // Transparent margin around the map, in pixels
	Seed        int64 // Zero picks a time-based seed
}

// DefaultGeneratorOptions returns default generator options.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Width:       30,
		Provinces:   40,
		WaterBorder: true,
		Islands:     3,
		CellSize:    4,
	}
}

// GeneratedWater is the colour of water cells in generated bitmaps.
var GeneratedWater = color.NRGBA{R: 40, G: 200, B: 230, A: 255}

// Generator grows provinces from random seeds on a coarse grid and paints
// the result as a province bitmap.
type Generator struct {
	options GeneratorOptions
	rng     *rand.Rand
	width   int
	height  int
	grid    [][]int // 0 = water, 1+ = region ID
	regions map[int][][2]int
	maxID   int
}

// NewGenerator creates a new generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Generator{
		options: opts,
		rng:     rand.New(rand.NewSource(seed)),
		regions: make(map[int][][2]int),
	}

	// Height is 75% of width
	g.width = clamp(opts.Width, 20, 60)
	g.height = max(g.width*3/4, 15)
	return g
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Generate grows the regions and returns the painted bitmap.
func (g *Generator) Generate() *image.NRGBA {
	g.grid = make([][]int, g.height)
	for y := range g.grid {
		g.grid[y] = make([]int, g.width)
	}

	seeds := g.placeSeeds(g.regionCount())
	g.maxID = len(seeds)
	for i, seed := range seeds {
		id := i + 1
		target := 6 + g.rng.Intn(7)
		if cells := g.grow(id, seed[0], seed[1], target); len(cells) > 0 {
			g.regions[id] = cells
		}
	}

	g.fixDiagonalConnections()
	g.mergeTinyRegions(5)

	return g.paint()
}

// RegionColor is the colour generated for a region ID. Distinct IDs differ
// by at least 30 on some channel and never fall in the default water range.
func RegionColor(id int) color.NRGBA {
	return color.NRGBA{
		R: uint8(60 + (id%6)*30),
		G: uint8(30 + ((id/6)%5)*30),
		B: uint8(40 + ((id/30)%5)*40),
		A: 255,
	}
}

func (g *Generator) paint() *image.NRGBA {
	cell := clamp(g.options.CellSize, 1, 16)
	margin := max(g.options.Margin, 0)
	img := image.NewNRGBA(image.Rect(0, 0, g.width*cell+2*margin, g.height*cell+2*margin))

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := GeneratedWater
			if id := g.grid[y][x]; id > 0 {
				c = RegionColor(id)
			}
			for py := 0; py < cell; py++ {
				for px := 0; px < cell; px++ {
					img.SetNRGBA(margin+x*cell+px, margin+y*cell+py, c)
				}
			}
		}
	}
	return img
}

func (g *Generator) regionCount() int {
	requested := clamp(g.options.Provinces, 24, 120)

	total := g.width * g.height
	if g.options.WaterBorder {
		total -= 2*g.width + 2*(g.height-2)
	}

	// Roughly 5 cells per region keeps them playable.
	return min(requested, max(total/5, 6))
}

func (g *Generator) placeSeeds(count int) [][2]int {
	seeds := make([][2]int, 0, count)

	minX, maxX := 0, g.width-1
	minY, maxY := 0, g.height-1
	if g.options.WaterBorder {
		minX, maxX = 1, g.width-2
		minY, maxY = 1, g.height-2
	}

	// More islands means wider spacing, so more water between regions.
	// The count wins over spacing: spacing shrinks until all seeds fit.
	start := 3 + clamp(g.options.Islands, 1, 5) - 1
	for spacing := start; spacing >= 2; spacing-- {
		seeds = seeds[:0]
		for attempts := 0; len(seeds) < count && attempts < count*150; attempts++ {
			x := minX + g.rng.Intn(maxX-minX+1)
			y := minY + g.rng.Intn(maxY-minY+1)

			tooClose := false
			for _, s := range seeds {
				dx, dy := x-s[0], y-s[1]
				if dx*dx+dy*dy < spacing*spacing {
					tooClose = true
					break
				}
			}
			if !tooClose {
				seeds = append(seeds, [2]int{x, y})
			}
		}
		if len(seeds) >= count {
			break
		}
	}
	return seeds
}

func (g *Generator) grow(id, x, y, target int) [][2]int {
	if !g.isLandCell(x, y) || g.grid[y][x] != 0 {
		return nil
	}

	cells := [][2]int{{x, y}}
	g.grid[y][x] = id
	frontier := make([][2]int, 0)
	inFrontier := make(map[[2]int]bool)
	g.addFrontier(x, y, &frontier, inFrontier)

	for len(cells) < target && len(frontier) > 0 {
		i := g.rng.Intn(len(frontier))
		c := frontier[i]
		frontier[i] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		delete(inFrontier, c)

		if g.grid[c[1]][c[0]] != 0 {
			continue
		}
		g.grid[c[1]][c[0]] = id
		cells = append(cells, c)
		g.addFrontier(c[0], c[1], &frontier, inFrontier)
	}
	return cells
}

func (g *Generator) isLandCell(x, y int) bool {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return false
	}
	if g.options.WaterBorder && (x == 0 || x == g.width-1 || y == 0 || y == g.height-1) {
		return false
	}
	return true
}

func (g *Generator) addFrontier(x, y int, frontier *[][2]int, inFrontier map[[2]int]bool) {
	for _, d := range dirs {
		nx, ny := x+d[0], y+d[1]
		c := [2]int{nx, ny}
		if g.isLandCell(nx, ny) && g.grid[ny][nx] == 0 && !inFrontier[c] {
			*frontier = append(*frontier, c)
			inFrontier[c] = true
		}
	}
}

// fixDiagonalConnections keeps the largest orthogonally connected part of
// each region and hands the rest to a neighbour, or to water.
func (g *Generator) fixDiagonalConnections() {
	for id := 1; id <= g.maxID; id++ {
		cells, ok := g.regions[id]
		if !ok {
			continue
		}
		parts := g.components(cells)
		if len(parts) <= 1 {
			continue
		}

		largest := 0
		for i, part := range parts {
			if len(part) > len(parts[largest]) {
				largest = i
			}
		}
		g.regions[id] = parts[largest]

		for i, part := range parts {
			if i == largest {
				continue
			}
			for _, c := range part {
				if n := g.neighborRegion(c[0], c[1], id); n > 0 {
					g.grid[c[1]][c[0]] = n
					g.regions[n] = append(g.regions[n], c)
				} else {
					g.grid[c[1]][c[0]] = 0
				}
			}
		}
	}
}

func (g *Generator) components(cells [][2]int) [][][2]int {
	set := make(map[[2]int]bool, len(cells))
	for _, c := range cells {
		set[c] = true
	}
	visited := make(map[[2]int]bool, len(cells))
	var parts [][][2]int

	for _, start := range cells {
		if visited[start] {
			continue
		}
		part := make([][2]int, 0)
		queue := [][2]int{start}
		visited[start] = true
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			part = append(part, c)
			for _, d := range dirs {
				n := [2]int{c[0] + d[0], c[1] + d[1]}
				if set[n] && !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		parts = append(parts, part)
	}
	return parts
}

// neighborRegion returns the region sharing most edges with (x, y), or 0.
func (g *Generator) neighborRegion(x, y, exclude int) int {
	counts := make(map[int]int)
	for _, d := range dirs {
		nx, ny := x+d[0], y+d[1]
		if nx >= 0 && nx < g.width && ny >= 0 && ny < g.height {
			if id := g.grid[ny][nx]; id > 0 && id != exclude {
				counts[id]++
			}
		}
	}
	return majority(counts)
}

// majority returns the key with the highest count, smallest key on ties.
func majority(counts map[int]int) int {
	best, bestCount := 0, 0
	for id, n := range counts {
		if n > bestCount || (n == bestCount && id < best) {
			best, bestCount = id, n
		}
	}
	return best
}

// mergeTinyRegions folds regions smaller than minSize into the neighbour
// they share most edges with, or into water if they have none.
func (g *Generator) mergeTinyRegions(minSize int) {
	for changed := true; changed; {
		changed = false
		for id := 1; id <= g.maxID; id++ {
			cells, ok := g.regions[id]
			if !ok || len(cells) >= minSize {
				continue
			}

			counts := make(map[int]int)
			for _, c := range cells {
				for _, d := range dirs {
					nx, ny := c[0]+d[0], c[1]+d[1]
					if nx >= 0 && nx < g.width && ny >= 0 && ny < g.height {
						if n := g.grid[ny][nx]; n != 0 && n != id {
							counts[n]++
						}
					}
				}
			}

			target := majority(counts)
			for _, c := range cells {
				g.grid[c[1]][c[0]] = target
				if target > 0 {
					g.regions[target] = append(g.regions[target], c)
				}
			}
			delete(g.regions, id)
			changed = true
		}
	}
}
