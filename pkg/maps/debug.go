package maps

import (
	"fmt"
	"strings"
)

// Debug returns a text report of the world: summary, a coarse province
// grid, and per-province details.
func (w *World) Debug() string {
	var sb strings.Builder

	water := 0
	for _, p := range w.Provinces {
		if p.IsWater {
			water++
		}
	}

	sb.WriteString(fmt.Sprintf("Map: %s (%s)\n", w.Name, w.ID))
	sb.WriteString(fmt.Sprintf("Size: %dx%d\n", w.Width, w.Height))
	sb.WriteString(fmt.Sprintf("Provinces: %d (%d water)\n", len(w.Provinces), water))
	sb.WriteString(fmt.Sprintf("Borders: %d\n\n", w.Graph.EdgeCount()))

	// Grid of province indexes; large maps are sampled so each row fits a terminal.
	step := 1
	for w.Width/step > 80 {
		step++
	}
	sb.WriteString("Province Grid:\n")
	for y := 0; y < w.Height; y += step {
		for x := 0; x < w.Width; x += step {
			p := w.ProvinceAt(x, y)
			switch {
			case p == nil:
				sb.WriteString("  .")
			case p.IsWater:
				sb.WriteString("  ~")
			default:
				sb.WriteString(fmt.Sprintf("%3d", p.Index%1000))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nProvinces:\n")
	for _, p := range w.Provinces {
		kind := "land"
		if p.IsWater {
			kind = "water"
		}
		sb.WriteString(fmt.Sprintf("  %d. %s (%s)\n", p.Index, p.ID, kind))
		sb.WriteString(fmt.Sprintf("     Pixels: %d\n", len(p.Pixels)))
		sb.WriteString(fmt.Sprintf("     Bounds: %v\n", p.Bounds))
		sb.WriteString(fmt.Sprintf("     Adjacent: %v\n", w.Graph.Neighbors(p.ID)))
	}

	return sb.String()
}

// AdjacencyMatrix prints which provinces border each other, by index.
func (w *World) AdjacencyMatrix() string {
	var sb strings.Builder

	n := len(w.Provinces)
	sb.WriteString("Adjacency Matrix:\n    ")
	for i := 0; i < n; i++ {
		sb.WriteString(fmt.Sprintf("%3d", i))
	}
	sb.WriteString("\n")

	for i, a := range w.Provinces {
		sb.WriteString(fmt.Sprintf("%3d:", i))
		for j, b := range w.Provinces {
			switch {
			case i == j:
				sb.WriteString("  -")
			case w.Graph.HasEdge(a.ID, b.ID):
				sb.WriteString("  X")
			default:
				sb.WriteString("  .")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
