package maps

import (
	"fmt"
	"image"
)

// World is the immutable geography built from one bitmap: provinces, the
// pixel lookup and the adjacency graph. It is safe for concurrent reads and
// is shared by every session played on the same map.
type World struct {
	ID     string
	Name   string
	Width  int
	Height int

	Provinces []*Province
	Lookup    *Lookup
	Graph     *Graph

	byID map[ProvinceID]*Province
}

// NewWorld segments img and builds its adjacency graph. Any failure aborts
// construction; a partially built world is never returned.
func NewWorld(id, name string, img image.Image, opts Options) (*World, error) {
	seg, err := Segment(img, opts)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", id, err)
	}

	graph, err := BuildAdjacency(seg.Lookup, seg.Provinces)
	if err != nil {
		return nil, fmt.Errorf("adjacency %s: %w", id, err)
	}

	w := &World{
		ID:        id,
		Name:      name,
		Width:     seg.Lookup.Width,
		Height:    seg.Lookup.Height,
		Provinces: seg.Provinces,
		Lookup:    seg.Lookup,
		Graph:     graph,
		byID:      make(map[ProvinceID]*Province, len(seg.Provinces)),
	}
	for _, p := range seg.Provinces {
		w.byID[p.ID] = p
	}
	return w, nil
}

// Province returns a province by ID, or nil.
func (w *World) Province(id ProvinceID) *Province {
	return w.byID[id]
}

// ProvinceAt returns the province under the given pixel, or nil.
func (w *World) ProvinceAt(x, y int) *Province {
	return w.byID[w.Lookup.At(x, y)]
}

// ProvinceCount returns the number of provinces.
func (w *World) ProvinceCount() int {
	return len(w.Provinces)
}

// Distance is the bounded hop count between two provinces.
func (w *World) Distance(from, to ProvinceID, maxDepth int) int {
	return w.Graph.Distance(from, to, maxDepth)
}

// Borders classifies border pixels for the given ownership.
func (w *World) Borders(ownerOf OwnerFunc) map[ProvinceID]*BorderSet {
	return ClassifyBorders(w.Lookup, ownerOf)
}

// Groups returns the territory groups for the given ownership.
func (w *World) Groups(ownerOf OwnerFunc) []TerritoryGroup {
	return GroupTerritories(w.Provinces, w.Graph, ownerOf)
}

// Outline traces a province's boundary, or returns nil for unknown ids.
func (w *World) Outline(id ProvinceID, opts TraceOptions) []image.Point {
	p := w.byID[id]
	if p == nil {
		return nil
	}
	return TracePolygon(p.Pixels, opts)
}
