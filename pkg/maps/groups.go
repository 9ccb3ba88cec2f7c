package maps

import (
	"image"
	"sort"
)

// Centroid is a sub-pixel position.
type Centroid struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TerritoryGroup is a maximal set of bordering provinces with one owner.
type TerritoryGroup struct {
	Owner      CountryID       `json:"owner"`
	Provinces  []ProvinceID    `json:"provinces"` // scan order
	Bounds     image.Rectangle `json:"bounds"`
	Centroid   Centroid        `json:"centroid"` // weighted by pixel count
	PixelCount int             `json:"pixelCount"`
}

// GroupTerritories unions owned land provinces into contiguous blocks.
// Unowned and water provinces never form groups. Groups are returned in
// scan order of their first province, so the result is deterministic.
func GroupTerritories(provinces []*Province, graph *Graph, ownerOf OwnerFunc) []TerritoryGroup {
	if ownerOf == nil {
		return nil
	}

	byID := make(map[ProvinceID]*Province, len(provinces))
	for _, p := range provinces {
		byID[p.ID] = p
	}
	eligible := func(id ProvinceID) (CountryID, bool) {
		p := byID[id]
		if p == nil || p.IsWater {
			return "", false
		}
		return ownerOf(id)
	}

	assigned := make(map[ProvinceID]bool)
	groups := make([]TerritoryGroup, 0)

	for _, p := range provinces {
		if assigned[p.ID] {
			continue
		}
		owner, ok := eligible(p.ID)
		if !ok {
			continue
		}

		members, err := graph.component(p.ID, func(_, to ProvinceID) bool {
			o, ok := eligible(to)
			return ok && o == owner
		})
		if err != nil {
			// Province missing from the graph; it still forms its own group.
			members = []ProvinceID{p.ID}
		}

		g := TerritoryGroup{Owner: owner}
		var sumX, sumY float64
		for _, id := range members {
			assigned[id] = true
			m := byID[id]
			g.Provinces = append(g.Provinces, id)
			if g.PixelCount == 0 {
				g.Bounds = m.Bounds
			} else {
				g.Bounds = g.Bounds.Union(m.Bounds)
			}
			for _, px := range m.Pixels {
				sumX += float64(px.X)
				sumY += float64(px.Y)
			}
			g.PixelCount += len(m.Pixels)
		}
		sort.Slice(g.Provinces, func(i, j int) bool {
			return byID[g.Provinces[i]].Index < byID[g.Provinces[j]].Index
		})
		if g.PixelCount > 0 {
			g.Centroid = Centroid{X: sumX / float64(g.PixelCount), Y: sumY / float64(g.PixelCount)}
		}
		groups = append(groups, g)
	}

	return groups
}
