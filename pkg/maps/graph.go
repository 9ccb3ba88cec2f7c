package maps

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
)

// Unreachable is the distance reported when the target cannot be reached
// within the search depth.
const Unreachable = math.MaxInt

// errTargetReached stops a distance search as soon as the target is visited.
var errTargetReached = errors.New("target reached")

// Graph is the undirected "shares a border" relation between provinces.
// It depends only on geography and is never rebuilt after construction.
// Concurrent queries are safe.
type Graph struct {
	g   *core.Graph
	ids map[string]ProvinceID
}

// BuildAdjacency adds every province as a vertex and links each pair of
// provinces that touch orthogonally somewhere in the lookup.
func BuildAdjacency(lookup *Lookup, provinces []*Province) (*Graph, error) {
	gr := &Graph{
		g:   core.NewGraph(),
		ids: make(map[string]ProvinceID, len(provinces)),
	}

	for _, p := range provinces {
		key := p.ID.String()
		if err := gr.g.AddVertex(key); err != nil {
			return nil, fmt.Errorf("add province %s: %w", key, err)
		}
		gr.ids[key] = p.ID
	}

	// Each unordered pixel pair is seen once: right and down neighbours only.
	for y := 0; y < lookup.Height; y++ {
		for x := 0; x < lookup.Width; x++ {
			id := lookup.ids[y*lookup.Width+x]
			if id == NoProvince {
				continue
			}
			if x+1 < lookup.Width {
				if err := gr.link(id, lookup.ids[y*lookup.Width+x+1]); err != nil {
					return nil, err
				}
			}
			if y+1 < lookup.Height {
				if err := gr.link(id, lookup.ids[(y+1)*lookup.Width+x]); err != nil {
					return nil, err
				}
			}
		}
	}

	return gr, nil
}

func (gr *Graph) link(a, b ProvinceID) error {
	if b == NoProvince || a == b {
		return nil
	}
	ka, kb := a.String(), b.String()
	if gr.g.HasEdge(ka, kb) {
		return nil
	}
	if _, err := gr.g.AddEdge(ka, kb, 0); err != nil {
		return fmt.Errorf("link %s-%s: %w", ka, kb, err)
	}
	return nil
}

// Has reports whether id is a vertex of the graph.
func (gr *Graph) Has(id ProvinceID) bool {
	_, ok := gr.ids[id.String()]
	return ok
}

// HasEdge reports whether a and b share a border.
func (gr *Graph) HasEdge(a, b ProvinceID) bool {
	return gr.g.HasEdge(a.String(), b.String())
}

// EdgeCount returns the number of distinct borders.
func (gr *Graph) EdgeCount() int {
	return gr.g.EdgeCount()
}

// Neighbors returns the provinces bordering id in ascending id order.
func (gr *Graph) Neighbors(id ProvinceID) []ProvinceID {
	keys, err := gr.g.NeighborIDs(id.String())
	if err != nil {
		return nil
	}
	out := make([]ProvinceID, 0, len(keys))
	for _, k := range keys {
		out = append(out, gr.ids[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Distance returns the number of border crossings from one province to
// another, or Unreachable when to is not found within maxDepth hops.
// Distance(x, x) is 0 for every province x.
func (gr *Graph) Distance(from, to ProvinceID, maxDepth int) int {
	if !gr.Has(from) || !gr.Has(to) {
		return Unreachable
	}
	if from == to {
		return 0
	}
	if maxDepth <= 0 {
		return Unreachable
	}

	target := to.String()
	found := Unreachable
	_, err := bfs.BFS(gr.g, from.String(),
		bfs.WithMaxDepth(maxDepth),
		bfs.WithOnVisit(func(id string, depth int) error {
			if id == target {
				found = depth
				return errTargetReached
			}
			return nil
		}),
	)
	if err != nil && !errors.Is(err, errTargetReached) {
		return Unreachable
	}
	return found
}

// Reachable returns every province within maxDepth hops of from, with its
// distance. The start province is included at distance 0.
func (gr *Graph) Reachable(from ProvinceID, maxDepth int) map[ProvinceID]int {
	if !gr.Has(from) {
		return nil
	}
	if maxDepth <= 0 {
		return map[ProvinceID]int{from: 0}
	}
	res, err := bfs.BFS(gr.g, from.String(), bfs.WithMaxDepth(maxDepth))
	if err != nil {
		return map[ProvinceID]int{from: 0}
	}
	out := make(map[ProvinceID]int, len(res.Depth))
	for k, d := range res.Depth {
		out[gr.ids[k]] = d
	}
	return out
}

// component returns the provinces connected to start through neighbours
// accepted by keep, in breadth-first order.
func (gr *Graph) component(start ProvinceID, keep func(from, to ProvinceID) bool) ([]ProvinceID, error) {
	res, err := bfs.BFS(gr.g, start.String(),
		bfs.WithFilterNeighbor(func(curr, nbr string) bool {
			return keep(gr.ids[curr], gr.ids[nbr])
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("walk from %s: %w", start, err)
	}
	out := make([]ProvinceID, 0, len(res.Order))
	for _, k := range res.Order {
		out = append(out, gr.ids[k])
	}
	return out, nil
}
