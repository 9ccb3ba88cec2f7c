package maps

import "image"

// BorderSet holds one province's border pixels in row-major order.
type BorderSet struct {
	Internal []image.Point // touch another province of the same owner
	External []image.Point // touch another owner, void, or the grid edge
}

// Len returns the total number of border pixels.
func (b *BorderSet) Len() int {
	return len(b.Internal) + len(b.External)
}

// ClassifyBorders tags every province pixel that has a 4-neighbour outside
// its own province. The pixel is external if any such neighbour is void,
// off the grid, or owned by someone else; otherwise it is internal.
// Two unowned provinces count as having the same owner.
func ClassifyBorders(lookup *Lookup, ownerOf OwnerFunc) map[ProvinceID]*BorderSet {
	if ownerOf == nil {
		ownerOf = Unowned
	}

	type owner struct {
		id    CountryID
		owned bool
	}
	owners := make(map[ProvinceID]owner)
	ownerAt := func(id ProvinceID) owner {
		o, ok := owners[id]
		if !ok {
			o.id, o.owned = ownerOf(id)
			owners[id] = o
		}
		return o
	}

	out := make(map[ProvinceID]*BorderSet)
	for y := 0; y < lookup.Height; y++ {
		for x := 0; x < lookup.Width; x++ {
			id := lookup.ids[y*lookup.Width+x]
			if id == NoProvince {
				continue
			}

			border, external := false, false
			for _, d := range dirs {
				n := lookup.At(x+d[0], y+d[1])
				if n == id {
					continue
				}
				border = true
				if n == NoProvince || ownerAt(n) != ownerAt(id) {
					external = true
					break
				}
			}
			if !border {
				continue
			}

			set := out[id]
			if set == nil {
				set = &BorderSet{}
				out[id] = set
			}
			p := image.Pt(x, y)
			if external {
				set.External = append(set.External, p)
			} else {
				set.Internal = append(set.Internal, p)
			}
		}
	}

	return out
}
