package maps

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupTerritories_AdjacentAndSeparate(t *testing.T) {
	w := mustWorld(t, bitmap(
		"RRGG.YY",
		"RRGG.YY",
	))
	r, g, y := idOf(red), idOf(green), idOf(yellow)
	owners := Ownership{r: "crimson", g: "crimson", y: "crimson"}

	groups := w.Groups(owners.Owner)
	require.Len(t, groups, 2)

	assert.Equal(t, CountryID("crimson"), groups[0].Owner)
	assert.Equal(t, []ProvinceID{r, g}, groups[0].Provinces)
	assert.Equal(t, 8, groups[0].PixelCount)
	assert.Equal(t, image.Rect(0, 0, 4, 2), groups[0].Bounds)
	assert.InDelta(t, 1.5, groups[0].Centroid.X, 1e-9)
	assert.InDelta(t, 0.5, groups[0].Centroid.Y, 1e-9)

	assert.Equal(t, []ProvinceID{y}, groups[1].Provinces)
	assert.Equal(t, 4, groups[1].PixelCount)
}

func TestGroupTerritories_OwnershipSplitsGroups(t *testing.T) {
	w := mustWorld(t, bitmap("RGB"))
	r, g, b := idOf(red), idOf(green), idOf(blue)

	groups := w.Groups(Ownership{r: "a", g: "b", b: "a"}.Owner)
	require.Len(t, groups, 3, "same owner separated by a foreign province")
	assert.Equal(t, []ProvinceID{r}, groups[0].Provinces)
	assert.Equal(t, []ProvinceID{g}, groups[1].Provinces)
	assert.Equal(t, []ProvinceID{b}, groups[2].Provinces)

	groups = w.Groups(Ownership{r: "a", g: "a", b: "a"}.Owner)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Provinces, 3)
}

func TestGroupTerritories_SkipsWaterAndUnowned(t *testing.T) {
	w := mustWorld(t, bitmap("RWGB"))
	r, wt, g := idOf(red), idOf(water), idOf(green)

	groups := w.Groups(Ownership{r: "a", wt: "a", g: "a"}.Owner)
	require.Len(t, groups, 2, "water never joins or bridges a group")
	assert.Equal(t, []ProvinceID{r}, groups[0].Provinces)
	assert.Equal(t, []ProvinceID{g}, groups[1].Provinces)

	assert.Empty(t, w.Groups(Unowned))
	assert.Nil(t, GroupTerritories(w.Provinces, w.Graph, nil))
}

func TestGroupTerritories_CoverOwnedLand(t *testing.T) {
	w := generatedWorld(t, 8)
	owners := Ownership{}
	for i, p := range w.Provinces {
		owners[p.ID] = CountryID([]string{"a", "b", "c"}[i%3])
	}

	groups := w.Groups(owners.Owner)
	seen := make(map[ProvinceID]bool)
	for _, grp := range groups {
		require.NotEmpty(t, grp.Provinces)
		for _, id := range grp.Provinces {
			assert.False(t, seen[id], "%s in two groups", id)
			seen[id] = true
			o, _ := owners.Owner(id)
			assert.Equal(t, grp.Owner, o)
		}
	}
	for _, p := range w.Provinces {
		assert.Equal(t, !p.IsWater, seen[p.ID], "province %s", p.ID)
	}
}
