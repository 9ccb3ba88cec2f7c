package maps

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBorders_SurroundedByVoid(t *testing.T) {
	w := mustWorld(t, bitmap(
		".....",
		".RRR.",
		".RRR.",
		".RRR.",
		".....",
	))
	borders := w.Borders(Ownership{idOf(red): "crimson"}.Owner)

	set := borders[idOf(red)]
	require.NotNil(t, set)
	assert.Empty(t, set.Internal)
	assert.Len(t, set.External, 8)
	assert.NotContains(t, set.External, image.Pt(2, 2), "interior pixel is not a border")
}

func TestClassifyBorders_GridEdgeIsExternal(t *testing.T) {
	w := mustWorld(t, bitmap("R"))
	set := w.Borders(nil)[idOf(red)]
	require.NotNil(t, set)
	assert.Equal(t, []image.Point{image.Pt(0, 0)}, set.External)
}

func TestClassifyBorders_Ownership(t *testing.T) {
	img := bitmap(
		"RRGG",
		"RRGG",
	)
	w := mustWorld(t, img)
	r, g := idOf(red), idOf(green)

	t.Run("same owner", func(t *testing.T) {
		b := w.Borders(Ownership{r: "a", g: "a"}.Owner)
		// Every red pixel also touches the grid edge.
		assert.Empty(t, b[r].Internal)
		assert.Len(t, b[r].External, 4)

		wide := mustWorld(t, bitmap(
			"RRRGGG",
			"RRRGGG",
			"RRRGGG",
		))
		b = wide.Borders(Ownership{r: "a", g: "a"}.Owner)
		assert.Equal(t, []image.Point{image.Pt(2, 1)}, b[r].Internal)
		assert.Equal(t, []image.Point{image.Pt(3, 1)}, b[g].Internal)
	})

	t.Run("different owners", func(t *testing.T) {
		wide := mustWorld(t, bitmap(
			"RRRGGG",
			"RRRGGG",
			"RRRGGG",
		))
		b := wide.Borders(Ownership{r: "a", g: "b"}.Owner)
		assert.Empty(t, b[r].Internal)
		assert.Contains(t, b[r].External, image.Pt(2, 1))
		assert.Contains(t, b[g].External, image.Pt(3, 1))
	})

	t.Run("owned next to unowned", func(t *testing.T) {
		wide := mustWorld(t, bitmap(
			"RRRGGG",
			"RRRGGG",
			"RRRGGG",
		))
		b := wide.Borders(Ownership{r: "a"}.Owner)
		assert.Contains(t, b[r].External, image.Pt(2, 1))
		assert.Contains(t, b[g].External, image.Pt(3, 1))
	})

	t.Run("both unowned", func(t *testing.T) {
		wide := mustWorld(t, bitmap(
			"RRRGGG",
			"RRRGGG",
			"RRRGGG",
		))
		b := wide.Borders(Unowned)
		assert.Equal(t, []image.Point{image.Pt(2, 1)}, b[r].Internal)
	})
}

func TestClassifyBorders_ExternalWins(t *testing.T) {
	// The bottom red row touches yellow (same owner) and blue (other owner).
	w := mustWorld(t, bitmap(
		"YYYYY",
		"YRRRY",
		"YRRRY",
		"BBBBB",
	))
	r, y, b := idOf(red), idOf(yellow), idOf(blue)
	borders := w.Borders(Ownership{r: "a", y: "a", b: "c"}.Owner)

	set := borders[r]
	assert.Contains(t, set.Internal, image.Pt(2, 1))
	assert.Contains(t, set.External, image.Pt(1, 2), "touches yellow and blue; blue wins")
	assert.NotContains(t, set.Internal, image.Pt(1, 2))
	assert.Equal(t, 6, set.Len())
}

func TestClassifyBorders_EveryPixelClassifiedOnce(t *testing.T) {
	w := generatedWorld(t, 21)
	owners := Ownership{}
	for i, p := range w.Provinces {
		if i%3 != 0 {
			owners[p.ID] = CountryID([]string{"a", "b"}[i%2])
		}
	}

	seen := make(map[image.Point]bool)
	for id, set := range w.Borders(owners.Owner) {
		for _, px := range append(set.Internal, set.External...) {
			assert.False(t, seen[px], "pixel %v classified twice", px)
			seen[px] = true
			assert.Equal(t, id, w.Lookup.At(px.X, px.Y))
		}
	}
}
