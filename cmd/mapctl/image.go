package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"world-conquest/internal/game"
	"world-conquest/pkg/maps"
)

var (
	flagRenderOut string
	flagGenOut    string
	genOpts       = maps.DefaultGeneratorOptions()
	flagNoWater   bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the configured scenario to a PNG",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, cfg, err := loadWorld()
		if err != nil {
			return err
		}

		g := game.NewGame("render", "Render", w.ID, cfg.Rules)
		if err := cfg.Scenario.Apply(g, w); err != nil {
			return err
		}

		borders := w.Borders(g.Ownership.Owner)
		if err := writePNG(flagRenderOut, maps.Render(w, g.Ownership.Owner, borders, g.Palette())); err != nil {
			return err
		}

		groups := w.Groups(g.Ownership.Owner)
		fmt.Printf("Wrote %s: %d countries, %d territory groups\n", flagRenderOut, len(g.Countries), len(groups))
		for _, grp := range groups {
			fmt.Printf("  %-12s %2d provinces, centre (%.0f, %.0f)\n",
				grp.Owner, len(grp.Provinces), grp.Centroid.X, grp.Centroid.Y)
		}
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random province bitmap",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := genOpts
		opts.WaterBorder = !flagNoWater

		img := maps.NewGenerator(opts).Generate()
		if err := writePNG(flagGenOut, img); err != nil {
			return err
		}

		// Segment the result so the report matches what the server will see.
		w, err := maps.NewWorld("generated", "Generated", img, maps.DefaultOptions())
		if err != nil {
			return err
		}
		land := 0
		for _, p := range w.Provinces {
			if !p.IsWater {
				land++
			}
		}
		fmt.Printf("Wrote %s: %dx%d, %d provinces (%d land), %d borders\n",
			flagGenOut, w.Width, w.Height, w.ProvinceCount(), land, w.Graph.EdgeCount())
		return nil
	},
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	renderCmd.Flags().StringVarP(&flagRenderOut, "out", "o", "scenario.png", "Output PNG")

	f := generateCmd.Flags()
	f.StringVarP(&flagGenOut, "out", "o", "generated.png", "Output PNG")
	f.IntVar(&genOpts.Width, "width", genOpts.Width, "Grid width in cells (20-60)")
	f.IntVar(&genOpts.Provinces, "provinces", genOpts.Provinces, "Target province count (24-120)")
	f.IntVar(&genOpts.Islands, "islands", genOpts.Islands, "Island spread (1-5)")
	f.IntVar(&genOpts.CellSize, "cell-size", genOpts.CellSize, "Pixels per grid cell (1-16)")
	f.IntVar(&genOpts.Margin, "margin", genOpts.Margin, "Transparent margin in pixels")
	f.Int64Var(&genOpts.Seed, "seed", 0, "RNG seed (0 = time based)")
	f.BoolVar(&flagNoWater, "no-water-border", false, "Let land touch the map edge")
}
