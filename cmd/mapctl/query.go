package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"world-conquest/pkg/maps"
)

var (
	flagMatrix    bool
	flagMaxDepth  int
	flagMaxPoints int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the province report of a map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, _, err := loadWorld()
		if err != nil {
			return err
		}
		fmt.Print(w.Debug())
		if flagMatrix {
			fmt.Println()
			fmt.Print(w.AdjacencyMatrix())
		}
		return nil
	},
}

var distanceCmd = &cobra.Command{
	Use:   "distance <from> <to>",
	Short: "Hop distance between two provinces",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, cfg, err := loadWorld()
		if err != nil {
			return err
		}
		from, err := provinceArg(w, args[0])
		if err != nil {
			return err
		}
		to, err := provinceArg(w, args[1])
		if err != nil {
			return err
		}

		depth := depthOr(cfg.Rules.MaxMoveDepth)
		d := w.Distance(from, to, depth)
		if d == maps.Unreachable {
			fmt.Printf("%s -> %s: unreachable within %d hops\n", from, to, depth)
			return nil
		}
		fmt.Printf("%s -> %s: %d\n", from, to, d)
		return nil
	},
}

var reachCmd = &cobra.Command{
	Use:   "reach <from>",
	Short: "List provinces within a number of hops",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, cfg, err := loadWorld()
		if err != nil {
			return err
		}
		from, err := provinceArg(w, args[0])
		if err != nil {
			return err
		}

		reach := w.Graph.Reachable(from, depthOr(cfg.Rules.MaxMoveDepth))
		ids := make([]maps.ProvinceID, 0, len(reach))
		for id := range reach {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			if reach[ids[i]] != reach[ids[j]] {
				return reach[ids[i]] < reach[ids[j]]
			}
			return ids[i].String() < ids[j].String()
		})

		fmt.Printf("  %-14s  %s  %s\n", "Province", "Hops", "Kind")
		for _, id := range ids {
			kind := "land"
			if w.Province(id).IsWater {
				kind = "water"
			}
			fmt.Printf("  %-14s  %4d  %s\n", id, reach[id], kind)
		}
		return nil
	},
}

var traceCmd = &cobra.Command{
	Use:   "trace <province>",
	Short: "Print the outline polygon of a province",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, cfg, err := loadWorld()
		if err != nil {
			return err
		}
		id, err := provinceArg(w, args[0])
		if err != nil {
			return err
		}

		opts := cfg.Map.Trace()
		if flagMaxPoints > 0 {
			opts.MaxPoints = flagMaxPoints
		}
		pts := w.Outline(id, opts)
		fmt.Printf("%s: %d points\n", id, len(pts))
		for _, p := range pts {
			fmt.Printf("%d,%d\n", p.X, p.Y)
		}
		return nil
	},
}

func depthOr(configured int) int {
	if flagMaxDepth > 0 {
		return flagMaxDepth
	}
	return configured
}

func init() {
	inspectCmd.Flags().BoolVar(&flagMatrix, "matrix", false, "Also print the adjacency matrix")
	for _, cmd := range []*cobra.Command{distanceCmd, reachCmd} {
		cmd.Flags().IntVar(&flagMaxDepth, "max-depth", 0, "Hop bound (default: rules.max_move_depth)")
	}
	traceCmd.Flags().IntVar(&flagMaxPoints, "max-points", 0, "Outline point cap (default: map.trace_max_points)")
}
