package main

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"batch_sssp/pkg/graph"
)

var (
	genVertices  uint32
	genDegree    int
	genMaxWeight float64
	genSeed      int64
	genOutput    string
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a random graph and write it as a binary graph file",
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		g, err := graph.GenerateRandom(genVertices, genDegree, genMaxWeight, genSeed)
		if err != nil {
			return err
		}
		log.Printf("Generated: %d vertices, %d edges (seed %d)",
			g.NumVertices, g.NumEdges, genSeed)

		if err := graph.WriteBinary(genOutput, g); err != nil {
			return err
		}
		log.Printf("Wrote %s in %s", genOutput, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	genCmd.Flags().Uint32Var(&genVertices, "vertices", 100_000, "Number of vertices")
	genCmd.Flags().IntVar(&genDegree, "degree", 8, "Outgoing edges per vertex")
	genCmd.Flags().Float64Var(&genMaxWeight, "max-weight", 100.0, "Maximum edge weight")
	genCmd.Flags().Int64Var(&genSeed, "seed", 1, "Random seed")
	genCmd.Flags().StringVar(&genOutput, "output", "graph.bin", "Output binary graph file path")
	rootCmd.AddCommand(genCmd)
}
