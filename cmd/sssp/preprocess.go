package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"batch_sssp/pkg/graph"
	osmparser "batch_sssp/pkg/osm"
)

var (
	ppInput     string
	ppOutput    string
	ppBBox      string
	ppSingapore bool
	ppKL        bool
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Convert an OSM PBF extract into a binary graph file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts osmparser.ParseOptions
		switch {
		case ppKL:
			opts.BBox = osmparser.BBox{MinLat: 2.75, MaxLat: 3.5, MinLng: 101.2, MaxLng: 102.0}
			log.Println("Using Selangor + KL bounding box filter: lat [2.75, 3.50], lng [101.20, 102.00]")
		case ppSingapore:
			opts.BBox = osmparser.BBox{MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1}
			log.Println("Using Singapore bounding box filter: lat [1.15, 1.48], lng [103.6, 104.1]")
		case ppBBox != "":
			var minLat, minLng, maxLat, maxLng float64
			if _, err := fmt.Sscanf(ppBBox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
				return fmt.Errorf("invalid bbox format (expected minLat,minLng,maxLat,maxLng): %w", err)
			}
			opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
			log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]",
				minLat, maxLat, minLng, maxLng)
		}

		start := time.Now()

		log.Println("Opening OSM file...")
		f, err := os.Open(ppInput)
		if err != nil {
			return fmt.Errorf("open input file: %w", err)
		}
		defer f.Close()

		log.Println("Parsing OSM data...")
		parseResult, err := osmparser.Parse(cmd.Context(), f, opts)
		if err != nil {
			return fmt.Errorf("parse OSM data: %w", err)
		}

		log.Println("Building CSR graph...")
		g, err := osmparser.BuildGraph(parseResult)
		if err != nil {
			return err
		}
		log.Printf("Built: %d vertices, %d edges", g.NumVertices, g.NumEdges)

		if err := graph.WriteBinary(ppOutput, g); err != nil {
			return err
		}
		log.Printf("Wrote %s in %s", ppOutput, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	preprocessCmd.Flags().StringVar(&ppInput, "input", "", "Path to .osm.pbf file")
	preprocessCmd.Flags().StringVar(&ppOutput, "output", "graph.bin", "Output binary graph file path")
	preprocessCmd.Flags().StringVar(&ppBBox, "bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng")
	preprocessCmd.Flags().BoolVar(&ppSingapore, "singapore", false, "Shortcut for the Singapore bounding box")
	preprocessCmd.Flags().BoolVar(&ppKL, "kl", false, "Shortcut for the Selangor + Kuala Lumpur bounding box")
	preprocessCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(preprocessCmd)
}
