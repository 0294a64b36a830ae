package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"batch_sssp/pkg/compute"
	"batch_sssp/pkg/graph"
	osmparser "batch_sssp/pkg/osm"
	"batch_sssp/pkg/solver"
)

var (
	solveGraphPath string
	solveOSMPath   string
	solveRandom    string

	solveSeed      int64
	solveMaxWeight float64

	solveQueries int
	solveSources string
	solveNear    []string

	solveDeviceMode   string
	solveAccelerators int
	solveProcessors   int
	solveLanes        int

	solveTolerance float64
	solveVerify    bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run a batch of SSSP queries and verify against the sequential reference",
	Long: `Loads a graph from a binary file, an OSM PBF extract, or the random
generator, issues a batch of source-vertex queries, solves them across the
selected device set, and checks the results against the sequential
reference solver. Exits 0 only on full agreement within the tolerance.`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveGraphPath, "graph", "", "Path to binary graph file")
	solveCmd.Flags().StringVar(&solveOSMPath, "osm", "", "Path to .osm.pbf file")
	solveCmd.Flags().StringVar(&solveRandom, "random", "", "Generate a random graph: vertices,degree (e.g. 100000,8)")
	solveCmd.Flags().Int64Var(&solveSeed, "seed", 1, "Random seed for graph generation and source picking")
	solveCmd.Flags().Float64Var(&solveMaxWeight, "max-weight", 100.0, "Maximum edge weight for --random")

	solveCmd.Flags().IntVar(&solveQueries, "queries", 10, "Number of random source vertices")
	solveCmd.Flags().StringVar(&solveSources, "sources", "", "Explicit comma-separated source vertex IDs (overrides --queries)")
	solveCmd.Flags().StringArrayVar(&solveNear, "near", nil, "Pick a source by coordinate lat,lon (repeatable; needs a graph with coordinates)")

	solveCmd.Flags().StringVar(&solveDeviceMode, "devices", "all", "Device set: single | all | hybrid | ref")
	solveCmd.Flags().IntVar(&solveAccelerators, "accelerators", 2, "Emulated accelerator device count")
	solveCmd.Flags().IntVar(&solveProcessors, "processors", 1, "Emulated processor device count (hybrid mode)")
	solveCmd.Flags().IntVar(&solveLanes, "lanes", 0, "Lanes per accelerator (0 = NumCPU)")

	solveCmd.Flags().Float64Var(&solveTolerance, "tolerance", 1e-6, "Absolute tolerance for reference comparison")
	solveCmd.Flags().BoolVar(&solveVerify, "verify", true, "Compare device results against the reference solver")

	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	g, err := loadGraph(cmd.Context())
	if err != nil {
		return fmt.Errorf("graph rejected: %w", err)
	}
	log.Printf("Graph ready: %d vertices, %d edges (avg degree %.1f)",
		g.NumVertices, g.NumEdges, avgDegree(g))

	sources, err := resolveSources(g)
	if err != nil {
		return err
	}
	log.Printf("Query batch: %d sources", len(sources))

	n := int(g.NumVertices)
	out := make([]float64, len(sources)*n)

	// Reference-only mode: the sequential solver is the execution path.
	if solveDeviceMode == "ref" {
		start := time.Now()
		failed, err := solver.Reference(g, sources, out, 0)
		if err != nil {
			return err
		}
		for _, f := range failed {
			log.Printf("FAILED %v", f)
		}
		log.Printf("Reference solved %d queries in %s", len(sources)-len(failed),
			time.Since(start).Round(time.Microsecond))
		if len(failed) > 0 {
			return fmt.Errorf("query batch partially failed (%d of %d succeeded)",
				len(sources)-len(failed), len(sources))
		}
		return nil
	}

	backend := compute.NewHostBackend(compute.HostConfig{
		Accelerators: solveAccelerators,
		Processors:   solveProcessors,
		Lanes:        solveLanes,
	})
	devices, err := pickDevices(backend)
	if err != nil {
		return err
	}
	for _, d := range devices {
		log.Printf("Device: %s (%s, throughput hint %.0f)", d.ID, d.Kind, d.Throughput)
	}

	orch := solver.NewOrchestrator(backend, devices, solver.Options{})

	start := time.Now()
	solveErr := orch.Solve(cmd.Context(), g, sources, out)
	elapsed := time.Since(start)

	if solveErr != nil {
		if errors.Is(solveErr, solver.ErrNoDevices) {
			return fmt.Errorf("device unavailable: %w", solveErr)
		}
		var serr *solver.SolveError
		if errors.As(solveErr, &serr) {
			for _, e := range serr.Unwrap() {
				log.Printf("FAILED %v", e)
			}
			return fmt.Errorf("query batch partially failed (%d of %d succeeded)",
				len(sources)-serr.FailedQueries(), len(sources))
		}
		return solveErr
	}

	perQuery := elapsed / time.Duration(len(sources))
	log.Printf("Solved %d queries on %d device(s) in %s (%s/query avg)",
		len(sources), len(devices), elapsed.Round(time.Microsecond), perQuery.Round(time.Microsecond))

	if !solveVerify {
		return nil
	}
	return verify(g, sources, out)
}

// verify re-solves every query with the sequential reference and compares.
func verify(g *graph.Graph, sources []uint32, got []float64) error {
	n := int(g.NumVertices)
	want := make([]float64, n)
	mismatches := 0

	for i, source := range sources {
		start := time.Now()
		failed, err := solver.Reference(g, sources[i:i+1], want, 0)
		if err != nil {
			return err
		}
		refTime := time.Since(start)

		if len(failed) > 0 {
			log.Printf("query %3d source %8d  reference FAILED: %v", i, source, failed[0])
			mismatches++
			continue
		}

		if solver.CostsEqual(want, got[i*n:(i+1)*n], solveTolerance) {
			log.Printf("query %3d source %8d  ref %10s  PASS", i, source,
				refTime.Round(time.Microsecond))
		} else {
			log.Printf("query %3d source %8d  ref %10s  FAIL", i, source,
				refTime.Round(time.Microsecond))
			mismatches++
		}
	}

	if mismatches > 0 {
		return fmt.Errorf("%d of %d queries disagree with the reference", mismatches, len(sources))
	}
	log.Printf("All %d queries agree with the reference (tolerance %g)", len(sources), solveTolerance)
	return nil
}

// loadGraph builds the input graph from whichever source flag is set.
func loadGraph(ctx context.Context) (*graph.Graph, error) {
	set := 0
	for _, s := range []string{solveGraphPath, solveOSMPath, solveRandom} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New("exactly one of --graph, --osm, --random is required")
	}

	switch {
	case solveGraphPath != "":
		log.Printf("Loading graph from %s...", solveGraphPath)
		return graph.ReadBinary(solveGraphPath)

	case solveOSMPath != "":
		log.Printf("Parsing OSM extract %s...", solveOSMPath)
		f, err := os.Open(solveOSMPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		result, err := osmparser.Parse(ctx, f)
		if err != nil {
			return nil, err
		}
		return osmparser.BuildGraph(result)

	default:
		var vertices uint32
		var degree int
		if _, err := fmt.Sscanf(solveRandom, "%d,%d", &vertices, &degree); err != nil {
			return nil, fmt.Errorf("invalid --random format (expected vertices,degree): %w", err)
		}
		log.Printf("Generating random graph: %d vertices, degree %d, seed %d...",
			vertices, degree, solveSeed)
		return graph.GenerateRandom(vertices, degree, solveMaxWeight, solveSeed)
	}
}

// resolveSources assembles the query batch from --sources, --near, or
// --queries random picks, in that precedence order.
func resolveSources(g *graph.Graph) ([]uint32, error) {
	if solveSources != "" {
		var sources []uint32
		for _, part := range strings.Split(solveSources, ",") {
			v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid source %q: %w", part, err)
			}
			sources = append(sources, uint32(v))
		}
		return sources, nil
	}

	if len(solveNear) > 0 {
		idx, err := osmparser.NewVertexIndex(g)
		if err != nil {
			return nil, fmt.Errorf("--near needs a graph with coordinates: %w", err)
		}
		var sources []uint32
		for _, coord := range solveNear {
			var lat, lon float64
			if _, err := fmt.Sscanf(coord, "%f,%f", &lat, &lon); err != nil {
				return nil, fmt.Errorf("invalid --near %q (expected lat,lon): %w", coord, err)
			}
			v, err := idx.Nearest(lat, lon)
			if err != nil {
				return nil, fmt.Errorf("--near %q: %w", coord, err)
			}
			log.Printf("Snapped (%.5f, %.5f) to vertex %d", lat, lon, v)
			sources = append(sources, v)
		}
		return sources, nil
	}

	if g.NumVertices == 0 {
		return nil, errors.New("graph has no vertices")
	}
	rng := rand.New(rand.NewSource(solveSeed))
	sources := make([]uint32, solveQueries)
	for i := range sources {
		sources[i] = uint32(rng.Intn(int(g.NumVertices)))
	}
	return sources, nil
}

// pickDevices selects the device subset for the requested mode.
func pickDevices(backend compute.Backend) ([]compute.DeviceInfo, error) {
	all := backend.Devices()
	switch solveDeviceMode {
	case "single":
		for _, d := range all {
			if d.Kind == compute.Accelerator {
				return []compute.DeviceInfo{d}, nil
			}
		}
		return nil, errors.New("device unavailable: no accelerator in backend")
	case "all":
		var accs []compute.DeviceInfo
		for _, d := range all {
			if d.Kind == compute.Accelerator {
				accs = append(accs, d)
			}
		}
		if len(accs) == 0 {
			return nil, errors.New("device unavailable: no accelerator in backend")
		}
		return accs, nil
	case "hybrid":
		return all, nil
	default:
		return nil, fmt.Errorf("unknown --devices mode %q (want single, all, hybrid, or ref)", solveDeviceMode)
	}
}

func avgDegree(g *graph.Graph) float64 {
	if g.NumVertices == 0 {
		return 0
	}
	return float64(g.NumEdges) / float64(g.NumVertices)
}
