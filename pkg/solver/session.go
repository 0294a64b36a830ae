// Package solver contains the batch SSSP engine: the per-device relaxation
// session, the workload orchestrator that fans a query batch out across
// devices, and a sequential reference implementation used as the
// correctness oracle.
//
// The algorithm is the frontier-relaxation form of Bellman-Ford from Harish
// and Narayanan's "Accelerating large graph algorithms on the GPU": each
// round scans the outgoing edges of every frontier vertex into a staging
// cost array (combining by minimum), then commits improved costs and
// rebuilds the frontier. The loop ends when a round leaves the frontier
// empty, at which point every reachable vertex holds its exact shortest
// distance.
package solver

import (
	"context"
	"errors"
	"fmt"

	"batch_sssp/pkg/compute"
	"batch_sssp/pkg/graph"
)

// Session drives one device through relax-to-convergence for a contiguous
// slice of the query batch. It owns the device queue for its lifetime;
// queries run strictly sequentially because each reuses the queue's
// relaxation buffers.
type Session struct {
	queue     compute.Queue
	graph     *graph.Graph
	maxRounds int
	frontier  []bool // host-side read-back buffer for the termination check
}

// NewSession opens a queue for the device with the graph resident.
// maxRounds caps the relax loop per query; zero means NumVertices+1, which
// no valid input can exceed (distances propagate at least one edge per
// round and a shortest path uses at most NumVertices-1 edges).
func NewSession(backend compute.Backend, device compute.DeviceInfo, g *graph.Graph, maxRounds int) (*Session, error) {
	if maxRounds <= 0 {
		maxRounds = int(g.NumVertices) + 1
	}
	q, err := backend.Open(device, g)
	if err != nil {
		return nil, fmt.Errorf("open queue: %w", err)
	}
	return &Session{
		queue:     q,
		graph:     g,
		maxRounds: maxRounds,
		frontier:  make([]bool, g.NumVertices),
	}, nil
}

// Run solves every query in sources, writing the distances for query i into
// outCosts[i*NumVertices : (i+1)*NumVertices]. batchOffset is the position
// of sources[0] in the full batch, used only to label failures.
//
// A per-query fault (invalid source, missed convergence) is recorded in
// failed and the remaining queries still run; their slices stay valid. A
// backend fault aborts the session and invalidates its whole sub-batch.
func (s *Session) Run(ctx context.Context, batchOffset int, sources []uint32, outCosts []float64) (failed []*QueryError, err error) {
	n := int(s.graph.NumVertices)
	if len(outCosts) < len(sources)*n {
		return nil, fmt.Errorf("result buffer len %d, need %d", len(outCosts), len(sources)*n)
	}

	for i, source := range sources {
		if source >= s.graph.NumVertices {
			failed = append(failed, &QueryError{
				Query:  batchOffset + i,
				Source: source,
				Err:    fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidQuery, source, s.graph.NumVertices),
			})
			continue
		}

		if err := s.solveOne(ctx, source); err != nil {
			var qerr *QueryError
			if errors.As(err, &qerr) {
				qerr.Query = batchOffset + i
				failed = append(failed, qerr)
				continue
			}
			return failed, err
		}

		if err := s.queue.ReadCosts(outCosts[i*n : (i+1)*n]); err != nil {
			return failed, fmt.Errorf("read costs: %w", err)
		}
	}
	return failed, nil
}

// solveOne runs the relax loop for a single query. The returned error is a
// *QueryError for per-query faults and a plain error for fatal ones.
func (s *Session) solveOne(ctx context.Context, source uint32) error {
	if err := s.queue.Initialize(source); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	for round := 0; ; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if round >= s.maxRounds {
			return &QueryError{
				Source: source,
				Err:    fmt.Errorf("%w after %d rounds", ErrConvergence, round),
			}
		}

		if err := s.queue.Scan(); err != nil {
			return fmt.Errorf("scan round %d: %w", round, err)
		}
		if err := s.queue.Commit(); err != nil {
			return fmt.Errorf("commit round %d: %w", round, err)
		}
		if err := s.queue.ReadFrontier(s.frontier); err != nil {
			return fmt.Errorf("read frontier round %d: %w", round, err)
		}
		if !anyActive(s.frontier) {
			return nil
		}
	}
}

// Close releases the device queue.
func (s *Session) Close() error {
	return s.queue.Close()
}

func anyActive(mask []bool) bool {
	for _, m := range mask {
		if m {
			return true
		}
	}
	return false
}
