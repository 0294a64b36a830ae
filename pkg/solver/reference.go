package solver

import (
	"fmt"
	"math"

	"batch_sssp/pkg/graph"
)

// Reference solves the batch sequentially on the host with the exact round
// structure of the device sessions: full scan phase, then full commit phase,
// per round. It deliberately takes no algorithmic shortcut (no priority
// queue) so its convergence behavior matches the parallel path round for
// round, which makes it usable as a bit-level oracle for integer-valued
// weights and a tolerance oracle for floating ones.
//
// The contract matches Session.Run: distances for query i land in
// outCosts[i*NumVertices : (i+1)*NumVertices], per-query faults are
// reported in failed without touching sibling queries.
func Reference(g *graph.Graph, sources []uint32, outCosts []float64, maxRounds int) (failed []*QueryError, err error) {
	n := int(g.NumVertices)
	if len(outCosts) < len(sources)*n {
		return nil, fmt.Errorf("result buffer len %d, need %d", len(outCosts), len(sources)*n)
	}
	if maxRounds <= 0 {
		maxRounds = n + 1
	}

	cost := make([]float64, n)
	staged := make([]float64, n)
	active := make([]bool, n)

	for i, source := range sources {
		if source >= g.NumVertices {
			failed = append(failed, &QueryError{
				Query:  i,
				Source: source,
				Err:    fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidQuery, source, g.NumVertices),
			})
			continue
		}

		for v := range cost {
			cost[v] = math.Inf(1)
			staged[v] = math.Inf(1)
			active[v] = false
		}
		cost[source] = 0
		staged[source] = 0
		active[source] = true

		converged := false
		for round := 0; round < maxRounds; round++ {
			// Scan phase.
			anyScanned := false
			for tid := 0; tid < n; tid++ {
				if !active[tid] {
					continue
				}
				active[tid] = false
				anyScanned = true
				start, end := g.EdgesFrom(uint32(tid))
				for e := start; e < end; e++ {
					nid := g.Head[e]
					if proposed := cost[tid] + g.Weight[e]; staged[nid] > proposed {
						staged[nid] = proposed
					}
				}
			}
			if !anyScanned {
				converged = true
				break
			}

			// Commit phase.
			for tid := 0; tid < n; tid++ {
				if cost[tid] > staged[tid] {
					cost[tid] = staged[tid]
					active[tid] = true
				}
				staged[tid] = cost[tid]
			}
		}

		if !converged && anyActive(active) {
			failed = append(failed, &QueryError{
				Query:  i,
				Source: source,
				Err:    fmt.Errorf("%w after %d rounds", ErrConvergence, maxRounds),
			})
			continue
		}

		copy(outCosts[i*n:(i+1)*n], cost)
	}
	return failed, nil
}
