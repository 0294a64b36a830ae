package graph

import (
	"fmt"
	"sort"
)

// Edge is an input edge for the CSR builder, already expressed in compact
// vertex indices.
type Edge struct {
	From   uint32
	To     uint32
	Weight float64
}

// Build creates a CSR Graph from an edge list. numVertices must cover every
// vertex referenced by the edges; isolated vertices are allowed (they simply
// get an empty out-edge range).
func Build(numVertices uint32, edges []Edge) (*Graph, error) {
	// Sort edges by source vertex; ties keep target order for stable output.
	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		return sorted[i].To < sorted[j].To
	})

	firstOut := make([]uint32, numVertices+1)
	head := make([]uint32, len(sorted))
	weight := make([]float64, len(sorted))

	// Count out-degree per vertex, then prefix-sum into offsets.
	for _, e := range sorted {
		if e.From >= numVertices {
			return nil, fmt.Errorf("edge source %d out of range [0,%d): %w",
				e.From, numVertices, ErrInvalidGraph)
		}
		firstOut[e.From+1]++
	}
	for v := uint32(0); v < numVertices; v++ {
		firstOut[v+1] += firstOut[v]
	}

	for i, e := range sorted {
		head[i] = e.To
		weight[i] = e.Weight
	}

	return New(firstOut, head, weight)
}
