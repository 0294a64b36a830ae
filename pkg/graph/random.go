package graph

import "math/rand"

// GenerateRandom builds a pseudo-random graph where every vertex has exactly
// degree outgoing edges to uniformly chosen targets, with weights uniform in
// (0, maxWeight]. The same seed always yields the same graph.
func GenerateRandom(numVertices uint32, degree int, maxWeight float64, seed int64) (*Graph, error) {
	if numVertices == 0 {
		return Build(0, nil)
	}
	rng := rand.New(rand.NewSource(seed))

	edges := make([]Edge, 0, int(numVertices)*degree)
	for v := uint32(0); v < numVertices; v++ {
		for i := 0; i < degree; i++ {
			edges = append(edges, Edge{
				From:   v,
				To:     uint32(rng.Intn(int(numVertices))),
				Weight: (1 - rng.Float64()) * maxWeight, // (0, maxWeight]
			})
		}
	}

	return Build(numVertices, edges)
}
