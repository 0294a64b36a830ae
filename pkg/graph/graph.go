package graph

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGraph is returned when the adjacency arrays violate the CSR
// invariants (non-monotonic offsets, out-of-range edge target, negative
// or non-finite weight).
var ErrInvalidGraph = errors.New("invalid graph")

// Graph is a directed graph in CSR (Compressed Sparse Row) form. It is
// immutable after construction and safe to share across any number of
// concurrent readers.
type Graph struct {
	NumVertices uint32
	NumEdges    uint32
	FirstOut    []uint32  // len: NumVertices + 1; FirstOut[v]..FirstOut[v+1] are edges from vertex v
	Head        []uint32  // len: NumEdges; target vertex for each edge
	Weight      []float64 // len: NumEdges; non-negative edge weight

	// Optional vertex coordinates, present for graphs built from map data.
	// Either both are len NumVertices or both are nil.
	VertexLat []float64
	VertexLon []float64
}

// New validates the adjacency arrays and wraps them in a Graph.
// firstOut must carry one sentinel entry past the last vertex.
func New(firstOut, head []uint32, weight []float64) (*Graph, error) {
	if len(firstOut) == 0 {
		return nil, fmt.Errorf("empty offset array: %w", ErrInvalidGraph)
	}
	numVertices := uint32(len(firstOut) - 1)
	numEdges := uint32(len(head))

	if len(weight) != len(head) {
		return nil, fmt.Errorf("weight array len %d != edge array len %d: %w",
			len(weight), len(head), ErrInvalidGraph)
	}
	if firstOut[0] != 0 {
		return nil, fmt.Errorf("FirstOut[0] = %d, want 0: %w", firstOut[0], ErrInvalidGraph)
	}
	if firstOut[numVertices] != numEdges {
		return nil, fmt.Errorf("FirstOut sentinel = %d, want edge count %d: %w",
			firstOut[numVertices], numEdges, ErrInvalidGraph)
	}
	for v := uint32(0); v < numVertices; v++ {
		if firstOut[v] > firstOut[v+1] {
			return nil, fmt.Errorf("FirstOut not monotonic at vertex %d (%d > %d): %w",
				v, firstOut[v], firstOut[v+1], ErrInvalidGraph)
		}
	}
	for e, h := range head {
		if h >= numVertices {
			return nil, fmt.Errorf("edge %d: target %d out of range [0,%d): %w",
				e, h, numVertices, ErrInvalidGraph)
		}
	}
	for e, w := range weight {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("edge %d: weight %v not a non-negative finite value: %w",
				e, w, ErrInvalidGraph)
		}
	}

	return &Graph{
		NumVertices: numVertices,
		NumEdges:    numEdges,
		FirstOut:    firstOut,
		Head:        head,
		Weight:      weight,
	}, nil
}

// EdgesFrom returns the range of edge indices for edges originating from vertex u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// HasCoords reports whether per-vertex coordinates are attached.
func (g *Graph) HasCoords() bool {
	return g.VertexLat != nil
}

// SetCoords attaches per-vertex coordinate planes.
func (g *Graph) SetCoords(lat, lon []float64) error {
	if uint32(len(lat)) != g.NumVertices || uint32(len(lon)) != g.NumVertices {
		return fmt.Errorf("coordinate planes len %d/%d, want %d: %w",
			len(lat), len(lon), g.NumVertices, ErrInvalidGraph)
	}
	g.VertexLat = lat
	g.VertexLon = lon
	return nil
}
