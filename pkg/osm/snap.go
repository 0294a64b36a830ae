package osm

import (
	"errors"

	"github.com/tidwall/rtree"

	"batch_sssp/pkg/geo"
	"batch_sssp/pkg/graph"
)

const maxSnapDistMeters = 500.0

// ErrPointTooFar is returned when the query point is too far from any vertex.
var ErrPointTooFar = errors.New("point too far from road network")

// ErrNoCoords is returned when the graph carries no vertex coordinates.
var ErrNoCoords = errors.New("graph has no vertex coordinates")

// nearbyCandidates bounds the R-tree scan per lookup. Box distance in
// degrees is not quite metric distance, so a few candidates are refined
// with haversine before picking the winner.
const nearbyCandidates = 8

// VertexIndex finds the graph vertex nearest to a coordinate, so driver
// queries can name sources by lat/lon instead of vertex index.
type VertexIndex struct {
	tr rtree.RTreeG[uint32]
	g  *graph.Graph
}

// NewVertexIndex builds an R-tree over the graph's vertex coordinates.
func NewVertexIndex(g *graph.Graph) (*VertexIndex, error) {
	if !g.HasCoords() {
		return nil, ErrNoCoords
	}
	idx := &VertexIndex{g: g}
	for v := uint32(0); v < g.NumVertices; v++ {
		p := [2]float64{g.VertexLon[v], g.VertexLat[v]}
		idx.tr.Insert(p, p, v)
	}
	return idx, nil
}

// Nearest returns the vertex closest to the given point, or ErrPointTooFar
// if nothing lies within the snap radius.
func (idx *VertexIndex) Nearest(lat, lon float64) (uint32, error) {
	point := [2]float64{lon, lat}

	bestDist := maxSnapDistMeters + 1
	var best uint32
	found := false

	count := 0
	idx.tr.Nearby(
		rtree.BoxDist[float64, uint32](point, point, nil),
		func(min, max [2]float64, v uint32, dist float64) bool {
			meters := geo.Haversine(lat, lon, idx.g.VertexLat[v], idx.g.VertexLon[v])
			if meters < bestDist {
				bestDist = meters
				best = v
				found = true
			}
			count++
			return count < nearbyCandidates
		},
	)

	if !found || bestDist > maxSnapDistMeters {
		return 0, ErrPointTooFar
	}
	return best, nil
}
