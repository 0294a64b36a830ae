package osm

import (
	"sort"

	"github.com/paulmach/osm"

	"batch_sssp/pkg/graph"
)

// BuildGraph compacts the OSM node IDs of a parse result into dense vertex
// indices and builds the CSR graph, with coordinates attached for vertex
// lookup. Vertex order follows ascending OSM node ID so the same input
// always yields the same graph.
func BuildGraph(result *ParseResult) (*graph.Graph, error) {
	// Collect the distinct node IDs actually used by edges.
	used := make(map[osm.NodeID]struct{}, len(result.Edges)*2)
	for _, e := range result.Edges {
		used[e.FromNodeID] = struct{}{}
		used[e.ToNodeID] = struct{}{}
	}

	ids := make([]osm.NodeID, 0, len(used))
	for id := range used {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	index := make(map[osm.NodeID]uint32, len(ids))
	for i, id := range ids {
		index[id] = uint32(i)
	}

	edges := make([]graph.Edge, len(result.Edges))
	for i, e := range result.Edges {
		edges[i] = graph.Edge{
			From:   index[e.FromNodeID],
			To:     index[e.ToNodeID],
			Weight: e.Weight,
		}
	}

	g, err := graph.Build(uint32(len(ids)), edges)
	if err != nil {
		return nil, err
	}

	lat := make([]float64, len(ids))
	lon := make([]float64, len(ids))
	for i, id := range ids {
		lat[i] = result.NodeLat[id]
		lon[i] = result.NodeLon[id]
	}
	if err := g.SetCoords(lat, lon); err != nil {
		return nil, err
	}
	return g, nil
}
