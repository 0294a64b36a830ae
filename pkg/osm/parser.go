// Package osm loads road networks from OpenStreetMap PBF extracts and turns
// them into solver-ready graphs: directed edges weighted by great-circle
// meters, vertex IDs compacted to dense indices, coordinates kept for
// vertex lookup.
package osm

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"batch_sssp/pkg/geo"
)

// RawEdge is a directed road segment parsed from OSM data, still keyed by
// OSM node IDs.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Weight     float64 // meters
}

// ParseResult holds the parsed road network.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// drivable lists highway tag values accessible by car.
var drivable = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// wayDirections decides whether a way contributes forward and/or backward
// edges. (false, false) means the way is skipped entirely.
func wayDirections(tags osm.Tags) (forward, backward bool) {
	hw := tags.Find("highway")
	if !drivable[hw] {
		return false, false
	}
	if tags.Find("area") == "yes" { // pedestrian plazas tagged as highways
		return false, false
	}
	if access := tags.Find("access"); access == "no" || access == "private" {
		return false, false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false, false
	}

	forward, backward = true, true
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible": // time-dependent, skip
		forward, backward = false, false
	}
	return forward, backward
}

// BBox is a geographic bounding box filter. A zero value disables filtering.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures Parse.
type ParseOptions struct {
	BBox BBox // if non-zero, keep only edges with both endpoints inside
}

type parsedWay struct {
	nodeIDs  []osm.NodeID
	forward  bool
	backward bool
}

// Parse reads an OSM PBF extract and returns the drivable road network as
// directed edges. The reader is consumed twice (ways, then nodes), so it
// must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()

	// Pass 1: collect drivable ways and the node IDs they reference.
	referenced := make(map[osm.NodeID]struct{})
	var ways []parsedWay

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 {
			continue
		}
		fwd, bwd := wayDirections(w.Tags)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, parsedWay{nodeIDs: nodeIDs, forward: fwd, backward: bwd})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referenced))

	// Pass 2: collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referenced))
	nodeLon := make(map[osm.NodeID]float64, len(referenced))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 2 complete: %d node coordinates collected", len(nodeLat))

	// Expand ways into weighted directed edges.
	var edges []RawEdge
	var skipped, filtered int

	for _, w := range ways {
		for i := 0; i < len(w.nodeIDs)-1; i++ {
			fromID, toID := w.nodeIDs[i], w.nodeIDs[i+1]

			fromLat, fromOk := nodeLat[fromID]
			toLat, toOk := nodeLat[toID]
			if !fromOk || !toOk {
				skipped++
				continue
			}
			fromLon, toLon := nodeLon[fromID], nodeLon[toID]

			if useBBox && (!opt.BBox.Contains(fromLat, fromLon) || !opt.BBox.Contains(toLat, toLon)) {
				filtered++
				continue
			}

			meters := geo.Haversine(fromLat, fromLon, toLat, toLon)
			if meters == 0 {
				meters = 0.001 // duplicate nodes; keep the edge traversable
			}

			if w.forward {
				edges = append(edges, RawEdge{FromNodeID: fromID, ToNodeID: toID, Weight: meters})
			}
			if w.backward {
				edges = append(edges, RawEdge{FromNodeID: toID, ToNodeID: fromID, Weight: meters})
			}
		}
	}

	if skipped > 0 {
		log.Printf("Warning: skipped %d edges due to missing node coordinates", skipped)
	}
	if filtered > 0 {
		log.Printf("Filtered %d edges outside bounding box", filtered)
	}
	log.Printf("Built %d directed edges", len(edges))

	return &ParseResult{Edges: edges, NodeLat: nodeLat, NodeLon: nodeLon}, nil
}
