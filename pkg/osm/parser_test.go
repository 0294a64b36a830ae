package osm

import (
	"testing"

	"github.com/paulmach/osm"
)

func TestWayDirections(t *testing.T) {
	tests := []struct {
		name     string
		tags     osm.Tags
		forward  bool
		backward bool
	}{
		{
			name:     "residential road",
			tags:     osm.Tags{{Key: "highway", Value: "residential"}},
			forward:  true,
			backward: true,
		},
		{
			name:     "motorway implies oneway",
			tags:     osm.Tags{{Key: "highway", Value: "motorway"}},
			forward:  true,
			backward: false,
		},
		{
			name: "roundabout implies oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "junction", Value: "roundabout"},
			},
			forward:  true,
			backward: false,
		},
		{
			name: "explicit oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "oneway", Value: "yes"},
			},
			forward:  true,
			backward: false,
		},
		{
			name: "reverse oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "oneway", Value: "-1"},
			},
			forward:  false,
			backward: true,
		},
		{
			name: "oneway=no on motorway re-enables backward",
			tags: osm.Tags{
				{Key: "highway", Value: "motorway"},
				{Key: "oneway", Value: "no"},
			},
			forward:  true,
			backward: true,
		},
		{
			name: "reversible skipped",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "oneway", Value: "reversible"},
			},
			forward:  false,
			backward: false,
		},
		{
			name:     "footway not drivable",
			tags:     osm.Tags{{Key: "highway", Value: "footway"}},
			forward:  false,
			backward: false,
		},
		{
			name: "private access",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "private"},
			},
			forward:  false,
			backward: false,
		},
		{
			name: "motor_vehicle=no",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "motor_vehicle", Value: "no"},
			},
			forward:  false,
			backward: false,
		},
		{
			name: "area highway",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "area", Value: "yes"},
			},
			forward:  false,
			backward: false,
		},
		{
			name:     "no highway tag",
			tags:     osm.Tags{{Key: "building", Value: "yes"}},
			forward:  false,
			backward: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, bwd := wayDirections(tt.tags)
			if fwd != tt.forward || bwd != tt.backward {
				t.Errorf("wayDirections() = (%v,%v), want (%v,%v)",
					fwd, bwd, tt.forward, tt.backward)
			}
		})
	}
}

func TestBBox(t *testing.T) {
	b := BBox{MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1}
	if b.IsZero() {
		t.Error("non-zero bbox reported as zero")
	}
	if !b.Contains(1.3, 103.8) {
		t.Error("point inside bbox reported outside")
	}
	if b.Contains(2.0, 103.8) {
		t.Error("point outside bbox reported inside")
	}
	if !(BBox{}).IsZero() {
		t.Error("zero bbox not reported as zero")
	}
}
