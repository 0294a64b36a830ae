package graph

import (
	"errors"
	"testing"
)

func TestBuildSimpleGraph(t *testing.T) {
	// Triangle: 0 -> 1 -> 2 -> 0, given out of source order.
	edges := []Edge{
		{From: 2, To: 0, Weight: 3.0},
		{From: 0, To: 1, Weight: 1.0},
		{From: 1, To: 2, Weight: 2.0},
	}

	g, err := Build(3, edges)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if g.NumVertices != 3 {
		t.Fatalf("NumVertices = %d, want 3", g.NumVertices)
	}
	if g.NumEdges != 3 {
		t.Fatalf("NumEdges = %d, want 3", g.NumEdges)
	}

	// Every vertex has exactly one outgoing edge after sorting by source.
	wantHead := []uint32{1, 2, 0}
	wantWeight := []float64{1.0, 2.0, 3.0}
	for v := uint32(0); v < 3; v++ {
		start, end := g.EdgesFrom(v)
		if end-start != 1 {
			t.Fatalf("vertex %d has %d edges, want 1", v, end-start)
		}
		if g.Head[start] != wantHead[v] {
			t.Errorf("Head[%d] = %d, want %d", start, g.Head[start], wantHead[v])
		}
		if g.Weight[start] != wantWeight[v] {
			t.Errorf("Weight[%d] = %v, want %v", start, g.Weight[start], wantWeight[v])
		}
	}
}

func TestBuildIsolatedVertices(t *testing.T) {
	// Vertex 3 and 4 have no edges at all.
	g, err := Build(5, []Edge{{From: 0, To: 4, Weight: 1}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for v := uint32(1); v < 5; v++ {
		if start, end := g.EdgesFrom(v); start != end {
			t.Errorf("vertex %d has edges [%d,%d), want none", v, start, end)
		}
	}
}

func TestBuildEmptyGraph(t *testing.T) {
	g, err := Build(0, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NumVertices != 0 || g.NumEdges != 0 {
		t.Errorf("got %d vertices / %d edges, want empty", g.NumVertices, g.NumEdges)
	}
}

func TestBuildRejectsBadSource(t *testing.T) {
	_, err := Build(2, []Edge{{From: 2, To: 0, Weight: 1}})
	if !errors.Is(err, ErrInvalidGraph) {
		t.Errorf("Build with out-of-range source: error = %v, want ErrInvalidGraph", err)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	edges := []Edge{
		{From: 1, To: 0, Weight: 2},
		{From: 0, To: 1, Weight: 1},
	}
	if _, err := Build(2, edges); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if edges[0].From != 1 {
		t.Error("Build reordered the caller's edge slice")
	}
}
