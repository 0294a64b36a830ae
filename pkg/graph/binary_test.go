package graph_test

import (
	"os"
	"path/filepath"
	"testing"

	"batch_sssp/pkg/graph"
)

func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build(4, []graph.Edge{
		{From: 0, To: 1, Weight: 1.5},
		{From: 0, To: 2, Weight: 4.0},
		{From: 1, To: 2, Weight: 2.0},
		{From: 2, To: 3, Weight: 0.5},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestBinaryRoundTrip(t *testing.T) {
	original := buildTestGraph(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.graph.bin")

	if err := graph.WriteBinary(path, original); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	loaded, err := graph.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if loaded.NumVertices != original.NumVertices {
		t.Errorf("NumVertices: got %d, want %d", loaded.NumVertices, original.NumVertices)
	}
	if loaded.NumEdges != original.NumEdges {
		t.Errorf("NumEdges: got %d, want %d", loaded.NumEdges, original.NumEdges)
	}
	for i := range original.FirstOut {
		if loaded.FirstOut[i] != original.FirstOut[i] {
			t.Fatalf("FirstOut[%d]: got %d, want %d", i, loaded.FirstOut[i], original.FirstOut[i])
		}
	}
	for i := range original.Head {
		if loaded.Head[i] != original.Head[i] {
			t.Fatalf("Head[%d]: got %d, want %d", i, loaded.Head[i], original.Head[i])
		}
		if loaded.Weight[i] != original.Weight[i] {
			t.Fatalf("Weight[%d]: got %v, want %v", i, loaded.Weight[i], original.Weight[i])
		}
	}
	if loaded.HasCoords() {
		t.Error("loaded graph has coords, original had none")
	}
}

func TestBinaryRoundTripWithCoords(t *testing.T) {
	original := buildTestGraph(t)
	if err := original.SetCoords(
		[]float64{1.30, 1.31, 1.32, 1.33},
		[]float64{103.80, 103.81, 103.82, 103.83},
	); err != nil {
		t.Fatalf("SetCoords: %v", err)
	}

	path := filepath.Join(t.TempDir(), "coords.graph.bin")
	if err := graph.WriteBinary(path, original); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	loaded, err := graph.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	if !loaded.HasCoords() {
		t.Fatal("loaded graph lost its coords")
	}
	for i := range original.VertexLat {
		if loaded.VertexLat[i] != original.VertexLat[i] || loaded.VertexLon[i] != original.VertexLon[i] {
			t.Fatalf("coords[%d]: got (%v,%v), want (%v,%v)", i,
				loaded.VertexLat[i], loaded.VertexLon[i],
				original.VertexLat[i], original.VertexLon[i])
		}
	}
}

func TestBinaryDetectsCorruption(t *testing.T) {
	original := buildTestGraph(t)
	path := filepath.Join(t.TempDir(), "corrupt.graph.bin")
	if err := graph.WriteBinary(path, original); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// Flip a byte in the middle of the payload.
	data[len(data)/2] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := graph.ReadBinary(path); err == nil {
		t.Error("ReadBinary accepted a corrupted file")
	}
}

func TestBinaryRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.graph.bin")
	if err := os.WriteFile(path, []byte("NOTAGRAPHFILE_AT_ALL...."), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := graph.ReadBinary(path); err == nil {
		t.Error("ReadBinary accepted a file with bad magic")
	}
}
