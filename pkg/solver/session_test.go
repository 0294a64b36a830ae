package solver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"batch_sssp/pkg/compute"
	"batch_sssp/pkg/graph"
)

func mustBuild(t *testing.T, numVertices uint32, edges []graph.Edge) *graph.Graph {
	t.Helper()
	g, err := graph.Build(numVertices, edges)
	require.NoError(t, err)
	return g
}

func newTestSession(t *testing.T, g *graph.Graph, maxRounds int) *Session {
	t.Helper()
	b := compute.NewHostBackend(compute.HostConfig{Accelerators: 1, Lanes: 4})
	sess, err := NewSession(b, b.Devices()[0], g, maxRounds)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return sess
}

func TestSessionLinearChain(t *testing.T) {
	g := mustBuild(t, 3, []graph.Edge{
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 2, Weight: 2},
	})
	sess := newTestSession(t, g, 0)

	out := make([]float64, 3)
	failed, err := sess.Run(context.Background(), 0, []uint32{0}, out)
	require.NoError(t, err)
	require.Empty(t, failed)
	require.Equal(t, []float64{0, 1, 3}, out)
}

func TestSessionSingleVertex(t *testing.T) {
	g := mustBuild(t, 1, nil)
	sess := newTestSession(t, g, 0)

	out := make([]float64, 1)
	failed, err := sess.Run(context.Background(), 0, []uint32{0}, out)
	require.NoError(t, err)
	require.Empty(t, failed)
	require.Equal(t, []float64{0.0}, out)
}

func TestSessionDisconnectedPair(t *testing.T) {
	g := mustBuild(t, 2, nil)
	sess := newTestSession(t, g, 0)

	out := make([]float64, 2)
	failed, err := sess.Run(context.Background(), 0, []uint32{0}, out)
	require.NoError(t, err)
	require.Empty(t, failed)
	require.Equal(t, 0.0, out[0])
	require.True(t, math.IsInf(out[1], 1), "unreachable vertex must stay +Inf")
}

func TestSessionMultiQueryBatch(t *testing.T) {
	// 0 <-> 1 <-> 2 bidirectional chain.
	g := mustBuild(t, 3, []graph.Edge{
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 0, Weight: 1},
		{From: 1, To: 2, Weight: 2},
		{From: 2, To: 1, Weight: 2},
	})
	sess := newTestSession(t, g, 0)

	out := make([]float64, 2*3)
	failed, err := sess.Run(context.Background(), 0, []uint32{0, 2}, out)
	require.NoError(t, err)
	require.Empty(t, failed)
	require.Equal(t, []float64{0, 1, 3}, out[0:3])
	require.Equal(t, []float64{3, 2, 0}, out[3:6])
}

func TestSessionInvalidQueryFailsOnlyThatQuery(t *testing.T) {
	g := mustBuild(t, 2, []graph.Edge{{From: 0, To: 1, Weight: 5}})
	sess := newTestSession(t, g, 0)

	out := make([]float64, 3*2)
	failed, err := sess.Run(context.Background(), 10, []uint32{0, 99, 1}, out)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.ErrorIs(t, failed[0], ErrInvalidQuery)
	require.Equal(t, 11, failed[0].Query, "failure labeled with the batch-global index")

	// Sibling queries still produced valid slices.
	require.Equal(t, []float64{0, 5}, out[0:2])
	require.True(t, math.IsInf(out[4], 1))
	require.Equal(t, 0.0, out[5])
}

func TestSessionRoundCap(t *testing.T) {
	// A 5-hop chain needs 5 effective rounds; a cap of 2 must trip.
	g := mustBuild(t, 6, []graph.Edge{
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 2, Weight: 1},
		{From: 2, To: 3, Weight: 1},
		{From: 3, To: 4, Weight: 1},
		{From: 4, To: 5, Weight: 1},
	})
	sess := newTestSession(t, g, 2)

	out := make([]float64, 6)
	failed, err := sess.Run(context.Background(), 0, []uint32{0}, out)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.ErrorIs(t, failed[0], ErrConvergence)
}

func TestSessionContextCancellation(t *testing.T) {
	g := mustBuild(t, 4, []graph.Edge{
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 2, Weight: 1},
		{From: 2, To: 3, Weight: 1},
	})
	sess := newTestSession(t, g, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make([]float64, 4)
	_, err := sess.Run(ctx, 0, []uint32{0}, out)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSessionShortResultBuffer(t *testing.T) {
	g := mustBuild(t, 3, nil)
	sess := newTestSession(t, g, 0)

	_, err := sess.Run(context.Background(), 0, []uint32{0, 1}, make([]float64, 5))
	require.Error(t, err)
}
