package solver

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"batch_sssp/pkg/compute"
	"batch_sssp/pkg/graph"
)

// Options tunes an Orchestrator.
type Options struct {
	// Weights holds one relative-throughput weight per device, in device
	// order. Nil means: use each device's Throughput hint, treating an
	// unknown (zero) hint as 1.
	Weights []float64

	// MaxRounds caps the relax loop per query; zero picks NumVertices+1.
	MaxRounds int
}

// Orchestrator splits a batch of independent SSSP queries across a set of
// devices and runs one session per device concurrently. Sessions write into
// disjoint slices of the shared result buffer, so the join is the only
// synchronization the output needs.
type Orchestrator struct {
	backend compute.Backend
	devices []compute.DeviceInfo
	opts    Options
}

// NewOrchestrator builds an orchestrator over the given device set.
func NewOrchestrator(backend compute.Backend, devices []compute.DeviceInfo, opts Options) *Orchestrator {
	return &Orchestrator{backend: backend, devices: devices, opts: opts}
}

// Solve runs the whole batch, writing the distances for query i into
// outCosts[i*NumVertices : (i+1)*NumVertices].
//
// Every worker runs to completion even when a sibling fails; errors are
// reported only after the join, as a *SolveError that names the invalid
// result regions, so a caller may still use the completed slices.
func (o *Orchestrator) Solve(ctx context.Context, g *graph.Graph, sources []uint32, outCosts []float64) error {
	if len(o.devices) == 0 {
		return ErrNoDevices
	}
	n := int(g.NumVertices)
	if len(outCosts) < len(sources)*n {
		return fmt.Errorf("result buffer len %d, need %d", len(outCosts), len(sources)*n)
	}

	weights, err := o.deviceWeights()
	if err != nil {
		return err
	}
	parts := partition(len(sources), weights)

	var (
		mu       sync.Mutex
		solveErr SolveError
	)

	// Deliberately not errgroup.WithContext: a sibling's failure must not
	// cancel workers that can still complete their slices.
	var eg errgroup.Group
	for d, part := range parts {
		if part.count == 0 {
			continue
		}
		device := o.devices[d]
		first, count := part.first, part.count

		eg.Go(func() error {
			sess, err := NewSession(o.backend, device, g, o.opts.MaxRounds)
			if err != nil {
				mu.Lock()
				solveErr.Devices = append(solveErr.Devices, &DeviceError{
					Device: device.ID, First: first, Count: count, Err: err,
				})
				mu.Unlock()
				return nil
			}
			defer sess.Close()

			failed, err := sess.Run(ctx, first,
				sources[first:first+count],
				outCosts[first*n:(first+count)*n])

			mu.Lock()
			solveErr.Queries = append(solveErr.Queries, failed...)
			if err != nil {
				solveErr.Devices = append(solveErr.Devices, &DeviceError{
					Device: device.ID, First: first, Count: count, Err: err,
				})
			}
			mu.Unlock()
			return nil
		})
	}
	eg.Wait()

	if len(solveErr.Devices) > 0 || len(solveErr.Queries) > 0 {
		return &solveErr
	}
	return nil
}

// deviceWeights resolves the effective per-device weights.
func (o *Orchestrator) deviceWeights() ([]float64, error) {
	if o.opts.Weights != nil {
		if len(o.opts.Weights) != len(o.devices) {
			return nil, fmt.Errorf("got %d weights for %d devices", len(o.opts.Weights), len(o.devices))
		}
		for i, w := range o.opts.Weights {
			if w <= 0 {
				return nil, fmt.Errorf("weight[%d] = %v, must be positive", i, w)
			}
		}
		return o.opts.Weights, nil
	}

	weights := make([]float64, len(o.devices))
	for i, d := range o.devices {
		weights[i] = d.Throughput
		if weights[i] <= 0 {
			weights[i] = 1
		}
	}
	return weights, nil
}

// span is one device's contiguous share of the query batch.
type span struct {
	first int
	count int
}

// partition splits numResults queries proportionally to the weights using
// floor shares; the integer-division remainder goes entirely to the last
// device. Shares are contiguous, disjoint, and sum to numResults.
func partition(numResults int, weights []float64) []span {
	var total float64
	for _, w := range weights {
		total += w
	}

	parts := make([]span, len(weights))
	offset := 0
	for i, w := range weights {
		share := int(float64(numResults) * w / total)
		parts[i] = span{first: offset, count: share}
		offset += share
	}
	// Remainder to the last device.
	if offset < numResults {
		parts[len(parts)-1].count += numResults - offset
	}
	return parts
}
