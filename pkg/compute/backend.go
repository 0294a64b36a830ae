// Package compute abstracts the device runtime used by the relaxation
// engine. A Backend enumerates devices and opens per-device queues; a Queue
// holds the resident graph plus the per-query relaxation buffers and
// executes the initialize/scan/commit steps of one round. The relaxation
// protocol itself lives in pkg/solver and never talks to a device directly.
package compute

import (
	"errors"

	"batch_sssp/pkg/graph"
)

// ErrBackend is the root of every device/runtime fault: buffer allocation,
// program load, step execution. Callers match it with errors.Is.
var ErrBackend = errors.New("compute backend failure")

// Kind classifies a device for work-splitting policy.
type Kind int

const (
	Accelerator Kind = iota
	Processor
)

func (k Kind) String() string {
	switch k {
	case Accelerator:
		return "accelerator"
	case Processor:
		return "processor"
	default:
		return "unknown"
	}
}

// DeviceInfo describes one enumerable compute device.
type DeviceInfo struct {
	ID   string
	Name string
	Kind Kind

	// Throughput is a relative queries-per-second hint used for workload
	// weighting. Zero means unknown; the caller treats it as 1.
	Throughput float64
}

// Backend enumerates devices and opens queues on them.
type Backend interface {
	// Devices lists every device the backend can run on, in a stable order.
	Devices() []DeviceInfo

	// Open binds a queue to the device with the graph resident. The queue
	// owns the device-side relaxation buffers until Close.
	Open(info DeviceInfo, g *graph.Graph) (Queue, error)
}

// Queue is a command stream bound to one device. Methods block until the
// dispatched step has fully completed on the device, which gives the caller
// the per-round global barrier: no commit work starts until Scan returns,
// and no next-round scan starts until Commit returns.
//
// A Queue runs one query at a time; Initialize resets all per-query state.
type Queue interface {
	// Initialize resets the relaxation state for a new query: the frontier
	// holds only source, cost[source] = 0, every other cost = +Inf.
	Initialize(source uint32) error

	// Scan runs the first phase of a round: every frontier vertex leaves
	// the frontier and proposes cost[v]+w to the staging cost of each
	// out-neighbor, combining concurrent proposals by minimum.
	Scan() error

	// Commit runs the second phase: every vertex whose staging cost beat
	// its cost adopts it and re-enters the frontier; staging costs are
	// then resynchronized to the committed costs.
	Commit() error

	// ReadFrontier copies the frontier mask back to host memory.
	// dst must have length NumVertices.
	ReadFrontier(dst []bool) error

	// ReadCosts copies the cost array back to host memory.
	// dst must have length NumVertices.
	ReadCosts(dst []float64) error

	// Close releases the device-side buffers.
	Close() error
}
