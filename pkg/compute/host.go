package compute

import (
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"batch_sssp/pkg/graph"
)

// HostConfig configures the in-process backend.
type HostConfig struct {
	// Accelerators is the number of emulated accelerator devices. Each fans
	// phase work out over Lanes goroutines.
	Accelerators int

	// Processors is the number of emulated single-lane processor devices.
	Processors int

	// Lanes is the per-accelerator worker count. Zero means NumCPU.
	Lanes int
}

// HostBackend runs relaxation steps in-process. Its devices are emulated
// compute units: an accelerator device executes each phase across several
// goroutine lanes, a processor device runs single-lane. Besides serving as
// the CPU execution path, it lets the orchestrator and its tests exercise
// real multi-device fan-out without accelerator hardware.
type HostBackend struct {
	devices []DeviceInfo
	lanes   map[string]int
}

// NewHostBackend builds a host backend with the given emulated device set.
// A zero config yields one accelerator with NumCPU lanes.
func NewHostBackend(cfg HostConfig) *HostBackend {
	if cfg.Accelerators <= 0 && cfg.Processors <= 0 {
		cfg.Accelerators = 1
	}
	if cfg.Lanes <= 0 {
		cfg.Lanes = runtime.NumCPU()
	}

	b := &HostBackend{lanes: make(map[string]int)}
	for i := 0; i < cfg.Accelerators; i++ {
		info := DeviceInfo{
			ID:         fmt.Sprintf("host-acc-%d", i),
			Name:       fmt.Sprintf("host accelerator %d (%d lanes)", i, cfg.Lanes),
			Kind:       Accelerator,
			Throughput: float64(cfg.Lanes),
		}
		b.devices = append(b.devices, info)
		b.lanes[info.ID] = cfg.Lanes
	}
	for i := 0; i < cfg.Processors; i++ {
		info := DeviceInfo{
			ID:         fmt.Sprintf("host-cpu-%d", i),
			Name:       fmt.Sprintf("host processor %d", i),
			Kind:       Processor,
			Throughput: 1,
		}
		b.devices = append(b.devices, info)
		b.lanes[info.ID] = 1
	}
	return b
}

// Devices implements Backend.
func (b *HostBackend) Devices() []DeviceInfo {
	out := make([]DeviceInfo, len(b.devices))
	copy(out, b.devices)
	return out
}

// Open implements Backend.
func (b *HostBackend) Open(info DeviceInfo, g *graph.Graph) (Queue, error) {
	lanes, ok := b.lanes[info.ID]
	if !ok {
		return nil, fmt.Errorf("open %q: unknown device: %w", info.ID, ErrBackend)
	}
	if g == nil {
		return nil, fmt.Errorf("open %q: nil graph: %w", info.ID, ErrBackend)
	}
	n := int(g.NumVertices)
	return &hostQueue{
		g:     g,
		lanes: lanes,
		cost:  make([]float64, n),
		// Staging costs live as float bits so scan lanes can combine
		// concurrent proposals with an atomic minimum. For non-negative
		// floats the bit patterns order the same way the values do.
		staged: make([]uint64, n),
		mask:   make([]bool, n),
	}, nil
}

type hostQueue struct {
	g      *graph.Graph
	lanes  int
	cost   []float64
	staged []uint64
	mask   []bool
	closed bool
}

var infBits = math.Float64bits(math.Inf(1))

func (q *hostQueue) Initialize(source uint32) error {
	if q.closed {
		return fmt.Errorf("initialize: queue closed: %w", ErrBackend)
	}
	if source >= q.g.NumVertices {
		return fmt.Errorf("initialize: source %d out of range [0,%d): %w",
			source, q.g.NumVertices, ErrBackend)
	}
	for v := range q.cost {
		q.cost[v] = math.Inf(1)
		q.staged[v] = infBits
		q.mask[v] = false
	}
	q.cost[source] = 0
	q.staged[source] = 0 // Float64bits(0) == 0
	q.mask[source] = true
	return nil
}

func (q *hostQueue) Scan() error {
	if q.closed {
		return fmt.Errorf("scan: queue closed: %w", ErrBackend)
	}
	return q.dispatch(func(lo, hi uint32) {
		for tid := lo; tid < hi; tid++ {
			if !q.mask[tid] {
				continue
			}
			q.mask[tid] = false
			cost := q.cost[tid]
			start, end := q.g.EdgesFrom(tid)
			for e := start; e < end; e++ {
				nid := q.g.Head[e]
				atomicMinFloat(&q.staged[nid], cost+q.g.Weight[e])
			}
		}
	})
}

func (q *hostQueue) Commit() error {
	if q.closed {
		return fmt.Errorf("commit: queue closed: %w", ErrBackend)
	}
	return q.dispatch(func(lo, hi uint32) {
		for tid := lo; tid < hi; tid++ {
			// The scan barrier has passed; staged[tid] is only touched by
			// this lane now, so a plain load is fine.
			staged := math.Float64frombits(q.staged[tid])
			if q.cost[tid] > staged {
				q.cost[tid] = staged
				q.mask[tid] = true
			}
			q.staged[tid] = math.Float64bits(q.cost[tid])
		}
	})
}

func (q *hostQueue) ReadFrontier(dst []bool) error {
	if q.closed {
		return fmt.Errorf("read frontier: queue closed: %w", ErrBackend)
	}
	if len(dst) != len(q.mask) {
		return fmt.Errorf("read frontier: dst len %d, want %d: %w",
			len(dst), len(q.mask), ErrBackend)
	}
	copy(dst, q.mask)
	return nil
}

func (q *hostQueue) ReadCosts(dst []float64) error {
	if q.closed {
		return fmt.Errorf("read costs: queue closed: %w", ErrBackend)
	}
	if len(dst) != len(q.cost) {
		return fmt.Errorf("read costs: dst len %d, want %d: %w",
			len(dst), len(q.cost), ErrBackend)
	}
	copy(dst, q.cost)
	return nil
}

func (q *hostQueue) Close() error {
	q.closed = true
	q.cost = nil
	q.staged = nil
	q.mask = nil
	return nil
}

// dispatch splits the vertex range across the queue's lanes and blocks until
// every lane finishes, giving the caller a full phase barrier.
func (q *hostQueue) dispatch(phase func(lo, hi uint32)) error {
	n := q.g.NumVertices
	lanes := uint32(q.lanes)
	if lanes <= 1 || n < lanes {
		phase(0, n)
		return nil
	}

	var eg errgroup.Group
	chunk := (n + lanes - 1) / lanes
	for lo := uint32(0); lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		lo, hi := lo, hi
		eg.Go(func() error {
			phase(lo, hi)
			return nil
		})
	}
	return eg.Wait()
}

// atomicMinFloat lowers *addr to val if val is smaller. addr holds float
// bits; both values must be non-negative, where bit order matches numeric
// order.
func atomicMinFloat(addr *uint64, val float64) {
	newBits := math.Float64bits(val)
	for {
		old := atomic.LoadUint64(addr)
		if old <= newBits {
			return
		}
		if atomic.CompareAndSwapUint64(addr, old, newBits) {
			return
		}
	}
}
