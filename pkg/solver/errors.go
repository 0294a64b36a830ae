package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevices is returned when Solve is invoked with an empty device set.
	ErrNoDevices = errors.New("no compute devices available")

	// ErrInvalidQuery marks a source vertex outside the graph's vertex range.
	ErrInvalidQuery = errors.New("source vertex out of range")

	// ErrConvergence marks a relax loop that exceeded its round cap, which
	// under valid input (non-negative weights) cannot happen.
	ErrConvergence = errors.New("relaxation did not converge within round cap")
)

// QueryError reports the failure of one query; the rest of the batch is
// unaffected and its result slices stay valid.
type QueryError struct {
	Query  int    // index into the original batch
	Source uint32 // the query's source vertex
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %d (source %d): %v", e.Query, e.Source, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// DeviceError reports a fatal backend fault on one device. Every query in
// the device's assigned sub-batch is invalid.
type DeviceError struct {
	Device string // device ID
	First  int    // first query index of the assigned sub-batch
	Count  int    // sub-batch length
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s (queries %d..%d): %v",
		e.Device, e.First, e.First+e.Count-1, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// SolveError aggregates everything that went wrong across a batch. Result
// slices not covered by Devices or Queries hold valid distances, so a caller
// may still use partial results.
type SolveError struct {
	Devices []*DeviceError
	Queries []*QueryError
}

func (e *SolveError) Error() string {
	failed := len(e.Queries)
	for _, d := range e.Devices {
		failed += d.Count
	}
	return fmt.Sprintf("%d queries failed (%d device faults, %d query faults)",
		failed, len(e.Devices), len(e.Queries))
}

// Unwrap exposes the individual failures to errors.Is / errors.As.
func (e *SolveError) Unwrap() []error {
	out := make([]error, 0, len(e.Devices)+len(e.Queries))
	for _, d := range e.Devices {
		out = append(out, d)
	}
	for _, q := range e.Queries {
		out = append(out, q)
	}
	return out
}

// FailedQueries counts queries without a valid result.
func (e *SolveError) FailedQueries() int {
	n := len(e.Queries)
	for _, d := range e.Devices {
		n += d.Count
	}
	return n
}
