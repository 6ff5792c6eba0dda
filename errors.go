// Package keydispatch multiplexes a backend executor so that tasks sharing
// a key run serially, in submission order, while tasks under different keys
// run concurrently. A Distributor owns one Key Worker per active key; each
// Key Worker drains its key's FIFO queue by dispatching itself onto the
// configured backend executor, never holding a dedicated goroutine of its
// own between batches.
//
// Grounded on the teacher pack's ygrebnov-workers, restructured from a
// one-shot batch-of-tasks worker pool into a long-lived, keyed dispatcher:
// the per-task panic recovery (worker.go), the functional-options
// construction style (options.go), and the Namespace-prefixed sentinel
// error style (errors.go) all carry over; the FIFO-per-key single-runner
// loop and the completable Future wrapper (see package future) do not have
// a direct teacher analogue and are grounded on the retrieval pack's
// Tangerg-lynx future/pool code instead (see future/future.go, executor/).
package keydispatch

import (
	"errors"
	"fmt"
)

// Namespace prefixes every sentinel error this package defines.
const Namespace = "keydispatch"

var (
	// ErrInvalidArgument is returned when a caller-supplied argument violates
	// a documented precondition (a nil task, a nil Option, or a nil executor
	// or metrics provider).
	ErrInvalidArgument = errors.New(Namespace + ": invalid argument")

	// ErrSchedulingFailed is returned when the backend executor rejects a
	// dispatch (e.g. a bounded pool is saturated and non-blocking, or a pool
	// has already been stopped).
	ErrSchedulingFailed = errors.New(Namespace + ": scheduling failed")

	// ErrShuttingDown is returned by AddTask/Submit once Shutdown has been
	// called; no further tasks are accepted.
	ErrShuttingDown = errors.New(Namespace + ": distributor is shutting down")
)

// SchedulingFailedError wraps the backend executor's rejection reason so
// callers can recover it via errors.As while still matching
// errors.Is(err, ErrSchedulingFailed).
type SchedulingFailedError struct {
	Inner error
}

func (e *SchedulingFailedError) Error() string {
	return fmt.Sprintf("%s: scheduling failed: %v", Namespace, e.Inner)
}

func (e *SchedulingFailedError) Unwrap() []error {
	return []error{ErrSchedulingFailed, e.Inner}
}
