package keydispatch

import (
	"fmt"

	"github.com/kellanburke/keydispatch/executor"
	"github.com/kellanburke/keydispatch/failurehook"
)

// SameThreadExecutor runs every submitted function synchronously on the
// calling goroutine instead of dispatching it elsewhere. Configuring a
// Distributor with it collapses per-key concurrency into in-order, single-
// threaded execution on whichever goroutine calls AddTask: useful for
// tests that need deterministic interleavings, or callers that want the
// keyed-FIFO ordering guarantee without any added concurrency.
//
// Grounded on the teacher pack's Tangerg-lynx/pkg/safe/safe.go Go/WithRecover
// helpers for the panic-recovery shape; unlike that package's fire-and-
// forget goroutine launch, Execute here runs fn inline, reports any
// recovered panic to the failure hook, and also returns it as an error.
type SameThreadExecutor struct{}

// NewSameThreadExecutor returns the C6 Same-Thread Submitter as an Executor.
func NewSameThreadExecutor() executor.Executor { return SameThreadExecutor{} }

// Execute runs fn on the calling goroutine. A panic inside fn is recovered,
// reported to failurehook.Handle, and returned as an error rather than
// propagated. (The Goroutine and Bounded executors report a task panic only
// to the failure hook; their Execute has already returned nil by then.)
func (SameThreadExecutor) Execute(fn func()) (err error) {
	if fn == nil {
		return executor.ErrNilTask
	}
	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("keydispatch: same-thread executor recovered panic: %v", r)
			failurehook.Handle(panicErr)
			err = panicErr
		}
	}()
	fn()
	return nil
}
