package executor

import (
	"fmt"
	"runtime/debug"

	"github.com/kellanburke/keydispatch/failurehook"
)

// goroutinePanicError captures a panic recovered from a task running on a
// Goroutine or Bounded executor, mirroring the amount of detail the teacher's
// panic-recovery paths keep (timestamp is intentionally omitted — the hook
// decides how to present it; we only carry the payload and stack).
type goroutinePanicError struct {
	info  any
	stack []byte
}

func (e *goroutinePanicError) Error() string {
	return fmt.Sprintf("executor: task panicked: %v\n%s", e.info, e.stack)
}

func runRecovered(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			failurehook.Handle(&goroutinePanicError{info: r, stack: debug.Stack()})
		}
	}()
	fn()
}

// Goroutine returns an Executor that launches one goroutine per task with no
// concurrency limit. Panics inside the task are recovered and routed to the
// failure hook rather than crashing the process.
//
// This is the unbounded baseline, grounded on the teacher pack's
// goroutine-per-task pool adapters (PoolOfGoroutines / PoolOfNoPool).
func Goroutine() Executor {
	return Func(func(fn func()) error {
		go runRecovered(fn)
		return nil
	})
}
