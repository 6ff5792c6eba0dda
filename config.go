package keydispatch

import (
	"github.com/kellanburke/keydispatch/executor"
	"github.com/kellanburke/keydispatch/metrics"
)

// config holds Distributor tuning, applied by options and validated before
// a Distributor is constructed.
type config struct {
	// MaxTasksPerCycle bounds how many queued tasks a Key Worker drains in
	// one dispatch onto the backend executor before yielding by
	// re-dispatching itself. Zero means unbounded (drain until the queue is
	// empty).
	// Default: 0 (unbounded)
	MaxTasksPerCycle uint

	// ExpectedConcurrency sizes the Striped Lock: the stripe count is
	// rounded up from this to the next power of two. Higher values reduce
	// lock contention between unrelated keys at the cost of more mutexes.
	// Default: 32
	ExpectedConcurrency uint

	// Executor is the backend executor every Key Worker dispatches itself
	// onto.
	// Default: executor.Goroutine() (unbounded, one goroutine per dispatch)
	Executor executor.Executor

	// Metrics receives instrumentation for task throughput and queue depth.
	// Default: metrics.NewNoopProvider()
	Metrics metrics.Provider

	// FailureHook additionally receives task failures (returned errors and
	// recovered panics) and scheduling failures on a yield re-dispatch,
	// alongside the process default installed via failurehook.Set. Listener
	// panics go only to failurehook.Handle, not to this hook. Nil disables
	// the extra sink.
	FailureHook func(error)
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		MaxTasksPerCycle:    0,
		ExpectedConcurrency: 32,
		Executor:            executor.Goroutine(),
		Metrics:             metrics.NewNoopProvider(),
		FailureHook:         nil,
	}
}

// validateConfig performs lightweight precondition checks.
func validateConfig(cfg *config) error {
	if cfg.Executor == nil || cfg.Metrics == nil {
		return ErrInvalidArgument
	}
	return nil
}
