package keydispatch

import (
	"github.com/kellanburke/keydispatch/executor"
	"github.com/kellanburke/keydispatch/metrics"
)

// Option configures a Distributor. Grounded on the teacher pack's
// options.go functional-options shape; unlike the teacher's pool-type
// selector (fixed vs dynamic worker count), options here configure the
// orthogonal concerns a keyed dispatcher actually varies: the backend
// executor, stripe count, drain batching, and instrumentation.
type Option func(*config)

// WithExecutor sets the backend executor every Key Worker dispatches itself
// onto. Default: executor.Goroutine().
func WithExecutor(e executor.Executor) Option {
	return func(c *config) { c.Executor = e }
}

// WithExpectedConcurrency sizes the Striped Lock. Default: 32.
func WithExpectedConcurrency(n uint) Option {
	return func(c *config) { c.ExpectedConcurrency = n }
}

// WithMaxTasksPerCycle bounds how many tasks a Key Worker drains per
// dispatch before yielding back to the executor. Default: 0 (unbounded).
func WithMaxTasksPerCycle(n uint) Option {
	return func(c *config) { c.MaxTasksPerCycle = n }
}

// WithMetrics installs a metrics.Provider. Default: metrics.NewNoopProvider().
func WithMetrics(p metrics.Provider) Option {
	return func(c *config) { c.Metrics = p }
}

// WithFailureHook additionally routes task failures and yield re-dispatch
// scheduling failures to fn, alongside the process-wide default in package
// failurehook. Listener panics are not routed to fn.
func WithFailureHook(fn func(error)) Option {
	return func(c *config) { c.FailureHook = fn }
}

func buildConfig(opts ...Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			return config{}, ErrInvalidArgument
		}
		opt(&cfg)
	}
	if err := validateConfig(&cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}
