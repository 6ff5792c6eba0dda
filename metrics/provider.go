// Package metrics is the instrumentation surface the distributor (root
// package) reports through when a Provider is configured. It is intentionally
// minimal — a Provider vends named Counter/UpDownCounter/Histogram
// instruments — so any metrics backend can be adapted to it.
//
// Grounded on ygrebnov-workers/metrics (teacher pack): same three-instrument
// shape and the same Noop/Basic pairing, adapted with the concrete
// instrument names the distributor emits (see the constants
// below) in place of the teacher's general-purpose, name-agnostic surface.
package metrics

// Provider constructs instruments used to record metrics.
// Implementations must be safe for concurrent use.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records monotonic counts (e.g. tasks enqueued).
type Counter interface {
	Add(n int64)
}

// UpDownCounter records values that can move up or down (e.g. keys currently
// installed in the distributor's map).
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records distribution of float64 measurements (e.g. queue depth
// observed at dequeue time).
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig carries optional instrument metadata. It's advisory only.
type InstrumentConfig struct {
	Description string
	Unit        string
	// Attributes are static key-value pairs associated with the instrument
	// itself. Keep cardinality bounded; implementations may ignore them.
	Attributes map[string]string
}

// InstrumentOption mutates an InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets an advisory description for the instrument.
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets an advisory unit for the instrument (e.g. "1", "tasks").
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

// WithAttributes attaches static attributes to the instrument (bounded
// cardinality only).
func WithAttributes(attrs map[string]string) InstrumentOption {
	return func(c *InstrumentConfig) {
		if len(attrs) == 0 {
			return
		}
		if c.Attributes == nil {
			c.Attributes = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			c.Attributes[k] = v
		}
	}
}

// Instrument names reported by the root (distributor) package when a
// non-noop Provider is configured via the root package's WithMetrics Option.
const (
	// TasksEnqueued counts every AddTask/Submit call that successfully
	// enqueues (Counter).
	TasksEnqueued = "keydispatch_tasks_enqueued"
	// TasksCompleted counts every task a Key Worker finishes running,
	// success or failure (Counter).
	TasksCompleted = "keydispatch_tasks_completed"
	// KeysActive tracks the number of keys currently installed in the
	// distributor's key->worker map (UpDownCounter).
	KeysActive = "keydispatch_keys_active"
	// CycleYields counts how many times a Key Worker hit maxTasksPerCycle
	// and re-dispatched itself (Counter).
	CycleYields = "keydispatch_cycle_yields"
	// QueueDepth samples a key's FIFO length at the moment a batch is
	// dequeued (Histogram).
	QueueDepth = "keydispatch_queue_depth"
)
