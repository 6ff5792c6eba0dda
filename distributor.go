package keydispatch

import (
	"context"
	"sync"

	"github.com/kellanburke/keydispatch/executor"
	"github.com/kellanburke/keydispatch/failurehook"
	"github.com/kellanburke/keydispatch/future"
	"github.com/kellanburke/keydispatch/metrics"
)

// Distributor multiplexes a backend executor so tasks sharing a key run
// serially, in submission order, while tasks under different keys run
// concurrently. It owns one keyWorker per currently-active key; workers are
// created lazily on first submission and torn down once their queue drains.
//
// Grounded on ygrebnov-workers/workers.go's Workers[R] (construction via
// options, a single entry point accepting tasks), restructured around a
// persistent per-key queue map rather than a single shared tasks channel.
type Distributor[K comparable, V any] struct {
	cfg     config
	stripe  *stripedLock[K]
	workers sync.Map // K -> *keyWorker[K, V]

	// submitGate serializes "check shuttingDown, then inflight.Add(1)" in
	// AddTask against the single shuttingDown flip in Shutdown: Shutdown
	// takes the write side, which cannot proceed while any AddTask call is
	// between its check and its Add, so inflight.Wait() never starts while
	// an Add(1) for an accepted task is still in flight. Without this gate,
	// a racing AddTask and Shutdown can bump inflight 0->1 exactly as
	// Wait() observes zero, panicking with "WaitGroup is reused before
	// previous Wait has returned".
	submitGate   sync.RWMutex
	shuttingDown bool
	inflight     sync.WaitGroup
	shutdown     *shutdownCoordinator
}

// New constructs a Distributor. Errors if any Option is invalid.
func New[K comparable, V any](opts ...Option) (*Distributor[K, V], error) {
	cfg, err := buildConfig(opts...)
	if err != nil {
		return nil, err
	}
	d := &Distributor[K, V]{
		cfg:    cfg,
		stripe: newStripedLock[K](cfg.ExpectedConcurrency),
	}
	d.shutdown = newShutdownCoordinator(&d.inflight, func() {
		d.submitGate.Lock()
		d.shuttingDown = true
		d.submitGate.Unlock()
	})
	return d, nil
}

// AddTask enqueues task under key and returns a Future for its result. If
// key currently has no active worker, one is created and immediately
// dispatched onto the backend executor; if that initial dispatch is
// rejected, AddTask returns a *SchedulingFailedError and the task is never
// enqueued. Once Shutdown has been called, AddTask returns ErrShuttingDown.
func (d *Distributor[K, V]) AddTask(key K, task future.Task[V]) (*future.Future[V], error) {
	if task == nil {
		return nil, ErrInvalidArgument
	}
	d.submitGate.RLock()
	if d.shuttingDown {
		d.submitGate.RUnlock()
		return nil, ErrShuttingDown
	}
	d.inflight.Add(1)
	d.submitGate.RUnlock()

	fut, run := future.NewFutureWithFailureSink(task, d.reportTaskFailure)
	run = d.trackInflight(run)

	unlock := d.stripe.Lock(key)
	w, ok := d.workers.Load(key)
	var kw *keyWorker[K, V]
	if ok {
		kw = w.(*keyWorker[K, V])
	} else {
		kw = &keyWorker[K, V]{key: key}
		d.workers.Store(key, kw)
	}
	kw.enqueue(queuedItem{run: run})
	needsDispatch := !kw.dispatched
	if needsDispatch {
		kw.dispatched = true
	}
	unlock()

	d.cfg.Metrics.Counter(metrics.TasksEnqueued).Add(1)
	if !ok {
		d.cfg.Metrics.UpDownCounter(metrics.KeysActive).Add(1)
	}

	if needsDispatch {
		if err := d.cfg.Executor.Execute(func() { kw.runCycle(d) }); err != nil {
			d.undoDispatch(kw, ok)
			d.inflight.Done()
			return nil, &SchedulingFailedError{Inner: err}
		}
	}

	return fut, nil
}

// trackInflight wraps run so the distributor's in-flight count (used by
// Shutdown to wait for drain) is decremented once the task actually runs.
func (d *Distributor[K, V]) trackInflight(run func()) func() {
	return func() {
		defer d.inflight.Done()
		run()
	}
}

// undoDispatch rolls back a failed initial dispatch: the worker never ran,
// so it must be removed from the map (unless it was already present, in
// which case some other in-flight cycle still owns it) and marked
// undispatched so a later AddTask call can retry.
func (d *Distributor[K, V]) undoDispatch(kw *keyWorker[K, V], wasPresent bool) {
	unlock := d.stripe.Lock(kw.key)
	kw.dispatched = false
	if !wasPresent {
		d.workers.Delete(kw.key)
	}
	unlock()
	if !wasPresent {
		d.cfg.Metrics.UpDownCounter(metrics.KeysActive).Add(-1)
	}
}

// redispatch re-submits w onto the backend executor after it yields at a
// maxTasksPerCycle boundary. Unlike AddTask's initial dispatch, there is no
// caller blocked waiting for this submission to succeed, so a rejection is
// routed to the failure hook rather than returned; w keeps draining
// synchronously on the current goroutine instead of stalling its queue.
func (d *Distributor[K, V]) redispatch(w *keyWorker[K, V]) {
	if err := d.cfg.Executor.Execute(func() { w.runCycle(d) }); err != nil {
		d.reportFailure(&SchedulingFailedError{Inner: err})
		w.runCycle(d)
	}
}

// Submitter returns a KeySubmitter bound to key, so repeated submissions
// under the same key don't need to repeat it.
func (d *Distributor[K, V]) Submitter(key K) *KeySubmitter[K, V] {
	return &KeySubmitter[K, V]{d: d, key: key}
}

// ExecutorForKey returns an executor.Executor that serializes every fn
// submitted through it with the rest of key's tasks, in submission order.
// Equivalent to d.Submitter(key), exposed under the Executor interface for
// callers that only know that interface.
func (d *Distributor[K, V]) ExecutorForKey(key K) executor.Executor {
	return d.Submitter(key)
}

// Executor returns the backend executor every Key Worker dispatches onto.
func (d *Distributor[K, V]) Executor() executor.Executor {
	return d.cfg.Executor
}

// Shutdown stops accepting new tasks (subsequent AddTask calls return
// ErrShuttingDown) and blocks until every already-enqueued task finishes
// running, or until ctx is done. It does not cancel tasks already queued
// or running. Safe to call more than once; later calls observe the first
// call's outcome.
func (d *Distributor[K, V]) Shutdown(ctx context.Context) error {
	return d.shutdown.Close(ctx)
}

// ActiveKeys reports the number of keys with a currently live worker
// (queued or running tasks). Intended for tests and diagnostics.
func (d *Distributor[K, V]) ActiveKeys() int {
	n := 0
	d.workers.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (d *Distributor[K, V]) reportTaskFailure(err error) {
	d.reportFailure(&ExecutionFailedError{Inner: err})
}

func (d *Distributor[K, V]) reportFailure(err error) {
	failurehook.Handle(err)
	if d.cfg.FailureHook != nil {
		d.cfg.FailureHook(err)
	}
}

// ExecutionFailedError wraps a task's error the way future.ExecutionFailedError
// does, reported here to the failure hook(s) rather than returned from Get,
// since a task failure observed this way has no waiting caller: the
// Future's own Get/GetWithTimeout/GetWithContext already surface it to
// whoever holds the Future.
type ExecutionFailedError struct {
	Inner error
}

func (e *ExecutionFailedError) Error() string {
	return Namespace + ": task execution failed: " + e.Inner.Error()
}

func (e *ExecutionFailedError) Unwrap() error { return e.Inner }
