// Package future provides a generic completable future: a one-shot result
// cell with cancellation, timed/context-aware waits, and completion
// listeners that may be registered before or after settlement.
//
// Grounded on the teacher pack's Tangerg-lynx/future/future.go and
// Tangerg-lynx/pkg/sync/future.go (the Java java.util.concurrent.Future port
// present in the retrieval pack's reference material, not the teacher
// itself): atomic int32 state machine, a done channel closed exactly once
// (guarded by the state CAS rather than a sync.Once), and the same
// Get/GetWithTimeout/GetWithContext shape. The
// teacher's future has no listener support; AddListener and the settle-time
// drain are this package's addition, required by spec §4.2.
package future

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kellanburke/keydispatch/executor"
	"github.com/kellanburke/keydispatch/failurehook"
)

var (
	// ErrCanceled is returned by Get/GetWithTimeout/GetWithContext when the
	// future was canceled before its task started running.
	ErrCanceled = errors.New("future: canceled")

	// ErrTimedOut is returned by GetWithTimeout when the timeout elapses
	// before the future settles. (GetWithContext returns ctx.Err() instead.)
	ErrTimedOut = errors.New("future: timed out")
)

// ExecutionFailedError wraps the error returned by a future's task. Get*
// returns this (not the bare inner error) so callers can distinguish a task
// failure from ErrCanceled/ErrTimedOut via errors.As.
type ExecutionFailedError struct {
	Inner error
}

func (e *ExecutionFailedError) Error() string { return "future: execution failed: " + e.Inner.Error() }
func (e *ExecutionFailedError) Unwrap() error { return e.Inner }

// State is the lifecycle stage of a Future.
type State int32

const (
	New State = iota
	Running
	Success
	Failed
	Canceled
)

func (s State) int32() int32 { return int32(s) }

// Task is the computation a Future wraps. interrupt is closed when Cancel is
// called with mayInterruptIfRunning, for tasks that choose to observe it;
// this package never forcibly stops a running task (spec §4.2, §5).
type Task[V any] func(interrupt <-chan struct{}) (V, error)

// Listener is invoked exactly once when a Future settles, with the final
// value/error (error is ErrCanceled if the future was canceled before start).
type Listener[V any] func(value V, err error)

type listenerEntry[V any] struct {
	fn   Listener[V]
	exec executor.Executor
}

// Future represents an asynchronous, at-most-once-settling computation.
//
// Settlement is guarded by a single atomic CAS on state rather than a shared
// sync.Once between the cancel path and the run path: this resolves spec
// §9's Open Question (the original's cancel-after-start race, where a
// canceled-while-running future could later also be marked done with a real
// result) in favor of a single source of truth. See DESIGN.md. Concretely:
// Cancel only ever settles the future when the task has not yet started
// (New -> Canceled); once Running, Cancel is reduced to best-effort
// interruption via the interrupt channel and the future always settles
// exactly once, from run()'s own completion.
type Future[V any] struct {
	task          Task[V]
	state         atomic.Int32
	value         V
	err           error
	done          chan struct{}
	interrupt     chan struct{}
	interruptOnce sync.Once
	mu            sync.Mutex
	listeners     []listenerEntry[V]
	onFailure     func(error) // optional: additionally notified on task failure, per spec §4.2 step 4
}

// NewFuture creates a Future wrapping task and returns it alongside a run
// function that starts it. The caller (typically a Key Worker) decides when
// and on which goroutine to invoke run.
func NewFuture[V any](task Task[V]) (*Future[V], func()) {
	if task == nil {
		panic("future: task is nil")
	}
	f := &Future[V]{
		done:      make(chan struct{}),
		interrupt: make(chan struct{}),
		task:      task,
	}
	return f, f.run
}

// NewFutureWithFailureSink is like NewFuture but additionally reports task
// failures to sink once settled, per spec §4.2 step 4 ("it must additionally
// be surfaced to the worker's failure sink"). sink may be nil.
func NewFutureWithFailureSink[V any](task Task[V], sink func(error)) (*Future[V], func()) {
	f, run := NewFuture(task)
	f.onFailure = sink
	return f, run
}

func (f *Future[V]) run() {
	if !f.state.CompareAndSwap(New.int32(), Running.int32()) {
		return
	}
	// A panic in the task is recovered and settles the future as failed.
	var value V
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("future: task panicked: %v", r)
			}
		}()
		value, err = f.task(f.interrupt)
	}()
	f.complete(value, err)
}

func (f *Future[V]) complete(value V, err error) {
	f.value = value
	f.err = err
	if err != nil {
		f.state.CompareAndSwap(Running.int32(), Failed.int32())
	} else {
		f.state.CompareAndSwap(Running.int32(), Success.int32())
	}
	close(f.done)
	f.drainListeners()
	if err != nil && f.onFailure != nil {
		f.onFailure(err)
	}
}

// Cancel attempts to cancel the future. If the task has not yet started, it
// settles the future immediately with ErrCanceled and returns true. If the
// task has already started (or the future has already settled), Cancel
// returns false; when mayInterruptIfRunning is true it additionally closes
// the interrupt channel so a cooperative task can observe cancellation, but
// the future itself still settles exactly once, from the task's own
// completion (spec §5, §9 — see the Future doc comment for how the Open
// Question is resolved here).
func (f *Future[V]) Cancel(mayInterruptIfRunning bool) bool {
	if f.state.CompareAndSwap(New.int32(), Canceled.int32()) {
		f.err = ErrCanceled
		close(f.done)
		f.drainListeners()
		return true
	}
	if mayInterruptIfRunning {
		f.interruptOnce.Do(func() { close(f.interrupt) })
	}
	return false
}

// IsCancelled reports whether the future was canceled before its task
// started running.
func (f *Future[V]) IsCancelled() bool {
	return State(f.state.Load()) == Canceled
}

// IsDone reports whether the future has settled (success, failure, or
// canceled-before-start).
func (f *Future[V]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// State returns the future's current lifecycle stage.
func (f *Future[V]) State() State {
	return State(f.state.Load())
}

// Get blocks until the future settles and returns its result, or an error:
// ErrCanceled if canceled before start, or *ExecutionFailedError wrapping
// the task's error.
func (f *Future[V]) Get() (V, error) {
	<-f.done
	return f.value, f.wrapErr()
}

// GetWithTimeout waits up to timeout for the future to settle. On timeout it
// returns ErrTimedOut without canceling the future (the spec scopes
// cancellation to explicit Cancel calls only; a timed-out waiter may call
// Get again later and observe the eventual result).
func (f *Future[V]) GetWithTimeout(timeout time.Duration) (V, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-f.done:
		return f.value, f.wrapErr()
	case <-timer.C:
		var zero V
		return zero, ErrTimedOut
	}
}

// GetWithContext waits until the future settles or ctx is done, returning
// ctx.Err() in the latter case.
func (f *Future[V]) GetWithContext(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.value, f.wrapErr()
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (f *Future[V]) wrapErr() error {
	if f.err == nil {
		return nil
	}
	if errors.Is(f.err, ErrCanceled) {
		return f.err
	}
	return &ExecutionFailedError{Inner: f.err}
}

// ResultNow returns the completed value without blocking. It panics if the
// future has not settled, was canceled, or settled with an error.
func (f *Future[V]) ResultNow() V {
	if !f.IsDone() {
		panic("future: task has not completed")
	}
	if f.err != nil {
		panic("future: task did not complete with a result")
	}
	return f.value
}

// ErrorNow returns the task's error without blocking. It panics if the
// future has not settled, was canceled, or completed successfully.
func (f *Future[V]) ErrorNow() error {
	if !f.IsDone() {
		panic("future: task has not completed")
	}
	if f.IsCancelled() {
		panic("future: task was cancelled")
	}
	if f.err == nil {
		panic("future: task completed with a result")
	}
	return f.err
}

// AddListener registers fn to run exactly once when the future settles. If
// the future has already settled, fn is dispatched immediately: via exec if
// non-nil, or inline on the calling goroutine otherwise. A panic from an
// inline dispatch is recovered and routed to failurehook.Handle; it does not
// prevent other listeners from firing.
func (f *Future[V]) AddListener(fn Listener[V], exec executor.Executor) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	if f.IsDone() {
		f.mu.Unlock()
		f.dispatch(listenerEntry[V]{fn: fn, exec: exec})
		return
	}
	f.listeners = append(f.listeners, listenerEntry[V]{fn: fn, exec: exec})
	f.mu.Unlock()
}

func (f *Future[V]) drainListeners() {
	f.mu.Lock()
	pending := f.listeners
	f.listeners = nil
	f.mu.Unlock()
	for _, l := range pending {
		f.dispatch(l)
	}
}

func (f *Future[V]) dispatch(l listenerEntry[V]) {
	value, err := f.value, f.wrapErr()
	call := func() {
		defer func() {
			if r := recover(); r != nil {
				failurehook.Handle(&listenerPanicError{info: r})
			}
		}()
		l.fn(value, err)
	}
	if l.exec == nil {
		call()
		return
	}
	if execErr := l.exec.Execute(call); execErr != nil {
		failurehook.Handle(execErr)
	}
}

type listenerPanicError struct{ info any }

func (e *listenerPanicError) Error() string {
	return fmt.Sprintf("future: listener panicked: %v", e.info)
}
