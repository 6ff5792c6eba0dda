package future

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFuture_SuccessfulGet(t *testing.T) {
	f, run := NewFuture(func(_ <-chan struct{}) (int, error) {
		return 42, nil
	})
	go run()

	v, err := f.Get()
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, Success, f.State())
	require.True(t, f.IsDone())
}

func TestFuture_FailedGetWrapsError(t *testing.T) {
	boom := errors.New("boom")
	f, run := NewFuture(func(_ <-chan struct{}) (int, error) {
		return 0, boom
	})
	go run()

	_, err := f.Get()
	require.Error(t, err)
	var execErr *ExecutionFailedError
	require.True(t, errors.As(err, &execErr))
	require.ErrorIs(t, execErr.Inner, boom)
	require.Equal(t, Failed, f.State())
}

func TestFuture_CancelBeforeStartSettlesImmediately(t *testing.T) {
	f, run := NewFuture(func(_ <-chan struct{}) (int, error) {
		t.Fatal("task should never run once canceled before start")
		return 0, nil
	})

	require.True(t, f.Cancel(false))
	require.True(t, f.IsCancelled())
	require.True(t, f.IsDone())

	_, err := f.Get()
	require.ErrorIs(t, err, ErrCanceled)

	// run() is still called later by whichever worker owned it; it must be
	// a no-op once the future has already settled via Cancel.
	run()
}

// This pins the Open Question: a Cancel racing with an already-running task
// never reverts a real result back to canceled, and the task's own
// completion always wins. Cancel(true) may still close the interrupt
// channel for cooperative tasks, but settlement only happens once.
func TestFuture_CancelAfterStartDoesNotOverrideResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f, run := NewFuture(func(interrupt <-chan struct{}) (int, error) {
		close(started)
		select {
		case <-release:
		case <-interrupt:
		}
		return 7, nil
	})
	go run()

	<-started
	require.False(t, f.Cancel(true), "Cancel on a running task must not report immediate settlement")
	close(release)

	v, err := f.Get()
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, Success, f.State())
	require.False(t, f.IsCancelled())
}

func TestFuture_CancelWithInterruptUnblocksCooperativeTask(t *testing.T) {
	started := make(chan struct{})
	f, run := NewFuture(func(interrupt <-chan struct{}) (int, error) {
		close(started)
		<-interrupt
		return 0, context.Canceled
	})
	go run()

	<-started
	require.False(t, f.Cancel(true))

	_, err := f.Get()
	require.Error(t, err)
	var execErr *ExecutionFailedError
	require.True(t, errors.As(err, &execErr))
	require.ErrorIs(t, execErr.Inner, context.Canceled)
}

func TestFuture_GetWithTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f, run := NewFuture(func(_ <-chan struct{}) (int, error) {
		<-release
		return 0, nil
	})
	go run()

	_, err := f.GetWithTimeout(10 * time.Millisecond)
	require.ErrorIs(t, err, ErrTimedOut)
	require.False(t, f.IsDone(), "a timed-out wait must not cancel the future")
}

func TestFuture_GetWithContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f, run := NewFuture(func(_ <-chan struct{}) (int, error) {
		<-release
		return 0, nil
	})
	go run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.GetWithContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuture_AddListenerBeforeAndAfterSettlement(t *testing.T) {
	f, run := NewFuture(func(_ <-chan struct{}) (int, error) {
		return 5, nil
	})

	before := make(chan int, 1)
	f.AddListener(func(v int, err error) {
		require.NoError(t, err)
		before <- v
	}, nil)

	go run()
	require.Equal(t, 5, <-before)

	after := make(chan int, 1)
	f.AddListener(func(v int, err error) {
		require.NoError(t, err)
		after <- v
	}, nil)
	require.Equal(t, 5, <-after)
}

func TestFuture_ResultNowAndErrorNowPanicBeforeSettlement(t *testing.T) {
	f, _ := NewFuture(func(_ <-chan struct{}) (int, error) { return 0, nil })
	require.Panics(t, func() { f.ResultNow() })
	require.Panics(t, func() { f.ErrorNow() })
}

func TestFuture_NewFutureWithFailureSinkNotifiedOnFailure(t *testing.T) {
	boom := errors.New("sunk")
	sunk := make(chan error, 1)
	f, run := NewFutureWithFailureSink(func(_ <-chan struct{}) (int, error) {
		return 0, boom
	}, func(err error) { sunk <- err })
	go run()

	_, _ = f.Get()
	require.ErrorIs(t, <-sunk, boom)
}
