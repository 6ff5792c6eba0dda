package executor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBounded_LimitsConcurrency(t *testing.T) {
	const capacity = 2
	b := Bounded(capacity)

	var inflight, maxInflight atomic.Int32
	release := make(chan struct{})
	var wg sync.WaitGroup

	// Execute blocks once every permit is taken, so submit from a separate
	// goroutine and release the tasks from here.
	errs := make(chan error, capacity*3)
	wg.Add(capacity * 3)
	go func() {
		for i := 0; i < capacity*3; i++ {
			errs <- b.Execute(func() {
				defer wg.Done()
				cur := inflight.Add(1)
				for {
					prev := maxInflight.Load()
					if cur <= prev || maxInflight.CompareAndSwap(prev, cur) {
						break
					}
				}
				<-release
				inflight.Add(-1)
			})
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.LessOrEqual(t, int32(capacity), maxInflight.Load())
	close(release)
	wg.Wait()
	for i := 0; i < capacity*3; i++ {
		require.NoError(t, <-errs)
	}
	require.EqualValues(t, capacity, maxInflight.Load())
}

func TestBounded_ClosedRejects(t *testing.T) {
	b := Bounded(1).(interface {
		Executor
		Close()
	})
	b.Close()
	err := b.Execute(func() {})
	require.ErrorIs(t, err, ErrClosed)
}

func TestBounded_NilTask(t *testing.T) {
	b := Bounded(1)
	err := b.Execute(nil)
	require.ErrorIs(t, err, ErrNilTask)
}

func TestBounded_PanicsOnNonPositiveCapacity(t *testing.T) {
	require.Panics(t, func() { Bounded(0) })
}
