package keydispatch

import (
	"context"
	"sync"
)

// shutdownCoordinator runs a Distributor's shutdown sequence exactly once:
// stop accepting new tasks, then wait for every already-enqueued task to
// finish running, or for ctx to be done, whichever happens first.
//
// Grounded on ygrebnov-workers/lifecycle.go's lifecycleCoordinator: the
// same once.Do-guarded, ordered-steps shape, collapsed from its seven-stage
// channel-closing sequence (results/errors/events channels, a detached
// forwarder, a reorderer) down to the two steps a keyed dispatcher with no
// outward channels actually needs.
type shutdownCoordinator struct {
	once     sync.Once
	inflight *sync.WaitGroup
	stop     func()
	err      error
}

func newShutdownCoordinator(inflight *sync.WaitGroup, stop func()) *shutdownCoordinator {
	return &shutdownCoordinator{inflight: inflight, stop: stop}
}

// Close executes the shutdown sequence exactly once: stop is invoked to
// flip the distributor into rejecting new tasks, then Close blocks until
// every in-flight task finishes or ctx is done. Later calls block on the
// same once and return the first call's result.
func (lc *shutdownCoordinator) Close(ctx context.Context) error {
	lc.once.Do(func() {
		lc.stop()
		done := make(chan struct{})
		go func() {
			lc.inflight.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			lc.err = ctx.Err()
		}
	})
	return lc.err
}
