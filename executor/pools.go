package executor

import (
	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	conc "github.com/sourcegraph/conc/pool"
)

// Ants adapts a *ants.Pool to the Executor interface, grounded on the
// teacher pack's Tangerg-lynx/future/pool.go PoolOfAnts / pkg/sync/pool.go
// PoolOfAnts adapters. Unlike those, which discard the Submit error, this one
// propagates it so the distributor can surface ErrSchedulingFailed per
// spec §4.4 ("Backend executor rejects dispatch -> propagate as
// SchedulingFailed").
func Ants(pool *ants.Pool) Executor {
	if pool == nil {
		panic("executor: ants pool is nil")
	}
	return Func(func(fn func()) error {
		return pool.Submit(fn)
	})
}

// Workerpool adapts a *workerpool.WorkerPool to the Executor interface.
// gammazero/workerpool's Submit has no failure mode (it blocks until
// accepted rather than rejecting), so Execute here never returns an error,
// mirroring the teacher pack's PoolOfWorkerpool adapter.
func Workerpool(pool *workerpool.WorkerPool) Executor {
	if pool == nil {
		panic("executor: workerpool is nil")
	}
	return Func(func(fn func()) error {
		pool.Submit(fn)
		return nil
	})
}

// Conc adapts a *conc.Pool (sourcegraph/conc) to the Executor interface.
// conc.Pool.Go also has no synchronous failure mode; panics inside submitted
// functions are caught by conc itself and re-raised from Pool.Wait(), which
// this adapter does not call — callers that need conc's panic propagation
// should retain a reference to the pool and call Wait() themselves during
// shutdown.
func Conc(pool *conc.Pool) Executor {
	if pool == nil {
		panic("executor: conc pool is nil")
	}
	return Func(func(fn func()) error {
		pool.Go(fn)
		return nil
	})
}
