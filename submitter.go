package keydispatch

import (
	"github.com/kellanburke/keydispatch/executor"
	"github.com/kellanburke/keydispatch/future"
)

// KeySubmitter implements executor.Executor, so a KeySubmitter can stand in
// wherever code only knows the Executor interface and needs every call
// serialized under one key.
var _ executor.Executor = (*KeySubmitter[string, int])(nil)

// KeySubmitter is a Distributor bound to a fixed key, so repeated
// submissions under the same key read naturally at call sites that always
// operate on one key (a connection ID, an account ID, a shard).
//
// Grounded on Tangerg-lynx/pkg/sync/pool.go's Pool.Submit shape (an
// error-returning, no-result-channel submit call); narrowed here to a
// single bound key rather than a whole pool.
type KeySubmitter[K comparable, V any] struct {
	d   *Distributor[K, V]
	key K
}

// Submit enqueues task under the submitter's key. Equivalent to calling
// d.AddTask(key, task) on the underlying Distributor.
func (s *KeySubmitter[K, V]) Submit(task future.Task[V]) (*future.Future[V], error) {
	return s.d.AddTask(s.key, task)
}

// Key returns the key this submitter is bound to.
func (s *KeySubmitter[K, V]) Key() K { return s.key }

// Execute runs fn under the submitter's key, fire-and-forget, discarding the
// resulting Future and reporting fn's outcome (including a panic) only to
// the Distributor's failure hook rather than to any caller.
func (s *KeySubmitter[K, V]) Execute(fn func()) error {
	if fn == nil {
		return executor.ErrNilTask
	}
	_, err := s.d.AddTask(s.key, func(_ <-chan struct{}) (V, error) {
		fn()
		var zero V
		return zero, nil
	})
	return err
}
