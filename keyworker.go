package keydispatch

import (
	"github.com/kellanburke/keydispatch/metrics"
)

// queuedItem is one enqueued task plus the closure that actually starts its
// Future; queued in submission order so a Key Worker drains them FIFO.
type queuedItem struct {
	run func()
}

// keyWorker owns one key's FIFO queue. At most one instance of its runCycle
// is ever active in the backend executor at a time (the single-runner
// invariant): AddTask only dispatches it when dispatched flips false->true
// under the key's stripe, and runCycle itself clears dispatched (and
// removes the worker from the distributor's map) only once it observes an
// empty queue under the same stripe.
//
// Grounded on ygrebnov-workers/worker.go for the per-task panic-recovering
// execute step (delegated here to future.Future's own run, see
// future/future.go); the drain-and-yield cycle itself has no teacher
// analogue since ygrebnov-workers dispatches one worker goroutine per task
// rather than maintaining a persistent per-key queue.
type keyWorker[K comparable, V any] struct {
	key        K
	queue      []queuedItem
	dispatched bool
}

// runCycle drains w's queue, running each task's Future inline, until the
// queue is empty or (when configured) maxTasksPerCycle tasks have run in
// this cycle. In the latter case it re-dispatches itself onto the backend
// executor before returning, so other keys' cycles get a turn on a bounded
// executor.
func (w *keyWorker[K, V]) runCycle(d *Distributor[K, V]) {
	var processed uint
	for {
		unlock := d.stripe.Lock(w.key)
		if len(w.queue) == 0 {
			w.dispatched = false
			d.workers.Delete(w.key)
			unlock()
			d.cfg.Metrics.UpDownCounter(metrics.KeysActive).Add(-1)
			return
		}

		perCycle := d.cfg.MaxTasksPerCycle
		if perCycle > 0 && processed >= perCycle {
			unlock()
			d.cfg.Metrics.Counter(metrics.CycleYields).Add(1)
			d.redispatch(w)
			return
		}

		depth := len(w.queue)
		limit := depth
		if perCycle > 0 && uint(limit) > perCycle-processed {
			limit = int(perCycle - processed)
		}
		batch := w.queue[:limit]
		w.queue = w.queue[limit:]
		unlock()

		d.cfg.Metrics.Histogram(metrics.QueueDepth).Record(float64(depth))
		for _, item := range batch {
			item.run()
			processed++
			d.cfg.Metrics.Counter(metrics.TasksCompleted).Add(1)
		}
	}
}

// enqueue appends item to w's queue. Caller must hold the key's stripe lock.
func (w *keyWorker[K, V]) enqueue(item queuedItem) {
	w.queue = append(w.queue, item)
}
