// Package failurehook provides a single process-wide sink for contained
// failures: task panics/errors a worker cannot propagate to a waiting
// caller, and listener panics during inline dispatch.
//
// Grounded on the teacher pack's "contain, don't propagate" philosophy
// (ygrebnov-workers/error_forwarder.go, error_tagging.go), restyled as a
// single replaceable function rather than a channel, since the spec calls
// for "a process-wide function handleFailure(error)" (spec §6) rather than
// an outward errors channel.
package failurehook

import (
	"log"
	"sync/atomic"
)

// Handler is invoked for every contained failure.
type Handler func(error)

var current atomic.Value // Handler

func init() {
	current.Store(Handler(defaultHandler))
}

func defaultHandler(err error) {
	log.Printf("keydispatch: unhandled failure: %v", err)
}

// Set installs fn as the process-wide failure handler. A nil fn restores the
// default (log-to-stderr) handler. Safe for concurrent use.
func Set(fn Handler) {
	if fn == nil {
		fn = defaultHandler
	}
	current.Store(fn)
}

// Handle routes err to the currently installed handler. A nil err is a no-op.
func Handle(err error) {
	if err == nil {
		return
	}
	current.Load().(Handler)(err)
}
