package event

import "github.com/dshills/eventmgr/internal/event/dispatch"

// Stats contains event bus statistics.
type Stats struct {
	// Emits is the number of synchronous emits that found subscribers.
	Emits uint64

	// AsyncEmits is the number of asynchronous emits that found subscribers.
	AsyncEmits uint64

	// Misses is the number of emits whose bucket was empty.
	Misses uint64

	// Invocations is the number of callbacks that have run to completion or panicked.
	Invocations uint64

	// Panics is the number of callbacks that panicked.
	Panics uint64

	// Reaped is the number of subscriptions removed after exhausting their count.
	Reaped uint64

	// Rejected is the number of calls ignored because of malformed input.
	Rejected uint64

	// Subscriptions is the number of currently registered subscriptions.
	Subscriptions int

	// Targets is the number of targets with at least one subscription.
	Targets int

	// Sync holds the synchronous dispatcher statistics.
	Sync dispatch.SyncDispatcherStats

	// Async holds the worker pool statistics.
	Async dispatch.AsyncDispatcherStats
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	return Stats{
		Emits:         b.emits.Load(),
		AsyncEmits:    b.asyncEmits.Load(),
		Misses:        b.misses.Load(),
		Invocations:   b.invocations.Load(),
		Panics:        b.panics.Load(),
		Reaped:        b.reaped.Load(),
		Rejected:      b.rejected.Load(),
		Subscriptions: b.registry.Count(),
		Targets:       len(b.registry.Targets()),
		Sync:          b.syncDispatcher.Stats(),
		Async:         b.asyncDispatcher.Stats(),
	}
}
