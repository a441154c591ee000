package dispatch

import (
	"sync/atomic"
	"time"
)

// SyncDispatcher executes callbacks synchronously in the caller's goroutine.
type SyncDispatcher struct {
	executor *Executor

	// Stats
	dispatched  atomic.Uint64
	succeeded   atomic.Uint64
	panicked    atomic.Uint64
	totalTimeNs atomic.Int64
}

// NewSyncDispatcher creates a new synchronous dispatcher.
func NewSyncDispatcher() *SyncDispatcher {
	return &SyncDispatcher{
		executor: NewExecutor(),
	}
}

// Dispatch executes a callback synchronously with the given arguments.
// It blocks until the callback returns or panics.
func (d *SyncDispatcher) Dispatch(cb Callback, args []any) Result {
	d.dispatched.Add(1)

	result := d.executor.Execute(cb, args)

	d.totalTimeNs.Add(result.Duration.Nanoseconds())
	if result.Panicked {
		d.panicked.Add(1)
	} else {
		d.succeeded.Add(1)
	}

	return result
}

// Stats returns dispatch statistics.
// Values are read without a mutex and may be slightly inconsistent
// while dispatches are in progress.
func (d *SyncDispatcher) Stats() SyncDispatcherStats {
	dispatched := d.dispatched.Load()
	totalNs := d.totalTimeNs.Load()

	var avgNs int64
	if dispatched > 0 {
		avgNs = totalNs / int64(dispatched)
	}

	return SyncDispatcherStats{
		Dispatched:    dispatched,
		Succeeded:     d.succeeded.Load(),
		Panicked:      d.panicked.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// SyncDispatcherStats contains statistics for a sync dispatcher.
type SyncDispatcherStats struct {
	// Dispatched is the total number of dispatch calls.
	Dispatched uint64

	// Succeeded is the number of callbacks that returned normally.
	Succeeded uint64

	// Panicked is the number of callbacks that panicked.
	Panicked uint64

	// TotalDuration is the cumulative time spent in callbacks.
	TotalDuration time.Duration

	// AvgDuration is the average callback execution time.
	AvgDuration time.Duration
}
