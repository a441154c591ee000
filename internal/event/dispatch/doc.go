// Package dispatch provides the invocation machinery behind the event bus.
//
// It executes subscriber callbacks either in the caller's goroutine or on a
// worker pool, isolating each invocation so that a panicking callback never
// takes down the emitter or the remaining subscribers.
//
// # Dispatchers
//
//   - SyncDispatcher: runs a callback in the caller's goroutine and returns
//     once it has finished.
//
//   - AsyncDispatcher: hands a callback to a bounded worker pool and returns
//     immediately. A completion function runs on the worker after the callback
//     returns; the bus uses it to reap exhausted one-shot subscriptions. When the
//     queue is full, or the pool is not running, the task runs on a dedicated
//     goroutine instead of being dropped.
//
// # Panic Recovery
//
// Both dispatchers recover panics through an Executor. The Result records the
// panic value and stack; reporting is left to the caller. A panicking
// completion function is recovered and counted in the async stats.
//
// # Usage
//
//	d := dispatch.NewAsyncDispatcher(dispatch.WithWorkerCount(4))
//	_ = d.Start()
//	defer d.Stop(ctx)
//
//	d.Submit(cb, []any{"payload"}, func(r dispatch.Result) {
//	    if r.IsPanic() {
//	        // report
//	    }
//	})
package dispatch
