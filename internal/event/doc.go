// Package event provides an in-process publish/subscribe bus keyed by
// target and event name.
//
// Callers register callbacks under a target (any comparable value, usually a
// pointer to the owning object) and an event name. Other callers later emit
// that name on that target, synchronously or asynchronously, with any number
// of untyped arguments. Global is a reserved target for bus-wide events.
//
// # Architecture
//
//	             ┌──────────────────────────────────────────┐
//	             │                   Bus                    │
//	             │  On / Once / Many / Off / TargetOff      │
//	             │  Emit / EmitForAsync / ClearEvents       │
//	             └──────────────────────────────────────────┘
//	                     │                       │
//	                     ▼                       ▼
//	          ┌──────────────────┐    ┌──────────────────────┐
//	          │     Registry     │    │       dispatch       │
//	          │ target → name →  │    │  SyncDispatcher      │
//	          │ []*Subscription  │    │  AsyncDispatcher     │
//	          └──────────────────┘    └──────────────────────┘
//
// # Invocation Counts
//
// Every subscription carries a remaining count. On registers an Unlimited
// subscription, Once a count of 1 and Many a caller-chosen positive count.
// Each emit that reaches a subscription decrements its count exactly once, and
// a subscription whose count reaches zero is removed ("reaped"):
//
//   - Emit runs callbacks in registration order in the caller's goroutine,
//     decrements after each callback returns, and reaps after the last one.
//   - EmitForAsync decrements when it schedules the callback and reaps when
//     the callback completes on the worker pool.
//
// A subscription is never invoked more times than its count, including by
// concurrent or re-entrant emits.
//
// # Usage
//
//	bus := event.NewBus(event.WithLogger(logger))
//	defer bus.Close(ctx)
//
//	bus.On(player, "damaged", func(args ...any) {
//	    amount := args[0].(int)
//	    // ...
//	})
//	bus.Once(player, "died", onDeath)
//	bus.OnGlobal("config.changed", reload)
//
//	bus.Emit(player, "damaged", 10)
//	bus.EmitGlobalAsync("config.changed", cfg)
//
//	bus.TargetOff(player)
//
// # Concurrency
//
// One RWMutex guards the registry. Emits iterate a snapshot outside the lock,
// so callbacks may register, remove and emit freely. A subscription removed
// before its turn in an in-progress emit is skipped. The async worker pool is
// started on first use; a callback that never returns keeps its subscription
// registered and holds a worker.
//
// # Errors
//
// Registration never fails loudly: malformed input is ignored and logged at
// debug level. A panicking callback is recovered, logged as a *PanicError and
// handed to the PanicHandler, if any; the other subscribers still run.
package event
