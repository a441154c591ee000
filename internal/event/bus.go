package event

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/eventmgr/internal/event/dispatch"
)

// Bus is the event bus facade. It composes a Registry with a synchronous
// and an asynchronous dispatcher.
//
// Registration and removal methods never panic and never return errors:
// malformed input (nil or non-comparable target, empty name, nil callback)
// is ignored and logged at debug level.
type Bus struct {
	registry *Registry

	syncDispatcher  *dispatch.SyncDispatcher
	asyncDispatcher *dispatch.AsyncDispatcher

	// lifeMu guards starting and stopping the async worker pool.
	lifeMu       sync.Mutex
	asyncStarted atomic.Bool
	closed       atomic.Bool

	config busConfig
	log    zerolog.Logger

	// Stats
	emits       atomic.Uint64
	asyncEmits  atomic.Uint64
	misses      atomic.Uint64
	invocations atomic.Uint64
	panics      atomic.Uint64
	reaped      atomic.Uint64
	rejected    atomic.Uint64
}

// NewBus creates a new event bus with the given options.
// The async worker pool starts on the first asynchronous emit.
func NewBus(opts ...BusOption) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Bus{
		registry:       NewRegistry(),
		syncDispatcher: dispatch.NewSyncDispatcher(),
		asyncDispatcher: dispatch.NewAsyncDispatcher(
			dispatch.WithQueueSize(config.asyncQueueSize),
			dispatch.WithWorkerCount(config.asyncWorkerCount),
		),
		config: config,
		log:    config.logger.With().Str("component", "event").Logger(),
	}
}

// Registry returns the bus's subscription registry.
func (b *Bus) Registry() *Registry {
	return b.registry
}

// On registers cb for name on target. The subscription fires on every emit
// until it is removed. Returns nil if the input is rejected.
func (b *Bus) On(target Target, name string, cb Callback) *Subscription {
	return b.register(target, name, cb, Unlimited)
}

// OnGlobal registers cb for name on the global scope.
func (b *Bus) OnGlobal(name string, cb Callback) *Subscription {
	return b.register(Global, name, cb, Unlimited)
}

// Once registers cb for name on target for a single invocation.
func (b *Bus) Once(target Target, name string, cb Callback) *Subscription {
	return b.register(target, name, cb, 1)
}

// OnceGlobal registers cb for a single invocation on the global scope.
func (b *Bus) OnceGlobal(name string, cb Callback) *Subscription {
	return b.register(Global, name, cb, 1)
}

// Many registers cb for name on target for n invocations.
// n must be positive or Unlimited.
func (b *Bus) Many(target Target, name string, cb Callback, n int) *Subscription {
	return b.register(target, name, cb, n)
}

func (b *Bus) register(target Target, name string, cb Callback, count int) *Subscription {
	sub, err := b.registry.Register(target, name, cb, count)
	if err != nil {
		b.rejected.Add(1)
		b.log.Debug().Err(err).
			Str("event", name).
			Int("count", count).
			Msg("registration ignored")
		return nil
	}
	return sub
}

// Emit invokes every subscriber of (target, name) in registration order and
// returns once the last one has finished. A panicking subscriber is
// reported and does not stop the others. Subscriptions whose count reaches
// zero are removed after all subscribers have run.
func (b *Bus) Emit(target Target, name string, args ...any) {
	subs, ok := b.lookup(target, name)
	if !ok {
		return
	}
	b.emits.Add(1)

	var exhausted []*Subscription
	for _, sub := range subs {
		if !sub.claim() {
			continue
		}
		result := b.syncDispatcher.Dispatch(sub.callback.dispatchable(), args)
		b.record(sub, result, false)

		if sub.consume() {
			exhausted = append(exhausted, sub)
		}
	}

	for _, sub := range exhausted {
		b.reap(sub)
	}
}

// EmitGlobal emits name synchronously on the global scope.
func (b *Bus) EmitGlobal(name string, args ...any) {
	b.Emit(Global, name, args...)
}

// EmitForAsync schedules every subscriber of (target, name) on the worker
// pool and returns without waiting. Each subscription's count is decremented
// when its invocation is scheduled; an invocation that leaves the count at
// zero removes the subscription when it completes.
func (b *Bus) EmitForAsync(target Target, name string, args ...any) {
	subs, ok := b.lookup(target, name)
	if !ok {
		return
	}
	b.asyncEmits.Add(1)
	b.startAsync()

	// The caller may reuse its slice after we return.
	args = slices.Clone(args)

	for _, sub := range subs {
		if !sub.claim() {
			continue
		}
		sub.consume()

		s := sub
		b.asyncDispatcher.Submit(s.callback.dispatchable(), args, func(result dispatch.Result) {
			b.record(s, result, true)
			if s.exhausted() {
				b.reap(s)
			}
		})
	}
}

// EmitGlobalAsync emits name asynchronously on the global scope.
func (b *Bus) EmitGlobalAsync(name string, args ...any) {
	b.EmitForAsync(Global, name, args...)
}

// Off removes every subscription for name on target.
func (b *Bus) Off(target Target, name string) {
	if n := b.registry.RemoveByName(target, name); n > 0 {
		b.log.Debug().Str("event", name).Int("removed", n).Msg("event off")
	}
}

// OffGlobal removes every global subscription for name.
func (b *Bus) OffGlobal(name string) {
	b.Off(Global, name)
}

// OffCallback removes the first subscription for name on target whose
// callback is cb. Function identity is the code pointer, so closures created
// from the same literal are indistinguishable, as are method values of the
// same method: OffCallback(t, "e", a.Handle) may remove a subscription
// registered with b.Handle. Use Unsubscribe for exact removal.
func (b *Bus) OffCallback(target Target, name string, cb Callback) {
	b.registry.RemoveByCallback(target, name, cb)
}

// Unsubscribe removes a subscription returned by On, Once or Many.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.registry.Remove(sub)
}

// TargetOff removes every subscription owned by target.
func (b *Bus) TargetOff(target Target) {
	if n := b.registry.RemoveTarget(target); n > 0 {
		b.log.Debug().Int("removed", n).Msg("target off")
	}
}

// ClearEvents removes all subscriptions. Global subscriptions are removed
// only when includeGlobal is true.
func (b *Bus) ClearEvents(includeGlobal bool) {
	n := b.registry.Clear(!includeGlobal)
	b.log.Debug().Bool("include_global", includeGlobal).Int("removed", n).Msg("events cleared")
}

// Has returns true if (target, name) has at least one subscription.
func (b *Bus) Has(target Target, name string) bool {
	return b.registry.Has(target, name)
}

// Count returns the number of subscriptions for (target, name).
func (b *Bus) Count(target Target, name string) int {
	return b.registry.CountBucket(target, name)
}

// Close stops the async worker pool, waiting for scheduled invocations to
// finish or until ctx is done. The bus stays usable afterwards; later async
// emits run each invocation on its own goroutine.
func (b *Bus) Close(ctx context.Context) error {
	b.lifeMu.Lock()
	defer b.lifeMu.Unlock()

	if b.closed.Swap(true) {
		return nil
	}
	if !b.asyncDispatcher.IsRunning() {
		return nil
	}
	return b.asyncDispatcher.Stop(ctx)
}

// Pending returns the number of asynchronous invocations not yet completed.
func (b *Bus) Pending() int64 {
	return b.asyncDispatcher.Pending()
}

// startAsync starts the worker pool once, unless the bus was closed.
func (b *Bus) startAsync() {
	if b.asyncStarted.Load() || b.closed.Load() {
		return
	}

	b.lifeMu.Lock()
	defer b.lifeMu.Unlock()

	if b.asyncStarted.Load() || b.closed.Load() {
		return
	}
	if err := b.asyncDispatcher.Start(); err != nil {
		b.log.Warn().Err(err).Msg("async dispatcher start failed")
		return
	}
	b.asyncStarted.Store(true)
}

// lookup validates the key and snapshots its bucket.
func (b *Bus) lookup(target Target, name string) ([]*Subscription, bool) {
	if !validTarget(target) || name == "" {
		b.rejected.Add(1)
		b.log.Debug().Str("event", name).Msg("emit ignored: invalid target or name")
		return nil, false
	}

	subs := b.registry.Snapshot(target, name)
	if len(subs) == 0 {
		b.misses.Add(1)
		return nil, false
	}
	return subs, true
}

// record updates stats and reports a panicking callback.
func (b *Bus) record(sub *Subscription, result dispatch.Result, async bool) {
	b.invocations.Add(1)
	if !result.Panicked {
		return
	}
	b.panics.Add(1)

	perr := &PanicError{
		SubscriptionID: sub.id,
		Target:         sub.target,
		Name:           sub.name,
		Async:          async,
		Value:          result.PanicValue,
		Stack:          string(result.PanicStack),
	}

	b.log.Error().Err(perr).
		Str("subscription", sub.id).
		Str("event", sub.name).
		Bool("async", async).
		Str("stack", perr.Stack).
		Msg("subscriber panicked")

	if b.config.panicHandler != nil {
		func() {
			defer func() { _ = recover() }()
			b.config.panicHandler(perr)
		}()
	}
}

// reap removes an exhausted subscription; removal is idempotent.
func (b *Bus) reap(sub *Subscription) {
	if b.registry.Remove(sub) {
		b.reaped.Add(1)
		b.log.Trace().Str("subscription", sub.id).Str("event", sub.name).Msg("subscription reaped")
	}
}
