package event

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Subscription is a registered callback and its remaining invocation count.
//
// A subscription created with a positive count removes itself from the bus
// once that many emits have been delivered to it. Unlimited subscriptions
// stay until they are unregistered.
type Subscription struct {
	id       string
	target   Target
	name     string
	callback Callback
	limited  bool

	// remaining is the observable counter. Sync emits decrement it after the
	// callback returns, async emits before the callback is scheduled.
	remaining atomic.Int64

	// budget is the number of invocations that may still be started. It is
	// claimed before every invocation so an exhausted subscription is never
	// invoked, even by a concurrent or re-entrant emit.
	budget atomic.Int64

	detached atomic.Bool
}

// newSubscription creates a subscription. count is Unlimited or positive.
func newSubscription(target Target, name string, cb Callback, count int) *Subscription {
	s := &Subscription{
		id:       uuid.NewString(),
		target:   target,
		name:     name,
		callback: cb,
		limited:  count != Unlimited,
	}
	s.remaining.Store(int64(count))
	s.budget.Store(int64(count))
	return s
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Target returns the owning target.
func (s *Subscription) Target() Target {
	return s.target
}

// Name returns the event name.
func (s *Subscription) Name() string {
	return s.name
}

// Remaining returns the remaining invocation count, or Unlimited.
func (s *Subscription) Remaining() int {
	return int(s.remaining.Load())
}

// IsUnlimited returns true if the subscription never expires.
func (s *Subscription) IsUnlimited() bool {
	return !s.limited
}

// IsActive returns true if the subscription is registered and can still fire.
func (s *Subscription) IsActive() bool {
	if s.detached.Load() {
		return false
	}
	return !s.limited || s.budget.Load() > 0
}

// claim reserves one invocation. It fails for detached or exhausted subscriptions.
func (s *Subscription) claim() bool {
	if s.detached.Load() {
		return false
	}
	if !s.limited {
		return true
	}
	for {
		n := s.budget.Load()
		if n <= 0 {
			return false
		}
		if s.budget.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// consume decrements the remaining count and reports whether it reached zero.
// It must follow a successful claim.
func (s *Subscription) consume() bool {
	if !s.limited {
		return false
	}
	return s.remaining.Add(-1) == 0
}

// exhausted reports whether the remaining count has reached zero.
func (s *Subscription) exhausted() bool {
	return s.limited && s.remaining.Load() == 0
}

// detach marks the subscription as removed. It reports whether this call
// performed the transition.
func (s *Subscription) detach() bool {
	return s.detached.CompareAndSwap(false, true)
}
