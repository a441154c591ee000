package event

import (
	"slices"
	"sync"
)

// bucketSet maps event names to their ordered subscriptions.
type bucketSet map[string][]*Subscription

// Registry manages subscriptions organized by target and event name.
// It is thread-safe for concurrent access.
type Registry struct {
	mu      sync.RWMutex
	targets map[Target]bucketSet
	count   int
}

// NewRegistry creates a new subscription registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[Target]bucketSet),
	}
}

// Register creates a subscription and appends it to the (target, name) bucket.
// count must be Unlimited or positive.
func (r *Registry) Register(target Target, name string, cb Callback, count int) (*Subscription, error) {
	switch {
	case !validTarget(target):
		return nil, ErrInvalidTarget
	case name == "":
		return nil, ErrInvalidName
	case cb == nil:
		return nil, ErrNilCallback
	case count != Unlimited && count <= 0:
		return nil, ErrInvalidCount
	}

	sub := newSubscription(target, name, cb, count)
	r.add(sub)
	return sub, nil
}

// add appends a subscription to its bucket, preserving registration order.
// A detached subscription is never re-added.
func (r *Registry) add(sub *Subscription) bool {
	if sub == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if sub.detached.Load() {
		return false
	}
	buckets, ok := r.targets[sub.target]
	if !ok {
		buckets = make(bucketSet)
		r.targets[sub.target] = buckets
	}
	buckets[sub.name] = append(buckets[sub.name], sub)
	r.count++
	return true
}

// Remove removes a specific subscription. It returns false if the
// subscription was not registered, so repeated removals are harmless.
func (r *Registry) Remove(sub *Subscription) bool {
	if sub == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	buckets, ok := r.targets[sub.target]
	if !ok {
		return false
	}
	subs := buckets[sub.name]
	i := slices.Index(subs, sub)
	if i < 0 {
		return false
	}
	r.removeAt(sub.target, sub.name, i)
	return true
}

// RemoveByName removes the whole (target, name) bucket.
// Returns the number of subscriptions removed.
func (r *Registry) RemoveByName(target Target, name string) int {
	if !validTarget(target) || name == "" {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	buckets, ok := r.targets[target]
	if !ok {
		return 0
	}
	subs, ok := buckets[name]
	if !ok {
		return 0
	}

	detachAll(subs)
	delete(buckets, name)
	if len(buckets) == 0 {
		delete(r.targets, target)
	}
	r.count -= len(subs)
	return len(subs)
}

// RemoveByCallback removes the first subscription in the (target, name)
// bucket whose callback has the same function identity as cb.
func (r *Registry) RemoveByCallback(target Target, name string, cb Callback) bool {
	if !validTarget(target) || name == "" || cb == nil {
		return false
	}
	id := callbackID(cb)

	r.mu.Lock()
	defer r.mu.Unlock()

	buckets, ok := r.targets[target]
	if !ok {
		return false
	}
	for i, sub := range buckets[name] {
		if callbackID(sub.callback) == id {
			r.removeAt(target, name, i)
			return true
		}
	}
	return false
}

// RemoveTarget removes every bucket owned by target.
// Returns the number of subscriptions removed.
func (r *Registry) RemoveTarget(target Target) int {
	if !validTarget(target) {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	buckets, ok := r.targets[target]
	if !ok {
		return 0
	}
	removed := 0
	for _, subs := range buckets {
		detachAll(subs)
		removed += len(subs)
	}
	delete(r.targets, target)
	r.count -= removed
	return removed
}

// Clear removes all subscriptions. When preserveGlobal is true the global
// scope's buckets are kept unchanged.
// Returns the number of subscriptions removed.
func (r *Registry) Clear(preserveGlobal bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	global, hasGlobal := r.targets[Global]

	removed := 0
	for target, buckets := range r.targets {
		if preserveGlobal && IsGlobal(target) {
			continue
		}
		for _, subs := range buckets {
			detachAll(subs)
			removed += len(subs)
		}
	}

	r.targets = make(map[Target]bucketSet)
	if preserveGlobal && hasGlobal {
		r.targets[Global] = global
	}
	r.count -= removed
	return removed
}

// Snapshot returns a copy of the (target, name) bucket in registration order.
// The copy may be iterated while the registry is modified.
func (r *Registry) Snapshot(target Target, name string) []*Subscription {
	if !validTarget(target) || name == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.targets[target][name]
	if len(subs) == 0 {
		return nil
	}
	return slices.Clone(subs)
}

// Has returns true if the (target, name) bucket has any subscriptions.
func (r *Registry) Has(target Target, name string) bool {
	return r.CountBucket(target, name) > 0
}

// Count returns the total number of subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.count
}

// CountTarget returns the number of subscriptions owned by target.
func (r *Registry) CountTarget(target Target) int {
	if !validTarget(target) {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, subs := range r.targets[target] {
		n += len(subs)
	}
	return n
}

// CountBucket returns the number of subscriptions in the (target, name) bucket.
func (r *Registry) CountBucket(target Target, name string) int {
	if !validTarget(target) || name == "" {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.targets[target][name])
}

// Targets returns all targets with at least one subscription.
func (r *Registry) Targets() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.targets) == 0 {
		return nil
	}
	targets := make([]Target, 0, len(r.targets))
	for t := range r.targets {
		targets = append(targets, t)
	}
	return targets
}

// Names returns the event names registered for target, sorted.
func (r *Registry) Names(target Target) []string {
	if !validTarget(target) {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	buckets := r.targets[target]
	if len(buckets) == 0 {
		return nil
	}
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// removeAt removes the i-th subscription of a bucket and drops emptied
// buckets. Caller must hold the write lock.
func (r *Registry) removeAt(target Target, name string, i int) {
	buckets := r.targets[target]
	subs := buckets[name]
	subs[i].detach()

	subs = slices.Delete(subs, i, i+1)
	if len(subs) == 0 {
		delete(buckets, name)
		if len(buckets) == 0 {
			delete(r.targets, target)
		}
	} else {
		buckets[name] = subs
	}
	r.count--
}

func detachAll(subs []*Subscription) {
	for _, sub := range subs {
		sub.detach()
	}
}
