package event

import (
	"reflect"

	"github.com/dshills/eventmgr/internal/event/dispatch"
)

// Unlimited is the invocation count of a subscription that never expires.
const Unlimited = -1

// Target scopes a set of subscriptions. Any comparable value may be used;
// pointer targets compare by reference.
type Target = any

// globalScope is the key type of the bus-wide scope. Being unexported and
// distinct from every caller type, it cannot collide with a caller's target.
type globalScope struct{}

// String returns the scope name.
func (globalScope) String() string { return "global" }

// Global is the target used for bus-wide events that have no owner.
var Global Target = globalScope{}

// Callback receives the arguments passed to Emit or EmitForAsync.
type Callback func(args ...any)

// dispatchable converts a Callback to the dispatcher's callback type.
func (c Callback) dispatchable() dispatch.Callback {
	return dispatch.Callback(c)
}

// validTarget reports whether t can be used as a registry key. Keys must be
// comparable and equal to themselves, which excludes NaN and values holding it.
func validTarget(t Target) bool {
	if t == nil {
		return false
	}
	if !reflect.ValueOf(t).Comparable() {
		return false
	}
	return t == t
}

// callbackID returns the code pointer of cb. Closures created from the
// same function literal share it, and so do method values of the same
// method regardless of receiver.
func callbackID(cb Callback) uintptr {
	return reflect.ValueOf(cb).Pointer()
}

// IsGlobal reports whether t is the global scope.
func IsGlobal(t Target) bool {
	_, ok := t.(globalScope)
	return ok
}
