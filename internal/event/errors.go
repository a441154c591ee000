package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event bus. The bus never returns them to callers of
// the registration API; they are reported to the logger when input is rejected.
var (
	// ErrInvalidTarget is returned when a target is nil or not comparable.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrInvalidName is returned when an event name is empty.
	ErrInvalidName = errors.New("invalid event name")

	// ErrNilCallback is returned when a nil callback is provided.
	ErrNilCallback = errors.New("callback cannot be nil")

	// ErrInvalidCount is returned when an invocation count is neither
	// Unlimited nor positive.
	ErrInvalidCount = errors.New("invocation count must be -1 or positive")

	// ErrHandlerPanic is matched by PanicError.
	ErrHandlerPanic = errors.New("handler panicked")
)

// PanicError describes a callback that panicked during dispatch.
type PanicError struct {
	// SubscriptionID is the ID of the subscription whose callback panicked.
	SubscriptionID string

	// Target is the subscription's target.
	Target Target

	// Name is the event name being emitted.
	Name string

	// Async is true if the panic happened during an asynchronous emit.
	Async bool

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic for subscription %s on %v/%s: %v", e.SubscriptionID, e.Target, e.Name, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
