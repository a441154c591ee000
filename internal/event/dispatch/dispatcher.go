package dispatch

import "time"

// Callback is the function shape executed by the dispatchers.
// This mirrors event.Callback to avoid circular imports.
type Callback func(args ...any)

// Result represents the outcome of a callback invocation.
type Result struct {
	// Success is true if the callback returned normally.
	Success bool

	// Panicked is true if the callback panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is how long the callback took to execute.
	Duration time.Duration
}

// IsSuccess returns true if the callback completed without panicking.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked
}

// IsPanic returns true if the callback panicked.
func (r Result) IsPanic() bool {
	return r.Panicked
}

// CompletionFunc is called on the worker goroutine after an asynchronous
// invocation has finished, whether it succeeded or panicked.
type CompletionFunc func(Result)
