package dispatch

import (
	"runtime/debug"
	"time"
)

// Executor handles the actual execution of callbacks with
// panic recovery and timing.
type Executor struct{}

// NewExecutor creates a new executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs a callback with the given arguments and returns the result.
// It recovers from panics and captures timing information.
func (e *Executor) Execute(cb Callback, args []any) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			result.Success = false
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = debug.Stack()
		}
	}()

	cb(args...)
	result.Success = true

	return result
}
