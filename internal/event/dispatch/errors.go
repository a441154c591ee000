package dispatch

import "errors"

// Sentinel errors for the dispatch package.
var (
	// ErrAlreadyRunning is returned when Start is called on a running dispatcher.
	ErrAlreadyRunning = errors.New("dispatcher is already running")

	// ErrNotRunning is returned when Stop is called on a stopped dispatcher.
	ErrNotRunning = errors.New("dispatcher is not running")
)
