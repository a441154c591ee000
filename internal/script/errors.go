package script

import "errors"

// Errors returned by the script host.
var (
	// ErrHostClosed is returned when operating on a closed host.
	ErrHostClosed = errors.New("script host is closed")

	// ErrTimeout is returned when a chunk exceeds the execution timeout.
	ErrTimeout = errors.New("script execution timeout")
)
