package app

import "errors"

// Application errors.
var (
	// ErrInitialization indicates the dependency graph could not be built.
	ErrInitialization = errors.New("initialization failed")

	// ErrShutdown indicates a stop hook failed or timed out.
	ErrShutdown = errors.New("shutdown failed")
)
