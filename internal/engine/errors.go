package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrNotReloadable indicates the active generator cannot be reloaded.
	ErrNotReloadable = errors.New("generator is not reloadable")

	// ErrClosed indicates an operation on a closed engine.
	ErrClosed = errors.New("engine is closed")
)
