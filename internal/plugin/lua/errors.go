package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrFunctionNotFound is returned when a called global is missing or not a function.
	ErrFunctionNotFound = errors.New("lua function not found")

	// ErrInvalidResult is returned when next_state does not return a string.
	ErrInvalidResult = errors.New("generator returned a non-string value")

	// ErrNoSource is returned by Reload on a generator built from a string.
	ErrNoSource = errors.New("generator has no script file")
)
