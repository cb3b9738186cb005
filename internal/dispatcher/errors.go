package dispatcher

import (
	"errors"
	"fmt"
)

// Dispatcher errors.
var (
	// ErrUnknownCommand indicates no command is registered under a name.
	ErrUnknownCommand = errors.New("dispatcher: unknown command")

	// ErrPanic indicates a command panicked.
	ErrPanic = errors.New("dispatcher: command panic")

	// ErrInvalidCommand indicates a nil command or one without a name.
	ErrInvalidCommand = errors.New("dispatcher: invalid command")
)

// Invoker steps.
const (
	StepOnStart  = "on-start"
	StepWork     = "work"
	StepOnFinish = "on-finish"
)

// StepError reports which invoker step failed.
type StepError struct {
	// Step is StepOnStart, StepWork or StepOnFinish.
	Step string
	// Command is the hook command's name; empty for the work step.
	Command string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("%s command %q: %v", e.Step, e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}
