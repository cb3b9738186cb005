package dispatcher

import (
	"context"
	"fmt"
	"io"

	"github.com/dshills/memento/internal/engine"
)

// Engine command names.
const (
	CommandMutate     = "mutate"
	CommandCheckpoint = "checkpoint"
	CommandRevert     = "revert"
	CommandList       = "list"
	CommandState      = "state"
)

// Engine is the part of *engine.Engine the engine commands drive.
type Engine interface {
	Mutate(ctx context.Context) error
	Checkpoint(ctx context.Context) (engine.Checkpoint, error)
	Revert(ctx context.Context) (engine.RevertResult, error)
	Checkpoints() []engine.Checkpoint
	State() string
}

// EngineCommands returns the commands that drive e. Commands that print
// (list, state) write to out.
func EngineCommands(e Engine, out io.Writer) []Command {
	return []Command{
		NewCommandFunc(CommandMutate, e.Mutate),
		NewCommandFunc(CommandCheckpoint, func(ctx context.Context) error {
			_, err := e.Checkpoint(ctx)
			return err
		}),
		NewCommandFunc(CommandRevert, func(ctx context.Context) error {
			_, err := e.Revert(ctx)
			return err
		}),
		NewCommandFunc(CommandList, func(context.Context) error {
			fmt.Fprintln(out, "Caretaker: Here's the list of mementos:")
			for _, cp := range e.Checkpoints() {
				if _, err := fmt.Fprintln(out, cp.Label); err != nil {
					return err
				}
			}
			return nil
		}),
		NewCommandFunc(CommandState, func(context.Context) error {
			_, err := fmt.Fprintln(out, e.State())
			return err
		}),
	}
}

// RegisterEngineCommands registers EngineCommands(e, out) on r.
func RegisterEngineCommands(r *Registry, e Engine, out io.Writer) error {
	for _, cmd := range EngineCommands(e, out) {
		if err := r.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}
