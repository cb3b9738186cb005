package dispatcher

import (
	"context"
	"fmt"
	"io"
)

// Command is a named operation that can be executed on demand.
type Command interface {
	// Name identifies the command in registries, logs and errors.
	Name() string

	// Execute performs the operation.
	Execute(ctx context.Context) error
}

// commandFunc adapts a function to Command.
type commandFunc struct {
	name string
	fn   func(ctx context.Context) error
}

// NewCommandFunc returns a Command that calls fn.
func NewCommandFunc(name string, fn func(ctx context.Context) error) Command {
	return &commandFunc{name: name, fn: fn}
}

func (c *commandFunc) Name() string                      { return c.name }
func (c *commandFunc) Execute(ctx context.Context) error { return c.fn(ctx) }

// SimpleCommand does a small job on its own: it prints its payload.
type SimpleCommand struct {
	Payload string
	Out     io.Writer
}

// NewSimpleCommand creates a SimpleCommand writing to out.
func NewSimpleCommand(payload string, out io.Writer) *SimpleCommand {
	return &SimpleCommand{Payload: payload, Out: out}
}

// Name implements Command.
func (c *SimpleCommand) Name() string { return "simple" }

// Execute implements Command.
func (c *SimpleCommand) Execute(_ context.Context) error {
	_, err := fmt.Fprintf(c.Out, "SimpleCommand: See, I can do simple things like printing (%s)\n", c.Payload)
	return err
}

// Receiver holds the business logic complex commands delegate to.
type Receiver interface {
	DoSomething(ctx context.Context, a string) error
	DoSomethingElse(ctx context.Context, b string) error
}

// PrintingReceiver is a Receiver that reports its work to a writer.
type PrintingReceiver struct {
	Out io.Writer
}

// DoSomething implements Receiver.
func (r *PrintingReceiver) DoSomething(_ context.Context, a string) error {
	_, err := fmt.Fprintf(r.Out, "Receiver: Working on (%s).\n", a)
	return err
}

// DoSomethingElse implements Receiver.
func (r *PrintingReceiver) DoSomethingElse(_ context.Context, b string) error {
	_, err := fmt.Fprintf(r.Out, "Receiver: Also working on (%s).\n", b)
	return err
}

// ComplexCommand delegates its work to a Receiver.
type ComplexCommand struct {
	Receiver Receiver
	A, B     string

	// Out receives the command's own narration. Nil disables it.
	Out io.Writer
}

// NewComplexCommand creates a command that calls receiver with a, then b.
func NewComplexCommand(receiver Receiver, a, b string) *ComplexCommand {
	return &ComplexCommand{Receiver: receiver, A: a, B: b}
}

// Name implements Command.
func (c *ComplexCommand) Name() string { return "complex" }

// Execute implements Command. It stops at the first receiver error.
func (c *ComplexCommand) Execute(ctx context.Context) error {
	if c.Receiver == nil {
		return fmt.Errorf("%w: complex command has no receiver", ErrInvalidCommand)
	}
	if c.Out != nil {
		fmt.Fprintln(c.Out, "ComplexCommand: Complex stuff should be done by a receiver object.")
	}
	if err := c.Receiver.DoSomething(ctx, c.A); err != nil {
		return err
	}
	return c.Receiver.DoSomethingElse(ctx, c.B)
}
