// Package dispatcher decouples code that triggers operations from the
// operations themselves.
//
// # Commands
//
// A Command is a named operation:
//
//	type Command interface {
//	    Name() string
//	    Execute(ctx context.Context) error
//	}
//
// SimpleCommand does its work alone. ComplexCommand delegates to a
// Receiver that holds the business logic. NewCommandFunc adapts a plain
// function.
//
// # Invoker
//
// An Invoker runs a piece of work between two optional hook commands:
//
//	inv := dispatcher.NewInvoker(dispatcher.WithPublisher(bus))
//	inv.SetOnStart(dispatcher.NewSimpleCommand("Say Hi!", os.Stdout))
//	inv.SetOnFinish(dispatcher.NewComplexCommand(receiver, "Send email", "Save report"))
//	err := inv.Run(ctx, work)
//
// The order is always on-start, work, on-finish. An empty slot is skipped.
// The first error stops the run and is returned wrapped in a *StepError
// naming the step that failed.
//
// # Registry
//
// Registry maps names to commands so they can be dispatched from text,
// as the CLI's run command does:
//
//	reg := dispatcher.NewRegistry()
//	dispatcher.RegisterEngineCommands(reg, eng, os.Stdout)
//	reg.Dispatch(ctx, "checkpoint")
package dispatcher
