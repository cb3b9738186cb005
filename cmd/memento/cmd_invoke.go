package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/memento/internal/dispatcher"
)

// runInvoke runs an invoker whose start hook is a simple command and whose
// finish hook delegates to a receiver.
func runInvoke(cmd *cobra.Command, opts *options) (err error) {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { err = a.finish(err) }()

	out := opts.stdout
	invoker := dispatcher.NewInvoker(
		dispatcher.WithPublisher(a.bus),
		dispatcher.WithNarration(out),
	)
	invoker.SetOnStart(dispatcher.NewSimpleCommand("Say Hi!", out))

	receiver := &dispatcher.PrintingReceiver{Out: out}
	finish := dispatcher.NewComplexCommand(receiver, "Send email", "Save report")
	finish.Out = out
	invoker.SetOnFinish(finish)

	return invoker.Run(cmd.Context(), nil)
}
