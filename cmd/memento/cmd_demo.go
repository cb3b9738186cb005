package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// runDemo checkpoints and mutates three times, lists the history and
// rolls back twice.
func runDemo(cmd *cobra.Command, opts *options) (err error) {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { err = a.finish(err) }()

	ctx := cmd.Context()
	eng, err := a.newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	for range 3 {
		if _, err := eng.Checkpoint(ctx); err != nil {
			return err
		}
		if err := eng.Mutate(ctx); err != nil {
			return err
		}
	}

	out := opts.stdout
	fmt.Fprintln(out)
	if err := writeCheckpoints(out, opts.format, eng.Checkpoints()); err != nil {
		return err
	}

	fmt.Fprint(out, "\nClient: Now, let's rollback!\n\n")
	if _, err := eng.Revert(ctx); err != nil {
		return err
	}

	fmt.Fprint(out, "\nClient: Once more!\n\n")
	_, err = eng.Revert(ctx)
	return err
}
