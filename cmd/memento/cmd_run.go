package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/memento/internal/config"
	"github.com/dshills/memento/internal/config/watcher"
	"github.com/dshills/memento/internal/dispatcher"
	"github.com/dshills/memento/internal/engine"
)

// runSteps dispatches each step through a registry bound to one engine.
func runSteps(cmd *cobra.Command, opts *options, steps []string, watch bool, interval time.Duration) (err error) {
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

	registry := dispatcher.NewRegistry()
	if err := dispatcher.RegisterEngineCommands(registry, eng, opts.stdout); err != nil {
		return err
	}
	if opts.format != formatText {
		list := dispatcher.NewCommandFunc(dispatcher.CommandList, func(context.Context) error {
			return writeCheckpoints(opts.stdout, opts.format, eng.Checkpoints())
		})
		if err := registry.Register(list); err != nil {
			return err
		}
	}

	// Fail before running anything if a step is misspelled
	for _, step := range steps {
		if !registry.Has(step) {
			return fmt.Errorf("%w: %q (known: %v)", dispatcher.ErrUnknownCommand, step, registry.List())
		}
	}

	if watch {
		stopWatch, err := a.watchScript(ctx, eng)
		if err != nil {
			return err
		}
		defer stopWatch()
	}

	for i, step := range steps {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		a.logger.Debug("dispatching step", "step", step, "index", i)
		if err := registry.Dispatch(ctx, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
	}
	return nil
}

// watchScript reloads the Lua generator whenever its script changes.
func (a *app) watchScript(ctx context.Context, eng *engine.Engine) (func(), error) {
	if a.cfg.Generator.Kind != config.GeneratorLua {
		return nil, fmt.Errorf("--watch requires the %q generator, have %q",
			config.GeneratorLua, a.cfg.Generator.Kind)
	}

	w, err := watcher.New()
	if err != nil {
		return nil, err
	}
	if err := w.Watch(a.cfg.Generator.Script); err != nil {
		_ = w.Close()
		return nil, err
	}

	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			a.logger.Warn("generator script went away", "path", ev.Path, "op", ev.Op.String())
			return
		}
		if err := eng.ReloadGenerator(ctx); err != nil {
			a.logger.Warn("generator reload failed", "path", ev.Path, "error", err)
			return
		}
		a.logger.Info("generator reloaded", "path", ev.Path)
	})
	w.OnError(func(err error) {
		a.logger.Warn("script watcher error", "path", a.cfg.Generator.Script, "error", err)
	})
	w.Start(ctx)

	return func() { _ = w.Close() }, nil
}
