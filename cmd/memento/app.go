package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dshills/memento/internal/config"
	"github.com/dshills/memento/internal/engine"
	"github.com/dshills/memento/internal/event"
	"github.com/dshills/memento/internal/logging"
	"github.com/dshills/memento/internal/metrics"
)

// app holds the wiring shared by the subcommands.
type app struct {
	opts     *options
	cfg      *config.Config
	logger   *slog.Logger
	bus      event.Bus
	registry *prometheus.Registry
}

// newApp resolves configuration (defaults, file, environment, flags) and
// wires logging, metrics and narration onto a fresh event bus.
func newApp(cmd *cobra.Command, opts *options) (*app, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, opts.stderr)
	if err != nil {
		return nil, err
	}

	bus := event.NewBus(event.WithPanicHandler(func(ev any, recovered any) {
		logger.Error("event handler panicked",
			"topic", event.ToEnvelope(ev).Topic, "panic", recovered)
	}))
	if _, err := logging.Subscribe(bus, logger); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	if _, err := metrics.New(registry).Subscribe(bus); err != nil {
		return nil, err
	}

	if err := subscribeNarrator(bus, opts.stdout); err != nil {
		return nil, err
	}

	return &app{
		opts:     opts,
		cfg:      cfg,
		logger:   logger,
		bus:      bus,
		registry: registry,
	}, nil
}

// loadConfig applies the config file, then MEMENTO_* variables, then any
// flags set on the command line.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}
	if flags.Changed("seed") {
		seed := opts.seed
		cfg.Generator.Seed = &seed
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEngine builds an engine publishing on the app's bus.
func (a *app) newEngine(ctx context.Context) (*engine.Engine, error) {
	return engine.New(ctx, a.cfg,
		engine.WithPublisher(a.bus),
		engine.WithLogger(a.logger),
	)
}

// finish prints metrics when requested. err is the command's result and
// is returned joined with any reporting failure.
func (a *app) finish(err error) error {
	if !a.opts.metrics {
		return err
	}
	return errors.Join(err, metrics.WriteText(a.opts.stderr, a.registry))
}
