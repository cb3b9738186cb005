package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/memento/internal/config"
	"github.com/dshills/memento/internal/engine/history"
	"github.com/dshills/memento/internal/engine/state"
	"github.com/dshills/memento/internal/event"
	"github.com/dshills/memento/internal/plugin/lua"
)

// Re-export commonly used types for convenience.
type (
	// Checkpoint is the metadata of a stored snapshot.
	Checkpoint = history.Checkpoint

	// RevertResult reports the outcome of a revert.
	RevertResult = history.RevertResult

	// Generator produces the owner's next state.
	Generator = state.Generator
)

// reloader is implemented by generators that can re-read their source.
type reloader interface {
	Reload(ctx context.Context) error
}

// Engine serializes access to one owner and its history.
type Engine struct {
	mu sync.Mutex

	owner   *state.Owner
	history *history.History

	// queue collects owner and history events while mu is held; they are
	// published to publisher after mu is released.
	queue *event.Queue

	// Configuration
	publisher event.Publisher
	logger    *slog.Logger
	generator state.Generator
	validator state.Validator
	now       func() time.Time

	// closers are released by Close, in order.
	closers []io.Closer
	closed  bool
}

// New creates an engine from cfg. The config is validated first.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		queue:     event.NewQueue(),
		publisher: event.Discard,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.generator == nil {
		gen, err := e.buildGenerator(ctx, cfg.Generator)
		if err != nil {
			return nil, err
		}
		e.generator = gen
	}

	owner, err := state.NewOwner(cfg.Owner.InitialState,
		state.WithGenerator(e.generator),
		state.WithValidator(e.validator),
		state.WithPublisher(e.queue),
		state.WithClock(e.now),
		state.WithLabelWidth(cfg.Owner.LabelWidth),
	)
	if err != nil {
		e.closeAll()
		return nil, err
	}

	h, err := history.New(owner,
		history.WithMaxEntries(cfg.History.MaxEntries),
		history.WithPublisher(e.queue),
		history.WithLogger(e.logger),
	)
	if err != nil {
		e.closeAll()
		return nil, err
	}

	e.owner = owner
	e.history = h
	_ = event.PublishAll(ctx, e.publisher, e.queue.Drain())
	return e, nil
}

// buildGenerator creates the generator named by cfg.Kind.
func (e *Engine) buildGenerator(ctx context.Context, cfg config.GeneratorConfig) (state.Generator, error) {
	switch cfg.Kind {
	case config.GeneratorSequence:
		return state.NewSequenceGenerator(cfg.Values...), nil

	case config.GeneratorLua:
		gen, err := lua.LoadGenerator(ctx, cfg.Script)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, gen)
		return gen, nil

	case config.GeneratorRandom, "":
		opts := []state.RandomOption{
			state.WithLength(cfg.Length),
			state.WithAlphabet(cfg.Alphabet),
		}
		if cfg.Seed != nil {
			opts = append(opts, state.WithSeed(*cfg.Seed))
		}
		return state.NewRandomGenerator(opts...), nil

	default:
		return nil, fmt.Errorf("unknown generator kind %q", cfg.Kind)
	}
}

// Mutate replaces the owner's state with the generator's next value.
func (e *Engine) Mutate(ctx context.Context) error {
	return e.do(ctx, func() error {
		return e.owner.Mutate(ctx)
	})
}

// Checkpoint saves the owner's current state to the history.
func (e *Engine) Checkpoint(ctx context.Context) (Checkpoint, error) {
	var cp Checkpoint
	err := e.do(ctx, func() (err error) {
		cp, err = e.history.Checkpoint(ctx)
		return err
	})
	return cp, err
}

// Revert restores the newest snapshot the owner accepts.
func (e *Engine) Revert(ctx context.Context) (RevertResult, error) {
	var res RevertResult
	err := e.do(ctx, func() (err error) {
		res, err = e.history.Revert(ctx)
		return err
	})
	return res, err
}

// do runs fn under the engine lock, then publishes the events fn produced
// once the lock is released so handlers may call back into the engine.
// Each call's events stay in order; events of concurrent calls may
// interleave on the publisher.
func (e *Engine) do(ctx context.Context, fn func() error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	err := fn()
	pending := e.queue.Drain()
	e.mu.Unlock()

	_ = event.PublishAll(ctx, e.publisher, pending)
	return err
}

// Checkpoints returns the stored checkpoints, oldest first.
func (e *Engine) Checkpoints() []Checkpoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.List()
}

// State returns the owner's current state.
func (e *Engine) State() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.owner.State()
}

// Len returns the number of stored checkpoints.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Len()
}

// MaxEntries returns the history bound.
func (e *Engine) MaxEntries() int {
	return e.history.MaxEntries()
}

// ReloadGenerator re-reads a file-backed generator. Other generators
// return ErrNotReloadable.
func (e *Engine) ReloadGenerator(ctx context.Context) error {
	r, ok := e.generator.(reloader)
	if !ok {
		return ErrNotReloadable
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	return r.Reload(ctx)
}

// Close releases generator resources. Further operations return ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	return e.closeAll()
}

func (e *Engine) closeAll() error {
	var first error
	for _, c := range e.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}
