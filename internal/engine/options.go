package engine

import (
	"log/slog"
	"time"

	"github.com/dshills/memento/internal/engine/state"
	"github.com/dshills/memento/internal/event"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithPublisher sets where owner and history events are published.
func WithPublisher(p event.Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

// WithLogger sets the logger passed to the history.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithGenerator overrides the configured generator.
func WithGenerator(g state.Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithValidator sets the owner's restore validator.
func WithValidator(v state.Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// WithClock sets the time source for snapshot labels.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}
