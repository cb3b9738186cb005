package dispatcher

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dshills/memento/internal/event"
	"github.com/dshills/memento/internal/event/events"
)

const eventSource = "invoker"

// Work is the operation an Invoker runs between its hooks.
type Work func(ctx context.Context) error

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithPublisher sets where invoker events are published.
func WithPublisher(p event.Publisher) InvokerOption {
	return func(inv *Invoker) {
		if p != nil {
			inv.publisher = p
		}
	}
}

// WithNarration makes the invoker describe each step on w.
func WithNarration(w io.Writer) InvokerOption {
	return func(inv *Invoker) {
		inv.out = w
	}
}

// Invoker runs work between an optional on-start and on-finish command.
// It is safe for concurrent use; hooks may be replaced between runs.
type Invoker struct {
	mu       sync.RWMutex
	onStart  Command
	onFinish Command

	publisher event.Publisher
	out       io.Writer
}

// NewInvoker creates an invoker with empty hook slots.
func NewInvoker(opts ...InvokerOption) *Invoker {
	inv := &Invoker{publisher: event.Discard}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// SetOnStart sets the command run before the work. Nil clears the slot.
func (inv *Invoker) SetOnStart(cmd Command) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.onStart = cmd
}

// SetOnFinish sets the command run after the work. Nil clears the slot.
func (inv *Invoker) SetOnFinish(cmd Command) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.onFinish = cmd
}

// Run executes on-start, work and on-finish in that order. Nil steps are
// skipped. The first failure stops the run and is returned as a
// *StepError. invoker.started is published before on-start and
// invoker.finished once the run ends, carrying the run's error.
func (inv *Invoker) Run(ctx context.Context, work Work) (err error) {
	inv.mu.RLock()
	onStart, onFinish := inv.onStart, inv.onFinish
	inv.mu.RUnlock()

	_ = inv.publisher.Publish(ctx, event.NewEvent(events.TopicInvokerStarted,
		events.InvokerPhase{Command: nameOf(onStart)}, eventSource))
	defer func() {
		_ = inv.publisher.Publish(ctx, event.NewEvent(events.TopicInvokerFinished,
			events.InvokerPhase{Command: nameOf(onFinish), Err: err}, eventSource))
	}()

	inv.narrate("Invoker: Does anybody want something done before I begin?")
	if onStart != nil {
		if err := execute(ctx, onStart.Execute); err != nil {
			return &StepError{Step: StepOnStart, Command: onStart.Name(), Err: err}
		}
	}

	inv.narrate("Invoker: ...doing something really important...")
	if work != nil {
		if err := execute(ctx, work); err != nil {
			return &StepError{Step: StepWork, Err: err}
		}
	}

	inv.narrate("Invoker: Does anybody want something done after I finish?")
	if onFinish != nil {
		if err := execute(ctx, onFinish.Execute); err != nil {
			return &StepError{Step: StepOnFinish, Command: onFinish.Name(), Err: err}
		}
	}
	return nil
}

func (inv *Invoker) narrate(line string) {
	if inv.out != nil {
		fmt.Fprintln(inv.out, line)
	}
}

// execute runs fn, converting a panic into an ErrPanic error.
func execute(ctx context.Context, fn func(context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn(ctx)
}

func nameOf(cmd Command) string {
	if cmd == nil {
		return ""
	}
	return cmd.Name()
}
