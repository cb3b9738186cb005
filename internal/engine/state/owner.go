package state

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/memento/internal/event"
	"github.com/dshills/memento/internal/event/events"
	"github.com/dshills/memento/internal/event/topic"
)

const eventSource = "owner"

// Owner holds the current state and is the only type that can read a
// Snapshot's captured value.
//
// Owner is single-writer: callers sharing one across goroutines must
// serialize access (see engine.Engine).
type Owner struct {
	current string

	generator  Generator
	validator  Validator
	publisher  event.Publisher
	now        func() time.Time
	labelWidth int
}

// Option configures an Owner.
type Option func(*Owner)

// WithGenerator sets the strategy used by Mutate.
func WithGenerator(g Generator) Option {
	return func(o *Owner) {
		if g != nil {
			o.generator = g
		}
	}
}

// WithValidator sets the check applied to a snapshot's value on Restore.
func WithValidator(v Validator) Option {
	return func(o *Owner) {
		o.validator = v
	}
}

// WithPublisher sets where owner events are published.
func WithPublisher(p event.Publisher) Option {
	return func(o *Owner) {
		if p != nil {
			o.publisher = p
		}
	}
}

// WithClock sets the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Owner) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLabelWidth sets how many runes of the state appear in snapshot labels.
func WithLabelWidth(n int) Option {
	return func(o *Owner) {
		if n > 0 {
			o.labelWidth = n
		}
	}
}

// NewOwner creates an owner with the given initial state and publishes
// owner.initialized. An empty initial state is a precondition violation.
func NewOwner(initial string, opts ...Option) (*Owner, error) {
	if initial == "" {
		return nil, fmt.Errorf("%w: initial state is empty", ErrPrecondition)
	}

	o := &Owner{
		current:    initial,
		publisher:  event.Discard,
		now:        time.Now,
		labelWidth: DefaultLabelWidth,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.generator == nil {
		o.generator = NewRandomGenerator()
	}

	publish(context.Background(), o.publisher, events.TopicOwnerInitialized, events.OwnerInitialized{State: initial})
	return o, nil
}

// State returns the current state.
func (o *Owner) State() string {
	return o.current
}

// Mutate replaces the current state with the generator's next value and
// publishes owner.state.changed. On generator failure the state is unchanged.
func (o *Owner) Mutate(ctx context.Context) error {
	next, err := o.generator.Next(ctx, o.current)
	if err != nil {
		return fmt.Errorf("generate next state: %w", err)
	}

	prev := o.current
	o.current = next
	publish(ctx, o.publisher, events.TopicOwnerStateChanged, events.OwnerStateChanged{State: next, Previous: prev})
	return nil
}

// Capture returns a snapshot of the current state. It does not change the
// owner.
func (o *Owner) Capture() *Snapshot {
	return newSnapshot(o.current, o.now(), o.labelWidth)
}

// Restore adopts the state held by snap and publishes owner.state.restored.
// It returns an *InvalidSnapshotError, leaving the state unchanged, when snap
// is nil, was not produced by Capture, or fails validation.
func (o *Owner) Restore(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return &InvalidSnapshotError{Reason: "nil snapshot"}
	}
	if !snap.valid() {
		return &InvalidSnapshotError{Reason: "snapshot was not captured by an owner"}
	}

	value := snap.state()
	if o.validator != nil {
		if err := o.validator(value); err != nil {
			return &InvalidSnapshotError{SnapshotID: snap.ID(), Reason: "validation failed", Err: err}
		}
	}

	o.current = value
	publish(ctx, o.publisher, events.TopicOwnerStateRestored, events.OwnerStateRestored{State: value, SnapshotID: snap.ID()})
	return nil
}

// publish sends a typed owner event. Publisher failures never affect state.
func publish[T any](ctx context.Context, p event.Publisher, t topic.Topic, payload T) {
	_ = p.Publish(ctx, event.NewEvent(t, payload, eventSource))
}
