package event

import (
	"context"
	"errors"
	"sync"
)

// Queue is a Publisher that holds events until they are drained.
//
// Components that publish while holding a lock give their collaborators a
// Queue, drain it before unlocking and hand the batch to PublishAll after
// unlocking. Handlers can then call back into the component.
type Queue struct {
	mu      sync.Mutex
	pending []any
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Publish queues the event.
func (q *Queue) Publish(_ context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || !tp.EventTopic().IsValid() {
		return ErrInvalidEvent
	}
	q.mu.Lock()
	q.pending = append(q.pending, event)
	q.mu.Unlock()
	return nil
}

// Drain removes and returns the queued events in publish order.
func (q *Queue) Drain() []any {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// PublishAll publishes events to p in order. Every event is attempted;
// failures are joined.
func PublishAll(ctx context.Context, p Publisher, events []any) error {
	var errs []error
	for _, ev := range events {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
