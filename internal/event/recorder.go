package event

import (
	"context"
	"sync"

	"github.com/dshills/memento/internal/event/topic"
)

// Recorder is a Publisher that keeps every event in publish order.
// It is used to assert event ordering in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Envelope
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish records the event.
func (r *Recorder) Publish(_ context.Context, event any) error {
	env := ToEnvelope(event)
	if env.Topic == "" {
		return ErrInvalidEvent
	}
	r.mu.Lock()
	r.events = append(r.events, env)
	r.mu.Unlock()
	return nil
}

// Handle lets a Recorder be subscribed to a Bus.
func (r *Recorder) Handle(ctx context.Context, event any) error {
	return r.Publish(ctx, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Envelope, len(r.events))
	copy(out, r.events)
	return out
}

// Topics returns the recorded topics in order.
func (r *Recorder) Topics() []topic.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]topic.Topic, len(r.events))
	for i, e := range r.events {
		out[i] = e.Topic
	}
	return out
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
