package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/memento/internal/event/topic"
)

// Event is an immutable notification with a typed payload.
type Event[T any] struct {
	// Type is the hierarchical event type (e.g., "owner.state.changed").
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	// ID uniquely identifies this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string
}

// NewEvent creates an event with a fresh ID and the current time.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// EventMetadata returns the event's metadata for type-erased handling.
func (e Event[T]) EventMetadata() Metadata {
	return e.Metadata
}

// EventPayload returns the payload as any.
func (e Event[T]) EventPayload() any {
	return e.Payload
}

// TopicProvider is implemented by types that carry a topic.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// Envelope is a type-erased view of an event.
type Envelope struct {
	Topic    topic.Topic
	Payload  any
	Metadata Metadata
}

// EventTopic implements TopicProvider so envelopes can be published directly.
func (e Envelope) EventTopic() topic.Topic {
	return e.Topic
}

// ToEnvelope converts an event to an Envelope.
// Returns an empty Envelope if the event doesn't carry a topic.
func ToEnvelope(event any) Envelope {
	if env, ok := event.(Envelope); ok {
		return env
	}
	tp, ok := event.(TopicProvider)
	if !ok {
		return Envelope{}
	}

	env := Envelope{Topic: tp.EventTopic(), Payload: event}
	if pp, ok := event.(interface{ EventPayload() any }); ok {
		env.Payload = pp.EventPayload()
	}
	if mp, ok := event.(interface{ EventMetadata() Metadata }); ok {
		env.Metadata = mp.EventMetadata()
	}
	return env
}
