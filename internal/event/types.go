package event

import "context"

// Handler processes a published event.
type Handler interface {
	// Handle processes an event. The event is type-erased; handlers type-assert
	// to Event[T] or use ToEnvelope.
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// TypedHandlerFunc handles events with a known payload type.
type TypedHandlerFunc[T any] func(ctx context.Context, event Event[T]) error

// AsHandler converts a TypedHandlerFunc to a generic Handler.
// Events with a different payload type are skipped.
func AsHandler[T any](fn TypedHandlerFunc[T]) Handler {
	return HandlerFunc(func(ctx context.Context, event any) error {
		if e, ok := event.(Event[T]); ok {
			return fn(ctx, e)
		}
		return nil
	})
}

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, any) error { return nil }

// Stats contains event bus counters.
type Stats struct {
	// EventsPublished is the number of events that had at least one subscriber.
	EventsPublished uint64

	// EventsDelivered is the number of successful handler executions.
	EventsDelivered uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// ActiveSubscribers is the current number of subscriptions.
	ActiveSubscribers int
}

// PanicHandler is called when a handler panics.
type PanicHandler func(event any, recovered any)
