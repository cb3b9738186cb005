package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/memento/internal/event/topic"
)

// Bus is the central event bus interface.
type Bus interface {
	Publisher

	Subscribe(pattern topic.Topic, handler Handler) (Subscription, error)
	SubscribeFunc(pattern topic.Topic, fn HandlerFunc) (Subscription, error)
	Unsubscribe(sub Subscription) error

	Stats() Stats
}

// bus is the default Bus implementation. Handlers run in the publisher's
// goroutine in subscription order.
type bus struct {
	mu   sync.RWMutex
	subs []*subscription

	config busConfig

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates a new synchronous event bus.
func NewBus(opts ...BusOption) Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &bus{config: config}
}

// Publish delivers an event to every matching subscription before returning.
// Handler failures are counted, not returned.
func (b *bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || !tp.EventTopic().IsValid() {
		return ErrInvalidEvent
	}
	eventTopic := tp.EventTopic()

	// Snapshot matches so handlers may subscribe or publish re-entrantly.
	b.mu.RLock()
	var matched []*subscription
	for _, sub := range b.subs {
		if sub.IsActive() && eventTopic.Matches(sub.pattern) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	if len(matched) == 0 {
		return nil
	}
	b.eventsPublished.Add(1)

	for _, sub := range matched {
		if !sub.IsActive() {
			continue
		}
		if err := b.dispatch(ctx, event, sub.handler); err != nil {
			b.handlerErrors.Add(1)
			continue
		}
		b.eventsDelivered.Add(1)
	}
	return nil
}

// dispatch runs a handler with panic recovery.
func (b *bus) dispatch(ctx context.Context, event any, h Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			if b.config.panicHandler != nil {
				b.config.panicHandler(event, r)
			}
			err = &PanicError{Value: r}
		}
	}()
	return h.Handle(ctx, event)
}

// Subscribe registers a handler for a topic pattern.
func (b *bus) Subscribe(pattern topic.Topic, handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := newSubscription(uuid.NewString(), pattern, handler)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function handler.
func (b *bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn)
}

// Unsubscribe cancels and removes a subscription.
func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.ID() {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Stats returns current bus statistics.
func (b *bus) Stats() Stats {
	b.mu.RLock()
	active := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: active,
	}
}
