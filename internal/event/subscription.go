package event

import (
	"sync/atomic"

	"github.com/dshills/memento/internal/event/topic"
)

// Subscription represents a registered handler.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Topic returns the subscribed topic pattern.
	Topic() topic.Topic

	// IsActive returns true until the subscription is cancelled.
	IsActive() bool

	// Cancel stops delivery to this subscription.
	Cancel()
}

type subscription struct {
	id        string
	pattern   topic.Topic
	handler   Handler
	cancelled atomic.Bool
}

func newSubscription(id string, pattern topic.Topic, handler Handler) *subscription {
	return &subscription{id: id, pattern: pattern, handler: handler}
}

func (s *subscription) ID() string         { return s.id }
func (s *subscription) Topic() topic.Topic { return s.pattern }
func (s *subscription) IsActive() bool     { return !s.cancelled.Load() }
func (s *subscription) Cancel()            { s.cancelled.Store(true) }
