package events

import (
	"github.com/google/uuid"

	"github.com/dshills/memento/internal/event/topic"
)

// Owner event topics.
const (
	// TopicOwnerInitialized is published once when an owner is constructed.
	TopicOwnerInitialized topic.Topic = "owner.initialized"

	// TopicOwnerStateChanged is published after the owner mutates its state.
	TopicOwnerStateChanged topic.Topic = "owner.state.changed"

	// TopicOwnerStateRestored is published after the owner adopts a snapshot's state.
	TopicOwnerStateRestored topic.Topic = "owner.state.restored"
)

// OwnerInitialized is the payload for TopicOwnerInitialized.
type OwnerInitialized struct {
	State string
}

// OwnerStateChanged is the payload for TopicOwnerStateChanged.
type OwnerStateChanged struct {
	State    string
	Previous string
}

// OwnerStateRestored is the payload for TopicOwnerStateRestored.
type OwnerStateRestored struct {
	State      string
	SnapshotID uuid.UUID
}
