package events

import (
	"github.com/google/uuid"

	"github.com/dshills/memento/internal/event/topic"
)

// History event topics.
const (
	// TopicCheckpointSaved is published after a snapshot is pushed.
	TopicCheckpointSaved topic.Topic = "history.checkpoint.saved"

	// TopicCheckpointEvicted is published when the bound is exceeded and the
	// oldest snapshot is dropped.
	TopicCheckpointEvicted topic.Topic = "history.checkpoint.evicted"

	// TopicRevertAttempt is published after a snapshot is popped and before
	// the owner is asked to restore it.
	TopicRevertAttempt topic.Topic = "history.revert.attempt"

	// TopicRevertSkipped is published when a popped snapshot fails to restore
	// and is discarded.
	TopicRevertSkipped topic.Topic = "history.revert.skipped"
)

// CheckpointSaved is the payload for TopicCheckpointSaved.
type CheckpointSaved struct {
	SnapshotID uuid.UUID
	Label      string
	Depth      int
}

// CheckpointEvicted is the payload for TopicCheckpointEvicted.
type CheckpointEvicted struct {
	SnapshotID uuid.UUID
	Label      string
}

// RevertAttempt is the payload for TopicRevertAttempt.
type RevertAttempt struct {
	SnapshotID uuid.UUID
	Label      string
	Remaining  int
}

// RevertSkipped is the payload for TopicRevertSkipped.
type RevertSkipped struct {
	SnapshotID uuid.UUID
	Label      string
	Err        error
}
