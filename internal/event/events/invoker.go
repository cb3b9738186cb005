package events

import "github.com/dshills/memento/internal/event/topic"

// Invoker event topics.
const (
	// TopicInvokerStarted is published before the on-start command runs.
	TopicInvokerStarted topic.Topic = "invoker.started"

	// TopicInvokerFinished is published after the on-finish command runs.
	TopicInvokerFinished topic.Topic = "invoker.finished"
)

// InvokerPhase is the payload for invoker topics.
type InvokerPhase struct {
	// Command is the name of the command bound to the phase, empty if none.
	Command string
	Err     error
}
