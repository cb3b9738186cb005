package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dshills/memento/internal/event"
	"github.com/dshills/memento/internal/event/events"
)

// subscribeNarrator prints a line for each owner and history event.
func subscribeNarrator(bus event.Bus, out io.Writer) error {
	say := func(format string, args ...any) error {
		_, err := fmt.Fprintf(out, format, args...)
		return err
	}

	if _, err := bus.Subscribe(events.TopicOwnerInitialized, event.AsHandler(
		func(_ context.Context, ev event.Event[events.OwnerInitialized]) error {
			return say("Originator: My initial state is: %s\n", ev.Payload.State)
		})); err != nil {
		return err
	}
	if _, err := bus.Subscribe(events.TopicOwnerStateChanged, event.AsHandler(
		func(_ context.Context, ev event.Event[events.OwnerStateChanged]) error {
			return say("Originator: I'm doing something important.\nOriginator: and my state has changed to: %s\n", ev.Payload.State)
		})); err != nil {
		return err
	}
	if _, err := bus.Subscribe(events.TopicOwnerStateRestored, event.AsHandler(
		func(_ context.Context, ev event.Event[events.OwnerStateRestored]) error {
			return say("Originator: My state has changed to: %s\n", ev.Payload.State)
		})); err != nil {
		return err
	}
	if _, err := bus.Subscribe(events.TopicCheckpointSaved, event.AsHandler(
		func(_ context.Context, _ event.Event[events.CheckpointSaved]) error {
			return say("\nCaretaker: Saving Originator's state...\n")
		})); err != nil {
		return err
	}
	if _, err := bus.Subscribe(events.TopicRevertAttempt, event.AsHandler(
		func(_ context.Context, ev event.Event[events.RevertAttempt]) error {
			return say("Caretaker: Restoring state to: %s\n", ev.Payload.Label)
		})); err != nil {
		return err
	}
	_, err := bus.Subscribe(events.TopicRevertSkipped, event.AsHandler(
		func(_ context.Context, ev event.Event[events.RevertSkipped]) error {
			return say("Caretaker: Discarding %s: %v\n", ev.Payload.Label, ev.Payload.Err)
		}))
	return err
}
