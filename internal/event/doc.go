// Package event provides the synchronous event bus that carries every
// observable notification in memento.
//
// Owners and histories publish typed events; logging, metrics and the CLI
// narration subscribe to them. Delivery is synchronous and happens in the
// publisher's goroutine, so subscribers observe events in exactly the order
// the state changes happened:
//
//	bus := event.NewBus()
//	sub, _ := bus.SubscribeFunc("owner.**", func(ctx context.Context, ev any) error {
//	    env := event.ToEnvelope(ev)
//	    fmt.Println(env.Topic, env.Payload)
//	    return nil
//	})
//	defer bus.Unsubscribe(sub)
//
// # Topics
//
// Topics are hierarchical dot-separated names (see package topic). The
// topics published by the engine are declared in package events.
//
// # Failure isolation
//
// Handler errors and panics are counted in Stats but never propagate to the
// publisher: a broken subscriber cannot make a state change fail.
package event
