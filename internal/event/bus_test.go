package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dshills/memento/internal/event/topic"
)

func TestBus_PublishDeliversInOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	_, err := bus.SubscribeFunc("owner.**", func(_ context.Context, ev any) error {
		got = append(got, "first:"+ToEnvelope(ev).Topic.String())
		return nil
	})
	if err != nil {
		t.Fatalf("SubscribeFunc() error = %v", err)
	}
	_, _ = bus.SubscribeFunc("owner.state.*", func(_ context.Context, ev any) error {
		got = append(got, "second:"+ToEnvelope(ev).Topic.String())
		return nil
	})

	ctx := context.Background()
	_ = bus.Publish(ctx, NewEvent(topic.Topic("owner.initialized"), "s", "test"))
	_ = bus.Publish(ctx, NewEvent(topic.Topic("owner.state.changed"), "s", "test"))

	want := []string{
		"first:owner.initialized",
		"first:owner.state.changed",
		"second:owner.state.changed",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBus_PublishInvalidEvent(t *testing.T) {
	bus := NewBus()
	if err := bus.Publish(context.Background(), "plain string"); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestBus_SubscribeValidation(t *testing.T) {
	bus := NewBus()

	if _, err := bus.Subscribe("owner.*", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
	if _, err := bus.SubscribeFunc("", func(context.Context, any) error { return nil }); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("expected ErrInvalidTopic, got %v", err)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	sub, _ := bus.SubscribeFunc("**", func(context.Context, any) error {
		calls++
		return nil
	})

	ctx := context.Background()
	_ = bus.Publish(ctx, NewEvent(topic.Topic("history.checkpoint.saved"), 1, "test"))
	if err := bus.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	_ = bus.Publish(ctx, NewEvent(topic.Topic("history.checkpoint.saved"), 2, "test"))

	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
	if err := bus.Unsubscribe(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
	}
	if err := bus.Unsubscribe(nil); !errors.Is(err, ErrInvalidSubscription) {
		t.Errorf("expected ErrInvalidSubscription, got %v", err)
	}
}

func TestBus_HandlerFailuresAreIsolated(t *testing.T) {
	var recovered any
	bus := NewBus(WithPanicHandler(func(_ any, r any) { recovered = r }))

	_, _ = bus.SubscribeFunc("**", func(context.Context, any) error {
		return errors.New("boom")
	})
	_, _ = bus.SubscribeFunc("**", func(context.Context, any) error {
		panic("kaboom")
	})
	delivered := false
	_, _ = bus.SubscribeFunc("**", func(context.Context, any) error {
		delivered = true
		return nil
	})

	if err := bus.Publish(context.Background(), NewEvent(topic.Topic("owner.initialized"), "s", "test")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !delivered {
		t.Error("healthy handler was not called")
	}
	if recovered != "kaboom" {
		t.Errorf("panic handler got %v", recovered)
	}

	stats := bus.Stats()
	if stats.EventsPublished != 1 {
		t.Errorf("EventsPublished = %d, want 1", stats.EventsPublished)
	}
	if stats.EventsDelivered != 1 {
		t.Errorf("EventsDelivered = %d, want 1", stats.EventsDelivered)
	}
	if stats.HandlerErrors != 2 {
		t.Errorf("HandlerErrors = %d, want 2", stats.HandlerErrors)
	}
	if stats.HandlerPanics != 1 {
		t.Errorf("HandlerPanics = %d, want 1", stats.HandlerPanics)
	}
	if stats.ActiveSubscribers != 3 {
		t.Errorf("ActiveSubscribers = %d, want 3", stats.ActiveSubscribers)
	}
}

func TestBus_TypedHandler(t *testing.T) {
	bus := NewBus()
	var depth int
	_, _ = bus.Subscribe("history.**", AsHandler(func(_ context.Context, ev Event[testPayload]) error {
		depth = ev.Payload.Depth
		return nil
	}))

	ctx := context.Background()
	_ = bus.Publish(ctx, NewEvent(topic.Topic("history.checkpoint.saved"), "wrong type", "test"))
	_ = bus.Publish(ctx, NewEvent(topic.Topic("history.checkpoint.saved"), testPayload{Depth: 7}, "test"))

	if depth != 7 {
		t.Errorf("depth = %d, want 7", depth)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()
	rec := NewRecorder()
	_, _ = bus.Subscribe("**", rec)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), NewEvent(topic.Topic("owner.state.changed"), i, "test"))
		}()
	}
	wg.Wait()

	if n := len(rec.Events()); n != 20 {
		t.Errorf("recorded %d events, want 20", n)
	}
}
