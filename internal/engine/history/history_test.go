package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dshills/memento/internal/engine/state"
	"github.com/dshills/memento/internal/event"
	"github.com/dshills/memento/internal/event/events"
	"github.com/dshills/memento/internal/event/topic"
)

const (
	initialState = "Super-duper-super-puper-super."
	invalidState = "INVALID"
)

// Helper to create an owner that yields values in order and rejects invalidState.
func newTestOwner(t *testing.T, p event.Publisher, values ...string) *state.Owner {
	t.Helper()
	opts := []state.Option{
		state.WithGenerator(state.NewSequenceGenerator(values...)),
		state.WithValidator(state.RejectValue(invalidState)),
	}
	if p != nil {
		opts = append(opts, state.WithPublisher(p))
	}
	o, err := state.NewOwner(initialState, opts...)
	if err != nil {
		t.Fatalf("NewOwner() error = %v", err)
	}
	return o
}

func newTestHistory(t *testing.T, owner Originator, opts ...Option) *History {
	t.Helper()
	h, err := New(owner, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return h
}

func mustCheckpoint(t *testing.T, h *History) Checkpoint {
	t.Helper()
	cp, err := h.Checkpoint(context.Background())
	if err != nil {
		t.Fatalf("Checkpoint() error = %v", err)
	}
	return cp
}

func mustMutate(t *testing.T, o *state.Owner) {
	t.Helper()
	if err := o.Mutate(context.Background()); err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}
}

func mustRevert(t *testing.T, h *History) RevertResult {
	t.Helper()
	res, err := h.Revert(context.Background())
	if err != nil {
		t.Fatalf("Revert() error = %v", err)
	}
	return res
}

// Construction Tests

func TestNewNilOwner(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, ErrNilOwner) {
		t.Errorf("expected ErrNilOwner, got %v", err)
	}
	if !errors.Is(err, state.ErrPrecondition) {
		t.Errorf("expected ErrPrecondition in chain, got %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	h := newTestHistory(t, newTestOwner(t, nil))
	if h.MaxEntries() != DefaultMaxEntries {
		t.Errorf("MaxEntries() = %d, want %d", h.MaxEntries(), DefaultMaxEntries)
	}
	if h.Len() != 0 || h.CanRevert() {
		t.Error("new history should be empty")
	}
	if _, ok := h.Peek(); ok {
		t.Error("Peek() on empty history should report false")
	}
}

// Revert Tests

func TestRevertLIFO(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			values := make([]string, n+1)
			for i := range values {
				values[i] = fmt.Sprintf("state-%d", i)
			}
			owner := newTestOwner(t, nil, values...)
			h := newTestHistory(t, owner)

			var cps []Checkpoint
			for i := 0; i < n; i++ {
				mustMutate(t, owner)
				cps = append(cps, mustCheckpoint(t, h))
			}
			mustMutate(t, owner)

			res := mustRevert(t, h)
			if !res.Restored || res.Skipped != 0 {
				t.Fatalf("result = %+v", res)
			}
			if owner.State() != values[n-1] {
				t.Errorf("State() = %q, want %q", owner.State(), values[n-1])
			}
			if res.Snapshot != cps[n-1] {
				t.Errorf("restored %v, want %v", res.Snapshot, cps[n-1])
			}

			list := h.List()
			if len(list) != n-1 {
				t.Fatalf("len(List()) = %d, want %d", len(list), n-1)
			}
			for i := range list {
				if list[i] != cps[i] {
					t.Errorf("List()[%d] = %v, want %v", i, list[i], cps[i])
				}
			}
		})
	}
}

func TestRevertEmpty(t *testing.T) {
	rec := event.NewRecorder()
	owner := newTestOwner(t, nil)
	h := newTestHistory(t, owner, WithPublisher(rec))

	for i := 0; i < 3; i++ {
		res := mustRevert(t, h)
		if res.Restored || res.Skipped != 0 {
			t.Errorf("revert %d: result = %+v", i, res)
		}
		if owner.State() != initialState {
			t.Errorf("revert %d: state changed to %q", i, owner.State())
		}
		if h.Len() != 0 {
			t.Errorf("revert %d: Len() = %d", i, h.Len())
		}
	}
	if n := len(rec.Events()); n != 0 {
		t.Errorf("empty revert published %d events", n)
	}
}

func TestRevertCascading(t *testing.T) {
	owner := newTestOwner(t, nil, invalidState, "third")
	h := newTestHistory(t, owner)

	s1 := mustCheckpoint(t, h)
	mustMutate(t, owner)
	s2 := mustCheckpoint(t, h)
	mustMutate(t, owner)
	mustCheckpoint(t, h)

	res := mustRevert(t, h)
	if !res.Restored || res.Skipped != 0 {
		t.Fatalf("first revert result = %+v", res)
	}
	if owner.State() != "third" {
		t.Errorf("State() = %q, want third", owner.State())
	}
	if list := h.List(); len(list) != 2 || list[0] != s1 || list[1] != s2 {
		t.Fatalf("List() = %v, want [S1 S2]", list)
	}

	res = mustRevert(t, h)
	if !res.Restored || res.Skipped != 1 {
		t.Fatalf("second revert result = %+v", res)
	}
	if res.Snapshot != s1 {
		t.Errorf("restored %v, want S1", res.Snapshot)
	}
	if owner.State() != initialState {
		t.Errorf("State() = %q, want initial state", owner.State())
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestRevertAllInvalid(t *testing.T) {
	owner := newTestOwner(t, nil, invalidState)
	h := newTestHistory(t, owner)

	mustMutate(t, owner)
	mustCheckpoint(t, h)
	mustCheckpoint(t, h)

	res := mustRevert(t, h)
	if res.Restored {
		t.Error("no snapshot should have been restored")
	}
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", res.Skipped)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
	if owner.State() != invalidState {
		t.Errorf("State() = %q, want unchanged", owner.State())
	}
}

func TestRevertManyInvalid(t *testing.T) {
	owner := newTestOwner(t, nil, invalidState)
	h := newTestHistory(t, owner, WithMaxEntries(100000))

	first := mustCheckpoint(t, h)
	mustMutate(t, owner)
	for i := 0; i < 50000; i++ {
		mustCheckpoint(t, h)
	}

	res := mustRevert(t, h)
	if !res.Restored || res.Skipped != 50000 || res.Snapshot != first {
		t.Errorf("result = %+v", res)
	}
}

func TestRevertCanceledContext(t *testing.T) {
	owner := newTestOwner(t, nil)
	h := newTestHistory(t, owner)
	mustCheckpoint(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.Revert(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if h.Len() != 1 {
		t.Error("canceled revert should not pop")
	}
	if _, err := h.Checkpoint(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// Checkpoint Tests

func TestScenario(t *testing.T) {
	owner, err := state.NewOwner(initialState, state.WithGenerator(state.NewRandomGenerator(state.WithSeed(1))))
	if err != nil {
		t.Fatalf("NewOwner() error = %v", err)
	}
	h := newTestHistory(t, owner)

	c1 := mustCheckpoint(t, h)
	mustMutate(t, owner)
	r1 := owner.State()
	c2 := mustCheckpoint(t, h)
	mustMutate(t, owner)
	r2 := owner.State()
	c3 := mustCheckpoint(t, h)

	if utf8.RuneCountInString(r1) != 30 || utf8.RuneCountInString(r2) != 30 {
		t.Errorf("generated states %q, %q should be 30 characters", r1, r2)
	}

	list := h.List()
	if len(list) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(list))
	}
	for i, want := range []Checkpoint{c1, c2, c3} {
		if list[i].Label != want.Label {
			t.Errorf("List()[%d].Label = %q, want %q", i, list[i].Label, want.Label)
		}
	}

	mustRevert(t, h)
	if owner.State() != r2 || h.Len() != 2 {
		t.Errorf("after first revert: state %q len %d", owner.State(), h.Len())
	}
	mustRevert(t, h)
	if owner.State() != r1 || h.Len() != 1 {
		t.Errorf("after second revert: state %q len %d", owner.State(), h.Len())
	}
}

func TestCheckpointBounded(t *testing.T) {
	const k, extra = 3, 4
	rec := event.NewRecorder()
	values := make([]string, k+extra)
	for i := range values {
		values[i] = fmt.Sprintf("v%d", i)
	}
	owner := newTestOwner(t, nil, values...)
	h := newTestHistory(t, owner, WithMaxEntries(k), WithPublisher(rec))

	var cps []Checkpoint
	for range values {
		mustMutate(t, owner)
		cps = append(cps, mustCheckpoint(t, h))
	}

	list := h.List()
	if len(list) != k {
		t.Fatalf("len(List()) = %d, want %d", len(list), k)
	}
	for i, cp := range list {
		if cp != cps[extra+i] {
			t.Errorf("List()[%d] = %v, want %v", i, cp, cps[extra+i])
		}
	}

	evicted := 0
	for _, e := range rec.Events() {
		if e.Topic == events.TopicCheckpointEvicted {
			evicted++
		}
	}
	if evicted != extra {
		t.Errorf("evicted events = %d, want %d", evicted, extra)
	}
}

func TestCheckpointEvent(t *testing.T) {
	rec := event.NewRecorder()
	h := newTestHistory(t, newTestOwner(t, nil), WithPublisher(rec))

	cp := mustCheckpoint(t, h)
	evs := rec.Events()
	if len(evs) != 1 || evs[0].Topic != events.TopicCheckpointSaved {
		t.Fatalf("events = %v", rec.Topics())
	}
	saved := evs[0].Payload.(events.CheckpointSaved)
	if saved.SnapshotID != cp.ID || saved.Label != cp.Label || saved.Depth != 1 {
		t.Errorf("payload = %+v", saved)
	}
}

func TestListIsCopy(t *testing.T) {
	h := newTestHistory(t, newTestOwner(t, nil))
	mustCheckpoint(t, h)

	list := h.List()
	list[0].Label = "changed"

	if got := h.List()[0].Label; got == "changed" {
		t.Error("List() returned internal storage")
	}
	if h.Len() != 1 {
		t.Error("List() should not mutate history")
	}
}

func TestPeek(t *testing.T) {
	h := newTestHistory(t, newTestOwner(t, nil))
	mustCheckpoint(t, h)
	want := mustCheckpoint(t, h)

	got, ok := h.Peek()
	if !ok || got != want {
		t.Errorf("Peek() = %v, %v; want %v", got, ok, want)
	}
	if h.Len() != 2 {
		t.Error("Peek() should not pop")
	}
}

// Event Ordering Tests

func TestRevertEventOrder(t *testing.T) {
	bus := event.NewBus()
	rec := event.NewRecorder()
	if _, err := bus.Subscribe(topic.WildcardMulti, rec); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	owner := newTestOwner(t, bus, invalidState)
	h := newTestHistory(t, owner, WithPublisher(bus))

	s1 := mustCheckpoint(t, h)
	mustMutate(t, owner)
	s2 := mustCheckpoint(t, h)
	rec.Reset()

	mustRevert(t, h)

	want := []topic.Topic{
		events.TopicRevertAttempt,
		events.TopicRevertSkipped,
		events.TopicRevertAttempt,
		events.TopicOwnerStateRestored,
	}
	evs := rec.Events()
	if len(evs) != len(want) {
		t.Fatalf("topics = %v, want %v", rec.Topics(), want)
	}
	for i := range want {
		if evs[i].Topic != want[i] {
			t.Errorf("topic[%d] = %v, want %v", i, evs[i].Topic, want[i])
		}
	}

	if a := evs[0].Payload.(events.RevertAttempt); a.SnapshotID != s2.ID || a.Remaining != 1 {
		t.Errorf("first attempt = %+v", a)
	}
	skipped := evs[1].Payload.(events.RevertSkipped)
	if skipped.SnapshotID != s2.ID || !errors.Is(skipped.Err, state.ErrInvalidSnapshot) {
		t.Errorf("skipped = %+v", skipped)
	}
	if a := evs[2].Payload.(events.RevertAttempt); a.SnapshotID != s1.ID || a.Remaining != 0 {
		t.Errorf("second attempt = %+v", a)
	}
}

func TestHandlersMayReadHistory(t *testing.T) {
	bus := event.NewBus()
	owner := newTestOwner(t, bus, invalidState)
	h := newTestHistory(t, owner, WithPublisher(bus))

	var seen []string
	readBack := func(ctx context.Context, ev any) error {
		env := event.ToEnvelope(ev)
		seen = append(seen, fmt.Sprintf("%s:%d", env.Topic, len(h.List())))
		h.Peek()
		return nil
	}
	for _, tp := range []topic.Topic{
		events.TopicCheckpointSaved,
		events.TopicRevertAttempt,
		events.TopicRevertSkipped,
		events.TopicOwnerStateRestored,
	} {
		if _, err := bus.SubscribeFunc(tp, readBack); err != nil {
			t.Fatalf("SubscribeFunc(%s) error = %v", tp, err)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx := context.Background()
		_, _ = h.Checkpoint(ctx)
		_ = owner.Mutate(ctx)
		_, _ = h.Checkpoint(ctx)
		_, _ = h.Revert(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("history operation blocked while a handler read the history")
	}

	want := []string{
		"history.checkpoint.saved:1",
		"history.checkpoint.saved:2",
		"history.revert.attempt:1",
		"history.revert.skipped:1",
		"history.revert.attempt:0",
		"owner.state.restored:0",
	}
	if fmt.Sprint(seen) != fmt.Sprint(want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
}
