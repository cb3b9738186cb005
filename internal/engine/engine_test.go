package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dshills/memento/internal/config"
	"github.com/dshills/memento/internal/engine/state"
	"github.com/dshills/memento/internal/event"
	"github.com/dshills/memento/internal/event/events"
	"github.com/dshills/memento/internal/event/topic"
)

func newTestEngine(t *testing.T, cfg *config.Config, opts ...Option) *Engine {
	t.Helper()
	e, err := New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func sequenceConfig(values ...string) *config.Config {
	cfg := config.Default()
	cfg.Generator.Kind = config.GeneratorSequence
	cfg.Generator.Values = values
	return cfg
}

func TestNewDefaults(t *testing.T) {
	e := newTestEngine(t, nil)

	if e.State() != config.DefaultInitialState {
		t.Errorf("State() = %q", e.State())
	}
	if e.Len() != 0 {
		t.Errorf("Len() = %d, want 0", e.Len())
	}
	if e.MaxEntries() != 1000 {
		t.Errorf("MaxEntries() = %d, want 1000", e.MaxEntries())
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Owner.InitialState = ""

	_, err := New(context.Background(), cfg)
	if !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestNewSeededRandom(t *testing.T) {
	seed := uint64(5)
	cfg := config.Default()
	cfg.Generator.Seed = &seed
	cfg.Generator.Length = 8

	a := newTestEngine(t, cfg)
	b := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = a.Mutate(ctx)
		_ = b.Mutate(ctx)
		if a.State() != b.State() {
			t.Fatalf("seeded engines diverged: %q vs %q", a.State(), b.State())
		}
	}
	if len(a.State()) != 8 {
		t.Errorf("state length = %d, want 8", len(a.State()))
	}
}

func TestEngineScenario(t *testing.T) {
	rec := event.NewRecorder()
	e := newTestEngine(t, sequenceConfig("R1", "R2", "R3"), WithPublisher(rec))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := e.Checkpoint(ctx); err != nil {
			t.Fatalf("Checkpoint() error = %v", err)
		}
		if err := e.Mutate(ctx); err != nil {
			t.Fatalf("Mutate() error = %v", err)
		}
	}

	cps := e.Checkpoints()
	if len(cps) != 3 {
		t.Fatalf("len(Checkpoints()) = %d, want 3", len(cps))
	}

	res, err := e.Revert(ctx)
	if err != nil || !res.Restored {
		t.Fatalf("Revert() = %+v, %v", res, err)
	}
	if e.State() != "R2" {
		t.Errorf("after first revert State() = %q, want R2", e.State())
	}
	if _, err := e.Revert(ctx); err != nil {
		t.Fatalf("Revert() error = %v", err)
	}
	if e.State() != "R1" {
		t.Errorf("after second revert State() = %q, want R1", e.State())
	}

	var restored int
	for _, ev := range rec.Events() {
		if ev.Topic == events.TopicOwnerStateRestored {
			restored++
		}
	}
	if restored != 2 {
		t.Errorf("restored events = %d, want 2", restored)
	}
}

func TestEngineValidator(t *testing.T) {
	e := newTestEngine(t, sequenceConfig("BAD", "good"), WithValidator(state.RejectValue("BAD")))
	ctx := context.Background()

	_, _ = e.Checkpoint(ctx)
	_ = e.Mutate(ctx)
	_, _ = e.Checkpoint(ctx)
	_ = e.Mutate(ctx)

	res, _ := e.Revert(ctx)
	if !res.Restored || res.Skipped != 1 {
		t.Errorf("Revert() = %+v", res)
	}
	if e.State() != config.DefaultInitialState {
		t.Errorf("State() = %q, want initial", e.State())
	}
}

func TestEngineWithGenerator(t *testing.T) {
	gen := state.GeneratorFunc(func(_ context.Context, prev string) (string, error) {
		return prev + "+", nil
	})
	e := newTestEngine(t, nil, WithGenerator(gen))

	_ = e.Mutate(context.Background())
	if e.State() != config.DefaultInitialState+"+" {
		t.Errorf("State() = %q", e.State())
	}
	if err := e.ReloadGenerator(context.Background()); !errors.Is(err, ErrNotReloadable) {
		t.Errorf("expected ErrNotReloadable, got %v", err)
	}
}

func TestEngineLuaGenerator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.lua")
	write := func(src string) {
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write(`function next_state(prev) return "one" end`)

	cfg := config.Default()
	cfg.Generator.Kind = config.GeneratorLua
	cfg.Generator.Script = path

	e := newTestEngine(t, cfg)
	ctx := context.Background()

	_ = e.Mutate(ctx)
	if e.State() != "one" {
		t.Errorf("State() = %q, want one", e.State())
	}

	write(`function next_state(prev) return "two" end`)
	if err := e.ReloadGenerator(ctx); err != nil {
		t.Fatalf("ReloadGenerator() error = %v", err)
	}
	_ = e.Mutate(ctx)
	if e.State() != "two" {
		t.Errorf("State() = %q, want two", e.State())
	}
}

func TestEngineLuaMissingScript(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.Kind = config.GeneratorLua
	cfg.Generator.Script = filepath.Join(t.TempDir(), "missing.lua")

	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("expected error for missing script")
	}
}

func TestEngineClosed(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	ctx := context.Background()

	if err := e.Mutate(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Mutate: expected ErrClosed, got %v", err)
	}
	if _, err := e.Checkpoint(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Checkpoint: expected ErrClosed, got %v", err)
	}
	if _, err := e.Revert(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Revert: expected ErrClosed, got %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestEngineConcurrent(t *testing.T) {
	cfg := config.Default()
	cfg.History.MaxEntries = 50
	e := newTestEngine(t, cfg)
	ctx := context.Background()

	const workers, rounds = 8, 100
	var checkpoints, restored sync.Map
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				switch (w + i) % 3 {
				case 0:
					_ = e.Mutate(ctx)
				case 1:
					if _, err := e.Checkpoint(ctx); err != nil {
						t.Errorf("Checkpoint() error = %v", err)
					}
					checkpoints.Store(w*rounds+i, true)
				case 2:
					if res, _ := e.Revert(ctx); res.Restored {
						restored.Store(w*rounds+i, true)
					}
				}
				_ = e.State()
				_ = e.Checkpoints()
			}
		}(w)
	}
	wg.Wait()

	var saved, popped int
	checkpoints.Range(func(_, _ any) bool { saved++; return true })
	restored.Range(func(_, _ any) bool { popped++; return true })

	if n := e.Len(); n < 0 || n > cfg.History.MaxEntries {
		t.Errorf("Len() = %d out of bounds", n)
	}
	if e.Len() > saved-popped {
		t.Errorf("Len() = %d exceeds checkpoints minus reverts (%d)", e.Len(), saved-popped)
	}
	if len(e.Checkpoints()) != e.Len() {
		t.Error("Checkpoints() and Len() disagree")
	}
}

func TestEngineHandlersMayCallBack(t *testing.T) {
	bus := event.NewBus()
	e := newTestEngine(t, sequenceConfig("first", "second"), WithPublisher(bus))

	var seen []string
	callBack := func(_ context.Context, ev any) error {
		env := event.ToEnvelope(ev)
		seen = append(seen, fmt.Sprintf("%s:%s:%d", env.Topic, e.State(), len(e.Checkpoints())))
		return nil
	}
	for _, tp := range []topic.Topic{
		events.TopicOwnerStateChanged,
		events.TopicCheckpointSaved,
		events.TopicRevertAttempt,
		events.TopicOwnerStateRestored,
	} {
		if _, err := bus.SubscribeFunc(tp, callBack); err != nil {
			t.Fatalf("SubscribeFunc(%s) error = %v", tp, err)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx := context.Background()
		_, _ = e.Checkpoint(ctx)
		_ = e.Mutate(ctx)
		_, _ = e.Revert(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine operation blocked while a handler called back into it")
	}

	want := []string{
		"history.checkpoint.saved:" + config.DefaultInitialState + ":1",
		"owner.state.changed:first:1",
		"history.revert.attempt:" + config.DefaultInitialState + ":0",
		"owner.state.restored:" + config.DefaultInitialState + ":0",
	}
	if fmt.Sprint(seen) != fmt.Sprint(want) {
		t.Errorf("seen = %v\nwant %v", seen, want)
	}
}
