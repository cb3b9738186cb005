package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/memento/internal/engine/state"
	"github.com/dshills/memento/internal/event"
	"github.com/dshills/memento/internal/event/events"
	"github.com/dshills/memento/internal/event/topic"
)

// DefaultMaxEntries bounds the stack when no WithMaxEntries option is given.
const DefaultMaxEntries = 1000

const eventSource = "history"

// Originator is the owner side of the memento pair.
type Originator interface {
	Capture() *state.Snapshot
	Restore(ctx context.Context, snap *state.Snapshot) error
}

// Checkpoint is the metadata of a stored snapshot.
type Checkpoint struct {
	ID         uuid.UUID
	Label      string
	CapturedAt time.Time
}

func checkpointOf(snap *state.Snapshot) Checkpoint {
	return Checkpoint{
		ID:         snap.ID(),
		Label:      snap.Label(),
		CapturedAt: snap.CapturedAt(),
	}
}

// RevertResult reports the outcome of a Revert call.
type RevertResult struct {
	// Restored is true if a snapshot was applied to the owner.
	Restored bool

	// Skipped counts snapshots that were popped and discarded because the
	// owner rejected them.
	Skipped int

	// Snapshot is the restored checkpoint. Zero if Restored is false.
	Snapshot Checkpoint
}

// Option configures a History.
type Option func(*History)

// WithMaxEntries bounds the number of stored snapshots.
// Values <= 0 select DefaultMaxEntries.
func WithMaxEntries(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.maxEntries = n
		}
	}
}

// WithPublisher sets where history events are published.
func WithPublisher(p event.Publisher) Option {
	return func(h *History) {
		if p != nil {
			h.publisher = p
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *History) {
		if l != nil {
			h.logger = l
		}
	}
}

// History is the caretaker: it stores snapshots and never reads their
// contents.
//
// The lock guards the stack only. It is released before the owner is asked
// to restore and before events are published, so handlers may call List,
// Len or Peek. Concurrent Revert calls may interleave their pops; callers
// that share a History across goroutines go through engine.Engine.
type History struct {
	mu sync.Mutex

	owner     Originator
	stack     []*state.Snapshot
	publisher event.Publisher
	logger    *slog.Logger

	maxEntries int
}

// New creates an empty history bound to owner.
func New(owner Originator, opts ...Option) (*History, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}

	h := &History{
		owner:      owner,
		publisher:  event.Discard,
		logger:     slog.Default(),
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Checkpoint captures the owner's current state and pushes it.
// If the stack exceeds its bound the oldest entries are evicted.
// It returns an error only if ctx is already done.
func (h *History) Checkpoint(ctx context.Context) (Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return Checkpoint{}, err
	}

	ctx, span := startSpan(ctx, "History.Checkpoint")
	defer span.End()

	snap := h.owner.Capture()
	evicted, depth := h.push(snap)
	setDepth(span, depth-1+len(evicted))

	for _, old := range evicted {
		h.logger.Debug("checkpoint evicted", "id", old.ID(), "label", old.Label())
		publish(ctx, h.publisher, events.TopicCheckpointEvicted, events.CheckpointEvicted{
			SnapshotID: old.ID(),
			Label:      old.Label(),
		})
	}

	cp := checkpointOf(snap)
	h.logger.Debug("checkpoint saved", "id", cp.ID, "label", cp.Label, "depth", depth)
	publish(ctx, h.publisher, events.TopicCheckpointSaved, events.CheckpointSaved{
		SnapshotID: cp.ID,
		Label:      cp.Label,
		Depth:      depth,
	})
	return cp, nil
}

// Revert restores the most recent snapshot the owner accepts.
//
// Snapshots are popped newest first. A snapshot the owner rejects is
// discarded and the next older one is tried. Reverting an empty history is
// a no-op. The owner's restore errors are never returned; the only error is
// ctx.Err() when ctx is already done on entry.
func (h *History) Revert(ctx context.Context) (RevertResult, error) {
	if err := ctx.Err(); err != nil {
		return RevertResult{}, err
	}

	ctx, span := startSpan(ctx, "History.Revert")
	defer span.End()
	setDepth(span, h.Len())

	var res RevertResult
	for {
		snap, remaining, ok := h.pop()
		if !ok {
			break
		}

		cp := checkpointOf(snap)
		publish(ctx, h.publisher, events.TopicRevertAttempt, events.RevertAttempt{
			SnapshotID: cp.ID,
			Label:      cp.Label,
			Remaining:  remaining,
		})

		if err := h.owner.Restore(ctx, snap); err != nil {
			res.Skipped++
			recordSkip(span, cp, err)
			h.logger.Debug("snapshot discarded", "id", cp.ID, "label", cp.Label, "error", err)
			publish(ctx, h.publisher, events.TopicRevertSkipped, events.RevertSkipped{
				SnapshotID: cp.ID,
				Label:      cp.Label,
				Err:        err,
			})
			continue
		}

		res.Restored = true
		res.Snapshot = cp
		break
	}

	setRevertResult(span, res)
	return res, nil
}

// push appends snap, evicting the oldest entries beyond the bound. It
// returns the evicted snapshots and the new depth.
func (h *History) push(snap *state.Snapshot) ([]*state.Snapshot, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stack = append(h.stack, snap)

	var evicted []*state.Snapshot
	if excess := len(h.stack) - h.maxEntries; excess > 0 {
		evicted = h.stack[:excess:excess]
		h.stack = append([]*state.Snapshot(nil), h.stack[excess:]...)
	}
	return evicted, len(h.stack)
}

// pop removes the newest snapshot and reports how many remain.
func (h *History) pop() (*state.Snapshot, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.stack) == 0 {
		return nil, 0, false
	}
	last := len(h.stack) - 1
	snap := h.stack[last]
	h.stack[last] = nil
	h.stack = h.stack[:last]
	return snap, last, true
}

// List returns the stored checkpoints, oldest first.
func (h *History) List() []Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Checkpoint, len(h.stack))
	for i, snap := range h.stack {
		out[i] = checkpointOf(snap)
	}
	return out
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack)
}

// CanRevert returns true if at least one snapshot is stored.
func (h *History) CanRevert() bool {
	return h.Len() > 0
}

// Peek returns the newest checkpoint without removing it.
func (h *History) Peek() (Checkpoint, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.stack) == 0 {
		return Checkpoint{}, false
	}
	return checkpointOf(h.stack[len(h.stack)-1]), true
}

// MaxEntries returns the stack bound.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

func publish[T any](ctx context.Context, p event.Publisher, t topic.Topic, payload T) {
	_ = p.Publish(ctx, event.NewEvent(t, payload, eventSource))
}
