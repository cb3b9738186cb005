package state

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLabelWidth is the number of runes of the state shown in a label.
const DefaultLabelWidth = 9

// LabelTimeFormat is the timestamp layout used in snapshot labels.
const LabelTimeFormat = time.ANSIC

// Snapshot is an immutable capture of an owner's state.
// Snapshots are safe to share across goroutines.
type Snapshot struct {
	id         uuid.UUID
	captured   string
	label      string
	capturedAt time.Time
}

// newSnapshot captures value at the given time. Only Owner calls this.
func newSnapshot(value string, at time.Time, labelWidth int) *Snapshot {
	return &Snapshot{
		id:         uuid.New(),
		captured:   value,
		label:      formatLabel(value, at, labelWidth),
		capturedAt: at,
	}
}

// formatLabel renders "<time> / (<prefix>...)".
func formatLabel(value string, at time.Time, width int) string {
	if width <= 0 {
		width = DefaultLabelWidth
	}
	prefix := []rune(value)
	if len(prefix) > width {
		prefix = prefix[:width]
	}
	return at.Format(LabelTimeFormat) + " / (" + string(prefix) + "...)"
}

// ID returns the snapshot's unique identifier.
func (s *Snapshot) ID() uuid.UUID {
	return s.id
}

// Label returns the human-readable summary computed at capture time.
func (s *Snapshot) Label() string {
	return s.label
}

// CapturedAt returns when the snapshot was taken.
func (s *Snapshot) CapturedAt() time.Time {
	return s.capturedAt
}

// valid reports whether the snapshot was produced by Capture.
func (s *Snapshot) valid() bool {
	return s != nil && s.id != uuid.Nil
}

// state returns the captured value. Only Owner reads it.
func (s *Snapshot) state() string {
	return s.captured
}
