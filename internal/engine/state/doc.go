// Package state provides the stateful owner and the snapshots it produces.
//
// An Owner holds a single string state. It can mutate that state through an
// injected Generator, capture it into an immutable Snapshot, and later adopt
// the value held by a Snapshot again:
//
//	owner, _ := state.NewOwner("Super-duper-super-puper-super.")
//	snap := owner.Capture()
//	_ = owner.Mutate(ctx)
//	_ = owner.Restore(ctx, snap) // back to the initial state
//
// # Encapsulation
//
// A Snapshot exposes only its ID, Label and capture time. The captured value
// itself is unexported and can only be read by an Owner, so callers that keep
// snapshots (such as package history) pass them back opaquely.
//
// # Restore failures
//
// Restore rejects a snapshot with an InvalidSnapshotError when the snapshot
// is nil, was not produced by Capture (a zero-value Snapshot), or holds a
// value the owner's Validator rejects.
package state
