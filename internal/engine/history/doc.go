// Package history keeps a bounded stack of state snapshots and restores
// them in last-in, first-out order.
//
// # Checkpoints
//
// Checkpoint asks the originator for a snapshot and pushes it:
//
//	h, _ := history.New(owner, history.WithMaxEntries(100))
//	h.Checkpoint(ctx)
//
// When the stack grows past its bound the oldest entries are dropped and
// history.checkpoint.evicted is published for each.
//
// # Cascading revert
//
// Revert pops the newest snapshot and asks the originator to restore it.
// If the originator rejects the snapshot it is discarded and the next
// older one is tried, until one restores or the stack is empty:
//
//	res, err := h.Revert(ctx)
//	if err == nil && !res.Restored {
//	    // every remaining snapshot was rejected, or there were none
//	}
//
// Restore failures are reported through history.revert.skipped events and
// RevertResult.Skipped, never as a returned error.
//
// # Thread Safety
//
// History is safe for concurrent use. Revert holds the history lock while
// it talks to the originator, so an Originator must not call back into the
// History that owns it.
package history
