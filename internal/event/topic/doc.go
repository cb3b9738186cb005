// Package topic provides hierarchical topic names and wildcard matching for the event bus.
//
// Topics use dot notation:
//
//	owner.state.changed
//	history.checkpoint.saved
//	invoker.started
//
// Subscription patterns may use two wildcards:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	owner.*            matches owner.initialized (not owner.state.changed)
//	owner.**           matches owner.initialized, owner.state.changed
//	history.revert.*   matches history.revert.attempt, history.revert.skipped
//	**                 matches everything
package topic
