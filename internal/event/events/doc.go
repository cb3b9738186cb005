// Package events declares the topics and payload types published by the
// owner, history and invoker.
package events
