// Package logging builds the slog logger used across memento and mirrors
// bus notifications into it.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dshills/memento/internal/config"
	"github.com/dshills/memento/internal/event"
	"github.com/dshills/memento/internal/event/events"
	"github.com/dshills/memento/internal/event/topic"
)

// ParseLevel converts a level name to a slog.Level. It accepts the names
// config.Validate accepts ("debug", "info", "warn", "error") after
// config.NormalizeName.
func ParseLevel(name string) (slog.Level, error) {
	switch config.NormalizeName(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New creates a logger writing to w in the configured format.
func New(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch config.NormalizeName(cfg.Format) {
	case config.FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	case config.FormatText:
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(handler), nil
}

// Subscribe logs every bus notification. Skipped snapshots are logged at
// info, everything else at debug.
func Subscribe(bus event.Bus, logger *slog.Logger) (event.Subscription, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return bus.SubscribeFunc(topic.WildcardMulti, func(ctx context.Context, e any) error {
		env := event.ToEnvelope(e)
		level := slog.LevelDebug
		if env.Topic == events.TopicRevertSkipped {
			level = slog.LevelInfo
		}
		args := append([]any{"topic", env.Topic.String()}, payloadAttrs(env.Payload)...)
		logger.Log(ctx, level, "event", args...)
		return nil
	})
}

// payloadAttrs flattens known payloads into key/value pairs.
func payloadAttrs(payload any) []any {
	switch p := payload.(type) {
	case events.OwnerInitialized:
		return []any{"state", p.State}
	case events.OwnerStateChanged:
		return []any{"state", p.State, "previous", p.Previous}
	case events.OwnerStateRestored:
		return []any{"state", p.State, "snapshot", p.SnapshotID.String()}
	case events.CheckpointSaved:
		return []any{"snapshot", p.SnapshotID.String(), "label", p.Label, "depth", p.Depth}
	case events.CheckpointEvicted:
		return []any{"snapshot", p.SnapshotID.String(), "label", p.Label}
	case events.RevertAttempt:
		return []any{"snapshot", p.SnapshotID.String(), "label", p.Label, "remaining", p.Remaining}
	case events.RevertSkipped:
		return []any{"snapshot", p.SnapshotID.String(), "label", p.Label, "error", p.Err}
	case events.InvokerPhase:
		if p.Err != nil {
			return []any{"command", p.Command, "error", p.Err}
		}
		return []any{"command", p.Command}
	case nil:
		return nil
	default:
		return []any{"payload", p}
	}
}
