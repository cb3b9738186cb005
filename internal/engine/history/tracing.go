package history

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("memento.history")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// setDepth records the stack depth when the operation began.
func setDepth(span trace.Span, depth int) {
	span.SetAttributes(attribute.Int("history.depth", depth))
}

// recordSkip adds a span event for a snapshot that failed to restore.
func recordSkip(span trace.Span, cp Checkpoint, err error) {
	span.AddEvent("snapshot.skipped", trace.WithAttributes(
		attribute.String("snapshot.id", cp.ID.String()),
		attribute.String("snapshot.label", cp.Label),
		attribute.String("error", err.Error()),
	))
}

func setRevertResult(span trace.Span, res RevertResult) {
	span.SetAttributes(
		attribute.Bool("history.restored", res.Restored),
		attribute.Int("history.skipped", res.Skipped),
	)
	if !res.Restored && res.Skipped > 0 {
		span.SetStatus(codes.Error, "no snapshot could be restored")
	}
}
