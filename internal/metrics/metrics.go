// Package metrics exposes Prometheus collectors fed from the event bus.
//
// # Integration
//
// Collectors are registered on a caller-supplied registry and updated by a
// single bus subscription, so nothing in the engine imports Prometheus:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	m.Subscribe(bus)
//	...
//	metrics.WriteText(os.Stderr, reg)
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package metrics

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/dshills/memento/internal/event"
	"github.com/dshills/memento/internal/event/events"
	"github.com/dshills/memento/internal/event/topic"
)

// Namespace for all metrics
const metricsNamespace = "memento"

// Metrics holds the memento collectors.
type Metrics struct {
	// MutationsTotal counts owner state changes.
	MutationsTotal prometheus.Counter

	// CheckpointsTotal counts snapshots pushed onto the history.
	CheckpointsTotal prometheus.Counter

	// EvictionsTotal counts snapshots dropped because the history was full.
	EvictionsTotal prometheus.Counter

	// RevertAttemptsTotal counts snapshots popped during revert.
	RevertAttemptsTotal prometheus.Counter

	// SnapshotsDiscardedTotal counts popped snapshots the owner rejected.
	SnapshotsDiscardedTotal prometheus.Counter

	// RestoresTotal counts successful restores.
	RestoresTotal prometheus.Counter

	// HistoryDepth is the number of stored snapshots.
	HistoryDepth prometheus.Gauge

	// InvokerCommandsTotal counts invoker hook runs.
	// Labels: phase (started, finished), status (ok, error)
	InvokerCommandsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
// Panics on duplicate registration, like promauto.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	counter := func(subsystem, name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	return &Metrics{
		MutationsTotal:          counter("owner", "mutations_total", "Total number of owner state changes"),
		RestoresTotal:           counter("owner", "restores_total", "Total number of snapshots restored into the owner"),
		CheckpointsTotal:        counter("history", "checkpoints_total", "Total number of checkpoints taken"),
		EvictionsTotal:          counter("history", "evictions_total", "Total number of checkpoints evicted by the history bound"),
		RevertAttemptsTotal:     counter("history", "revert_attempts_total", "Total number of snapshots popped during revert"),
		SnapshotsDiscardedTotal: counter("history", "snapshots_discarded_total", "Total number of snapshots discarded because restore failed"),
		HistoryDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "history",
			Name:      "depth",
			Help:      "Number of snapshots currently stored",
		}),
		InvokerCommandsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "invoker",
				Name:      "commands_total",
				Help:      "Total number of invoker hooks run by phase and status",
			},
			[]string{"phase", "status"},
		),
	}
}

// Subscribe updates the collectors from bus notifications.
func (m *Metrics) Subscribe(bus event.Bus) (event.Subscription, error) {
	return bus.SubscribeFunc(topic.WildcardMulti, func(_ context.Context, e any) error {
		m.Observe(event.ToEnvelope(e))
		return nil
	})
}

// Observe applies one notification to the collectors.
func (m *Metrics) Observe(env event.Envelope) {
	switch p := env.Payload.(type) {
	case events.OwnerStateChanged:
		m.MutationsTotal.Inc()
	case events.OwnerStateRestored:
		m.RestoresTotal.Inc()
	case events.CheckpointSaved:
		m.CheckpointsTotal.Inc()
		m.HistoryDepth.Set(float64(p.Depth))
	case events.CheckpointEvicted:
		m.EvictionsTotal.Inc()
	case events.RevertAttempt:
		m.RevertAttemptsTotal.Inc()
		m.HistoryDepth.Set(float64(p.Remaining))
	case events.RevertSkipped:
		m.SnapshotsDiscardedTotal.Inc()
	case events.InvokerPhase:
		phase := "started"
		if env.Topic == events.TopicInvokerFinished {
			phase = "finished"
		}
		status := "ok"
		if p.Err != nil {
			status = "error"
		}
		m.InvokerCommandsTotal.WithLabelValues(phase, status).Inc()
	}
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
