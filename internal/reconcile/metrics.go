package reconcile

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/steveyegge/issuesync/reconcile"

// reconcileMetrics holds lazily-initialized OTel instruments for sync runs.
type reconcileMetrics struct {
	created       metric.Int64Counter
	updated       metric.Int64Counter
	writeErrors   metric.Int64Counter
	skipped       metric.Int64Counter
	fetched       metric.Int64Counter
	batchDuration metric.Float64Histogram
}

var (
	metricsOnce sync.Once
	metrics     reconcileMetrics
)

// syncMetrics returns the instruments, creating them against the global
// meter provider on first use so telemetry.Init can run before.
func syncMetrics() *reconcileMetrics {
	metricsOnce.Do(func() {
		m := otel.Meter(scopeName)
		metrics.created, _ = m.Int64Counter("issuesync.records.created",
			metric.WithDescription("Task records created"),
		)
		metrics.updated, _ = m.Int64Counter("issuesync.records.updated",
			metric.WithDescription("Task records updated"),
		)
		metrics.writeErrors, _ = m.Int64Counter("issuesync.records.errors",
			metric.WithDescription("Task record writes that failed"),
		)
		metrics.skipped, _ = m.Int64Counter("issuesync.records.skipped",
			metric.WithDescription("Updates skipped because the record was unchanged"),
		)
		metrics.fetched, _ = m.Int64Counter("issuesync.issues.fetched",
			metric.WithDescription("Issues read from GitHub"),
		)
		metrics.batchDuration, _ = m.Float64Histogram("issuesync.batch.duration",
			metric.WithDescription("Write batch duration in milliseconds"),
			metric.WithUnit("ms"),
		)
	})
	return &metrics
}

func tracer() trace.Tracer {
	return otel.Tracer(scopeName)
}
