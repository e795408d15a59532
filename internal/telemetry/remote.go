package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveyegge/issuesync/internal/reconcile"
	"github.com/steveyegge/issuesync/internal/types"
)

const remoteScopeName = "github.com/steveyegge/issuesync/remote"

// remoteInstruments records a span and issuesync.remote.* metrics for each
// call to GitHub or Notion.
type remoteInstruments struct {
	system string
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

func newRemoteInstruments(system string, tp trace.TracerProvider, mp metric.MeterProvider) *remoteInstruments {
	m := mp.Meter(remoteScopeName)
	ops, _ := m.Int64Counter("issuesync.remote.operations",
		metric.WithDescription("Total remote API operations executed"),
	)
	dur, _ := m.Float64Histogram("issuesync.remote.operation.duration",
		metric.WithDescription("Remote API operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("issuesync.remote.errors",
		metric.WithDescription("Total remote API operation errors"),
	)
	return &remoteInstruments{
		system: system,
		tracer: tp.Tracer(remoteScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// op starts a span and counts the named remote operation.
func (r *remoteInstruments) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time, []attribute.KeyValue) {
	all := append([]attribute.KeyValue{
		attribute.String("issuesync.remote.system", r.system),
		attribute.String("issuesync.remote.operation", name),
	}, attrs...)
	ctx, span := r.tracer.Start(ctx, r.system+"."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	r.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now(), all
}

// done ends the span, records duration and optional error.
func (r *remoteInstruments) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs []attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	r.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

// InstrumentedSource wraps a reconcile.IssueSource with OTel tracing and metrics.
type InstrumentedSource struct {
	inner reconcile.IssueSource
	inst  *remoteInstruments
}

// WrapSource returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is.
func WrapSource(s reconcile.IssueSource) reconcile.IssueSource {
	if !Enabled() {
		return s
	}
	return newInstrumentedSource(s, otel.GetTracerProvider(), otel.GetMeterProvider())
}

func newInstrumentedSource(s reconcile.IssueSource, tp trace.TracerProvider, mp metric.MeterProvider) *InstrumentedSource {
	return &InstrumentedSource{inner: s, inst: newRemoteInstruments("github", tp, mp)}
}

func (s *InstrumentedSource) FetchIssues(ctx context.Context, repo string) ([]types.Issue, error) {
	ctx, span, t, attrs := s.inst.op(ctx, "FetchIssues", attribute.String("issuesync.repo", repo))
	v, err := s.inner.FetchIssues(ctx, repo)
	span.SetAttributes(attribute.Int("issuesync.issue.count", len(v)))
	s.inst.done(ctx, span, t, err, attrs)
	return v, err
}

// InstrumentedDestination wraps a reconcile.Destination with OTel tracing and metrics.
type InstrumentedDestination struct {
	inner reconcile.Destination
	inst  *remoteInstruments
}

// WrapDestination returns d decorated with OTel instrumentation.
// When telemetry is disabled, d is returned as-is.
func WrapDestination(d reconcile.Destination) reconcile.Destination {
	if !Enabled() {
		return d
	}
	return newInstrumentedDestination(d, otel.GetTracerProvider(), otel.GetMeterProvider())
}

func newInstrumentedDestination(d reconcile.Destination, tp trace.TracerProvider, mp metric.MeterProvider) *InstrumentedDestination {
	return &InstrumentedDestination{inner: d, inst: newRemoteInstruments("notion", tp, mp)}
}

func (d *InstrumentedDestination) FetchRecords(ctx context.Context) ([]types.Record, error) {
	ctx, span, t, attrs := d.inst.op(ctx, "FetchRecords")
	v, err := d.inner.FetchRecords(ctx)
	span.SetAttributes(attribute.Int("issuesync.record.count", len(v)))
	d.inst.done(ctx, span, t, err, attrs)
	return v, err
}

func (d *InstrumentedDestination) FetchUsers(ctx context.Context) ([]types.User, error) {
	ctx, span, t, attrs := d.inst.op(ctx, "FetchUsers")
	v, err := d.inner.FetchUsers(ctx)
	d.inst.done(ctx, span, t, err, attrs)
	return v, err
}

func (d *InstrumentedDestination) FetchProjects(ctx context.Context) ([]types.Project, error) {
	ctx, span, t, attrs := d.inst.op(ctx, "FetchProjects")
	v, err := d.inner.FetchProjects(ctx)
	d.inst.done(ctx, span, t, err, attrs)
	return v, err
}

func (d *InstrumentedDestination) CreateRecord(ctx context.Context, fields types.RecordFields) error {
	ctx, span, t, attrs := d.inst.op(ctx, "CreateRecord")
	span.SetAttributes(attribute.String("issuesync.record.title", fields.Title))
	err := d.inner.CreateRecord(ctx, fields)
	d.inst.done(ctx, span, t, err, attrs)
	return err
}

func (d *InstrumentedDestination) UpdateRecord(ctx context.Context, pageID string, fields types.RecordFields) error {
	ctx, span, t, attrs := d.inst.op(ctx, "UpdateRecord", attribute.String("issuesync.page.id", pageID))
	err := d.inner.UpdateRecord(ctx, pageID, fields)
	d.inst.done(ctx, span, t, err, attrs)
	return err
}
