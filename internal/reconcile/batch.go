package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/issuesync/internal/types"
)

// DefaultBatchSize is the number of writes issued concurrently per batch.
const DefaultBatchSize = 10

// Write is an operation together with the fields it writes.
type Write struct {
	types.Operation `yaml:",inline"`
	Fields          types.RecordFields `json:"fields" yaml:"fields"`
}

// Batches splits items into consecutive chunks of at most size items.
func Batches[T any](items []T, size int) [][]T {
	if size <= 0 {
		return nil
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

// BatchWriter applies writes in sequential batches. Writes inside a batch run
// concurrently and complete in no particular order.
type BatchWriter struct {
	writer    PageWriter
	batchSize int
	logger    *slog.Logger
}

// NewBatchWriter creates a writer issuing at most batchSize concurrent writes.
func NewBatchWriter(writer PageWriter, batchSize int, logger *slog.Logger) (*BatchWriter, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatch, batchSize)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BatchWriter{writer: writer, batchSize: batchSize, logger: logger}, nil
}

// Write applies writes batch by batch and reports how many were applied.
// The first failing batch stops the run: its other writes still finish,
// later batches never start, and writes already applied are kept and
// counted.
func (b *BatchWriter) Write(ctx context.Context, writes []Write) (int, error) {
	applied := 0
	for i, batch := range Batches(writes, b.batchSize) {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		n, err := b.writeBatch(ctx, i, batch)
		applied += n
		if err != nil {
			return applied, fmt.Errorf("batch %d: %w", i+1, err)
		}
		b.logger.Info(fmt.Sprintf("Completed batch size: %d", len(batch)))
	}
	return applied, nil
}

func (b *BatchWriter) writeBatch(ctx context.Context, index int, batch []Write) (int, error) {
	ctx, span := tracer().Start(ctx, "reconcile.batch",
		trace.WithAttributes(
			attribute.Int("issuesync.batch.index", index),
			attribute.Int("issuesync.batch.size", len(batch)),
		),
	)
	defer span.End()
	start := time.Now()

	var (
		g       errgroup.Group
		applied atomic.Int64
	)
	for _, w := range batch {
		g.Go(func() error {
			if err := b.apply(ctx, w); err != nil {
				return err
			}
			applied.Add(1)
			return nil
		})
	}
	err := g.Wait()

	syncMetrics().batchDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return int(applied.Load()), err
}

func (b *BatchWriter) apply(ctx context.Context, w Write) error {
	kind := metric.WithAttributes(attribute.String("issuesync.op", string(w.Kind)))
	var err error
	switch w.Kind {
	case types.OpCreate:
		err = b.writer.CreateRecord(ctx, w.Fields)
	case types.OpUpdate:
		err = b.writer.UpdateRecord(ctx, w.PageID, w.Fields)
	default:
		err = fmt.Errorf("unknown operation kind %q", w.Kind)
	}
	if err != nil {
		syncMetrics().writeErrors.Add(ctx, 1, kind)
		return fmt.Errorf("%s %s: %w", w.Kind, w.Key(), err)
	}
	if w.Kind == types.OpCreate {
		syncMetrics().created.Add(ctx, 1)
	} else {
		syncMetrics().updated.Add(ctx, 1)
	}
	return nil
}
