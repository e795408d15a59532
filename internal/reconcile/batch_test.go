package reconcile

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/steveyegge/issuesync/internal/reconcile/mocks"
	"github.com/steveyegge/issuesync/internal/types"
)

// recordingWriter records every attempted write and fails the issue numbers in failOn.
type recordingWriter struct {
	mu       sync.Mutex
	created  []string
	updated  []string
	failOn   map[int]bool
	attempts []int
}

func (w *recordingWriter) CreateRecord(_ context.Context, fields types.RecordFields) error {
	_, number, _ := types.ParseTitle(fields.Title)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts = append(w.attempts, number)
	if w.failOn[number] {
		return errors.New("write rejected")
	}
	w.created = append(w.created, fields.Title)
	return nil
}

func (w *recordingWriter) UpdateRecord(_ context.Context, pageID string, fields types.RecordFields) error {
	_, number, _ := types.ParseTitle(fields.Title)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts = append(w.attempts, number)
	if w.failOn[number] {
		return errors.New("write rejected")
	}
	w.updated = append(w.updated, pageID)
	return nil
}

func createWrites(n int) []Write {
	writes := make([]Write, 0, n)
	for i := 1; i <= n; i++ {
		issue := types.Issue{Number: i, Title: "t"}
		writes = append(writes, Write{
			Operation: types.NewCreate(issue, "r"),
			Fields:    types.RecordFields{Title: types.FormatTitle("r", i, "t")},
		})
	}
	return writes
}

func TestBatches(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	batches := Batches(items, 10)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 10)
	assert.Len(t, batches[2], 5)
	assert.Equal(t, 0, batches[0][0])
	assert.Equal(t, 24, batches[2][4])

	assert.Empty(t, Batches([]int{}, 10))
	assert.Nil(t, Batches(items, 0))
	assert.Len(t, Batches(items, 25), 1)
}

func TestNewBatchWriter_InvalidSize(t *testing.T) {
	_, err := NewBatchWriter(&recordingWriter{}, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidBatch)
}

func TestBatchWriter_WritesAll(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	w := &recordingWriter{}
	bw, err := NewBatchWriter(w, 10, logger)
	require.NoError(t, err)

	applied, err := bw.Write(context.Background(), createWrites(25))
	require.NoError(t, err)

	assert.Equal(t, 25, applied)
	assert.Len(t, w.created, 25)
	assert.Equal(t, 2, bytes.Count(logs.Bytes(), []byte("Completed batch size: 10")))
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("Completed batch size: 5")))
}

func TestBatchWriter_FailureStopsLaterBatches(t *testing.T) {
	w := &recordingWriter{failOn: map[int]bool{15: true}}
	bw, err := NewBatchWriter(w, 10, nil)
	require.NoError(t, err)

	applied, err := bw.Write(context.Background(), createWrites(25))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 2")
	assert.Equal(t, 19, applied)

	// Batch 2 runs to completion; batch 3 never starts.
	assert.Len(t, w.attempts, 20)
	for _, n := range w.attempts {
		assert.LessOrEqual(t, n, 20)
	}
	assert.Len(t, w.created, 19)
}

func TestBatchWriter_Dispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	pw := mocks.NewMockPageWriter(ctrl)

	create := Write{
		Operation: types.NewCreate(types.Issue{Number: 1}, "r"),
		Fields:    types.RecordFields{Title: "r#1: a"},
	}
	update := Write{
		Operation: types.NewUpdate(types.Issue{Number: 2}, "r", "page-2"),
		Fields:    types.RecordFields{Title: "r#2: b"},
	}
	pw.EXPECT().CreateRecord(gomock.Any(), create.Fields).Return(nil)
	pw.EXPECT().UpdateRecord(gomock.Any(), "page-2", update.Fields).Return(nil)

	bw, err := NewBatchWriter(pw, 10, nil)
	require.NoError(t, err)
	applied, err := bw.Write(context.Background(), []Write{create, update})
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
}

func TestBatchWriter_CancelledContext(t *testing.T) {
	w := &recordingWriter{}
	bw, err := NewBatchWriter(w, 10, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	applied, err := bw.Write(ctx, createWrites(3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, applied)
	assert.Empty(t, w.attempts)
}
