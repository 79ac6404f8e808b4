package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/graphwalk/pkg/monitor"
	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRows[T any](t *testing.T, path string) []T {
	t.Helper()
	rows, err := parquet.ReadFile[T](path)
	require.NoError(t, err)
	return rows
}

func TestParquetRecorder(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewParquetRecorder(dir, 2)
	require.NoError(t, err)

	reg := monitor.NewRegistry()
	detach := rec.Attach(reg)
	defer detach()

	ctx := context.Background()
	reg.Dispatch(ctx, monitor.Event{
		Kind:        monitor.TraversalFinished,
		ExecutionID: "e1",
		Time:        time.Now(),
		Stats:       types.TraversalStats{PathsYielded: 3, BranchesCreated: 4, MaxDepth: 2},
		Elapsed:     1500 * time.Millisecond,
		Attrs:       map[string]string{"order": "bfs", "uniqueness": "node-global", "start": "a"},
	})
	assert.Empty(t, rec.Files())

	reg.Dispatch(ctx, monitor.Event{
		Kind:        monitor.TraversalFailed,
		ExecutionID: "e2",
		Time:        time.Now(),
		Err:         errors.New("vertex not found"),
	})
	files := rec.Files()
	require.Len(t, files, 1)

	rows := readRows[TraversalRecord](t, files[0])
	require.Len(t, rows, 2)
	assert.Equal(t, "e1", rows[0].ExecutionID)
	assert.Equal(t, "finished", rows[0].Status)
	assert.Equal(t, "bfs", rows[0].Order)
	assert.Equal(t, int64(3), rows[0].PathsYielded)
	assert.Equal(t, int64(1500), rows[0].DurationMs)
	assert.Equal(t, "failed", rows[1].Status)
	assert.Equal(t, "vertex not found", rows[1].Error)

	reg.Dispatch(ctx, monitor.Event{Kind: monitor.TraversalFinished, ExecutionID: "e3", Time: time.Now()})
	require.NoError(t, rec.Close())
	assert.Len(t, rec.Files(), 2)
}

func TestParquetHandler(t *testing.T) {
	dir := t.TempDir()
	next := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	h, err := NewParquetHandler(next, dir, 10)
	require.NoError(t, err)

	logger := slog.New(h).With("component", "test")
	ctx := context.WithValue(context.Background(), types.ContextKeyExecutionID, "exec-9")

	logger.InfoContext(ctx, "not stored")
	logger.ErrorContext(ctx, "traversal failed", "error", errors.New("boom"))
	require.NoError(t, h.Flush())

	files := h.writer.written()
	require.Len(t, files, 1)
	rows := readRows[LogRecord](t, files[0])
	require.Len(t, rows, 1)
	assert.Equal(t, "traversal failed", rows[0].Message)
	assert.Equal(t, "exec-9", rows[0].ExecutionID)
	assert.Equal(t, "ERROR", rows[0].Level)
	assert.JSONEq(t, `{"component":"test","error":"boom"}`, rows[0].Attributes)
}
