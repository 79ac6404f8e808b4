package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/graphwalk/pkg/monitor"
)

// TraversalRecord summarizes one finished traversal execution.
type TraversalRecord struct {
	ID                   string    `parquet:"id"`
	ExecutionID          string    `parquet:"execution_id"`
	Timestamp            time.Time `parquet:"timestamp"`
	Status               string    `parquet:"status"`
	Order                string    `parquet:"order"`
	Uniqueness           string    `parquet:"uniqueness"`
	StartVertices        string    `parquet:"start_vertices"`
	Tags                 []string  `parquet:"tags,list"`
	PathsYielded         int64     `parquet:"paths_yielded"`
	BranchesCreated      int64     `parquet:"branches_created"`
	Expansions           int64     `parquet:"expansions"`
	UniquenessRejections int64     `parquet:"uniqueness_rejections"`
	Pruned               int64     `parquet:"pruned"`
	MaxDepth             int64     `parquet:"max_depth"`
	DurationMs           int64     `parquet:"duration_ms"`
	Error                string    `parquet:"error,optional"`
}

// ParquetRecorder stores a TraversalRecord for every traversal that
// finishes or fails while it is attached to a registry.
type ParquetRecorder struct {
	writer *batchWriter[TraversalRecord]
}

// NewParquetRecorder creates a recorder writing batches of batchSize
// records as traversals_*.parquet files under outputDir.
func NewParquetRecorder(outputDir string, batchSize int) (*ParquetRecorder, error) {
	w, err := newBatchWriter[TraversalRecord](outputDir, "traversals", batchSize)
	if err != nil {
		return nil, err
	}
	return &ParquetRecorder{writer: w}, nil
}

// Attach registers the recorder for traversal completion events.
func (r *ParquetRecorder) Attach(reg *monitor.Registry, tags ...string) (detach func()) {
	return reg.RegisterAll([]monitor.EventKind{monitor.TraversalFinished, monitor.TraversalFailed}, r, tags...)
}

// HandleEvent implements monitor.Listener.
func (r *ParquetRecorder) HandleEvent(ctx context.Context, e monitor.Event) error {
	rec := TraversalRecord{
		ID:                   uuid.New().String(),
		ExecutionID:          e.ExecutionID,
		Timestamp:            e.Time.UTC(),
		Status:               "finished",
		Order:                e.Attrs["order"],
		Uniqueness:           e.Attrs["uniqueness"],
		StartVertices:        e.Attrs["start"],
		Tags:                 e.Tags,
		PathsYielded:         e.Stats.PathsYielded,
		BranchesCreated:      e.Stats.BranchesCreated,
		Expansions:           e.Stats.Expansions,
		UniquenessRejections: e.Stats.UniquenessRejections,
		Pruned:               e.Stats.Pruned,
		MaxDepth:             int64(e.Stats.MaxDepth),
		DurationMs:           e.Elapsed.Milliseconds(),
	}
	if e.Kind == monitor.TraversalFailed {
		rec.Status = "failed"
		if e.Err != nil {
			rec.Error = e.Err.Error()
		}
	}
	return r.writer.add(rec)
}

// Files returns the Parquet files written so far.
func (r *ParquetRecorder) Files() []string {
	return r.writer.written()
}

// Close writes any buffered records.
func (r *ParquetRecorder) Close() error {
	return r.writer.flush()
}
