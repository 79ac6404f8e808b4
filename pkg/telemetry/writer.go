package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
)

const defaultBatchSize = 100

// batchWriter buffers rows and writes each full batch to its own Parquet
// file named <prefix>_<timestamp>_<nanos>.parquet.
type batchWriter[T any] struct {
	dir       string
	prefix    string
	batchSize int

	mu     sync.Mutex
	buffer []T
	files  []string
}

func newBatchWriter[T any](dir, prefix string, batchSize int) (*batchWriter[T], error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &batchWriter[T]{
		dir:       dir,
		prefix:    prefix,
		batchSize: batchSize,
		buffer:    make([]T, 0, batchSize),
	}, nil
}

func (w *batchWriter[T]) add(row T) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer = append(w.buffer, row)
	if len(w.buffer) >= w.batchSize {
		return w.flushLocked()
	}
	return nil
}

func (w *batchWriter[T]) flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// written returns the files produced so far.
func (w *batchWriter[T]) written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.files...)
}

// LOCKS_REQUIRED(w.mu)
func (w *batchWriter[T]) flushLocked() error {
	if len(w.buffer) == 0 {
		return nil
	}

	now := time.Now()
	name := fmt.Sprintf("%s_%s_%d.parquet", w.prefix, now.Format("20060102_150405"), now.UnixNano())
	path := filepath.Join(w.dir, name)
	if err := parquet.WriteFile(path, w.buffer); err != nil {
		return fmt.Errorf("failed to write telemetry parquet file: %w", err)
	}

	w.files = append(w.files, path)
	w.buffer = w.buffer[:0]
	return nil
}
