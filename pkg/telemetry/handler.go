package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/recall/pkg/types"
)

const defaultBatchSize = 100

// ErrorRecord is one captured error log, flattened for Parquet storage.
// Attributes are serialized to a JSON string so the schema stays fixed
// regardless of what the log site attached.
type ErrorRecord struct {
	ID            string    `parquet:"id"`
	Timestamp     time.Time `parquet:"timestamp"`
	Level         string    `parquet:"level"`
	Message       string    `parquet:"message"`
	RequestID     string    `parquet:"request_id"`
	ClientID      string    `parquet:"client_id"`
	RequestSource string    `parquet:"request_source"`
	SourceFile    string    `parquet:"source_file"`
	LineNumber    int       `parquet:"line_number"`
	Attributes    string    `parquet:"attributes"`
}

// ParquetHandler is a slog.Handler that forwards every record to the next
// handler and additionally captures error-level records into Parquet files
// under outputDir for offline analysis. Records are batched; call Flush on
// shutdown to persist a partial batch.
type ParquetHandler struct {
	next      slog.Handler
	outputDir string
	batchSize int

	mu     sync.Mutex
	buffer []ErrorRecord
}

// NewParquetHandler creates a handler writing to outputDir, creating the
// directory if needed.
func NewParquetHandler(next slog.Handler, outputDir string) (*ParquetHandler, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	return &ParquetHandler{
		next:      next,
		outputDir: outputDir,
		batchSize: defaultBatchSize,
		buffer:    make([]ErrorRecord, 0, defaultBatchSize),
	}, nil
}

// Enabled implements slog.Handler.
func (h *ParquetHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ParquetHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level < slog.LevelError {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.buffer = append(h.buffer, h.capture(ctx, r))
	if len(h.buffer) >= h.batchSize {
		return h.flushLocked()
	}
	return nil
}

// capture flattens a record plus its request context into an ErrorRecord.
func (h *ParquetHandler) capture(ctx context.Context, r slog.Record) ErrorRecord {
	rec := ErrorRecord{
		ID:        uuid.New().String(),
		Timestamp: r.Time.UTC(),
		Level:     r.Level.String(),
		Message:   r.Message,
	}
	if v, ok := ctx.Value(types.ContextKeyRequestID).(string); ok {
		rec.RequestID = v
	}
	if v, ok := ctx.Value(types.ContextKeyClientID).(string); ok {
		rec.ClientID = v
	}
	if v, ok := ctx.Value(types.ContextKeyRequestSource).(string); ok {
		rec.RequestSource = v
	}

	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	if encoded, err := json.Marshal(attrs); err == nil {
		rec.Attributes = string(encoded)
	}

	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		rec.SourceFile = frame.File
		rec.LineNumber = frame.Line
	}
	return rec
}

// Flush writes any buffered records out immediately. Called on shutdown.
func (h *ParquetHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flushLocked()
}

// flushLocked writes the current buffer to a new Parquet file. Caller must
// hold the lock.
func (h *ParquetHandler) flushLocked() error {
	if len(h.buffer) == 0 {
		return nil
	}

	name := fmt.Sprintf("errors_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(h.outputDir, name)

	if err := parquet.WriteFile(path, h.buffer); err != nil {
		return fmt.Errorf("failed to write telemetry file: %w", err)
	}
	h.buffer = h.buffer[:0]
	return nil
}

// WithAttrs implements slog.Handler. Derived handlers batch independently.
func (h *ParquetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ParquetHandler{
		next:      h.next.WithAttrs(attrs),
		outputDir: h.outputDir,
		batchSize: h.batchSize,
		buffer:    make([]ErrorRecord, 0, h.batchSize),
	}
}

// WithGroup implements slog.Handler.
func (h *ParquetHandler) WithGroup(name string) slog.Handler {
	return &ParquetHandler{
		next:      h.next.WithGroup(name),
		outputDir: h.outputDir,
		batchSize: h.batchSize,
		buffer:    make([]ErrorRecord, 0, h.batchSize),
	}
}
