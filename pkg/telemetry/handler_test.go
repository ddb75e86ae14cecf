package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/recall/pkg/types"
)

func newTestHandler(t *testing.T) (*ParquetHandler, string) {
	t.Helper()
	dir := t.TempDir()
	next := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	h, err := NewParquetHandler(next, dir)
	require.NoError(t, err)
	return h, dir
}

func TestParquetHandlerCapturesOnlyErrors(t *testing.T) {
	h, _ := newTestHandler(t)
	log := slog.New(h)

	log.Info("routine message")
	log.Warn("warning message")
	log.Error("something broke", "query", "*")

	assert.Len(t, h.buffer, 1)
	assert.Equal(t, "something broke", h.buffer[0].Message)
	assert.Contains(t, h.buffer[0].Attributes, "query")
}

func TestParquetHandlerCapturesRequestContext(t *testing.T) {
	h, _ := newTestHandler(t)
	log := slog.New(h)

	ctx := context.WithValue(context.Background(), types.ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, types.ContextKeyClientID, "client-a")
	log.ErrorContext(ctx, "store unreachable")

	require.Len(t, h.buffer, 1)
	assert.Equal(t, "req-1", h.buffer[0].RequestID)
	assert.Equal(t, "client-a", h.buffer[0].ClientID)
}

func TestParquetHandlerFlushWritesFile(t *testing.T) {
	h, dir := newTestHandler(t)
	log := slog.New(h)

	log.Error("first")
	log.Error("second")
	require.NoError(t, h.Flush())

	assert.Empty(t, h.buffer)
	files, err := filepath.Glob(filepath.Join(dir, "errors_*.parquet"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	info, err := os.Stat(files[0])
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestParquetHandlerFlushEmptyIsNoOp(t *testing.T) {
	h, dir := newTestHandler(t)
	require.NoError(t, h.Flush())

	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	require.NoError(t, err)
	assert.Empty(t, files)
}
