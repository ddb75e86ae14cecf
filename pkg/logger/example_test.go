package logger_test

import (
	"log/slog"

	"github.com/soundprediction/recall/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("This is a debug message") // Gray in terminal
	log.Info("This is an info message")
	log.Warn("This is a warning message") // Yellow in terminal
	log.Error("This is an error message") // Red in terminal
}

func ExampleNewColorHandler() {
	log := logger.NewDefaultLogger(slog.LevelInfo)

	// Log with attributes
	log.Info("Processing search request", "query_type", "semantic", "limit", 10)
	log.Info("Attached graph context", "results", 7, "neighbors", 23)
	log.Warn("Embedding candidate pool truncated", "candidates", 200, "limit", 10)
	log.Error("Graph store unreachable", "error", "connection refused", "retry_count", 3)
}
