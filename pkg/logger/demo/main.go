package main

import (
	"log/slog"

	"github.com/soundprediction/recall/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    Recall Colored Logger Demo")
	log.Info("============================================")
	log.Info("")

	log.Debug("Debug message - gray")
	log.Info("Info message - standard color")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("")
	log.Info("Attributes render dimmed after the message:")
	log.Info("Classified query", "type", "semantic", "confidence", 0.8)
	log.Info("Search complete", "results", 10, "duration", "38ms")
	log.Warn("Similarity threshold dropped every candidate", "threshold", 0.9)
	log.Error("Embedding provider unavailable", "provider", "openai")

	log.Info("")
	log.Info("Demo complete!")
}
