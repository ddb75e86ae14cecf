package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soundprediction/recall"
	"github.com/soundprediction/recall/pkg/alert"
	"github.com/soundprediction/recall/pkg/config"
	"github.com/soundprediction/recall/pkg/driver"
	"github.com/soundprediction/recall/pkg/embedder"
	recallLogger "github.com/soundprediction/recall/pkg/logger"
	"github.com/soundprediction/recall/pkg/server"
	"github.com/soundprediction/recall/pkg/telemetry"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Recall HTTP server",
	Long: `Start the Recall HTTP server to provide REST API access to the memory store.

The server provides endpoints for:
- Searching memories (classified free-text retrieval)
- Explicit graph traversal
- Memory and relation CRUD
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServe,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server-specific flags
	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serveCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&serverMode, "mode", "release", "Server mode (debug, release, test)")

	// Database flags
	serveCmd.Flags().String("db-uri", "bolt://localhost:7687", "Graph store URI")
	serveCmd.Flags().String("db-username", "neo4j", "Graph store username")
	serveCmd.Flags().String("db-password", "", "Graph store password")
	serveCmd.Flags().String("db-database", "neo4j", "Graph store database name")

	// Embedding flags
	serveCmd.Flags().String("embedding-model", "text-embedding-3-small", "Embedding model")
	serveCmd.Flags().String("embedding-api-key", "", "Embedding API key")
	serveCmd.Flags().String("embedding-base-url", "", "Embedding base URL")
	serveCmd.Flags().Int("embedding-idle-release", 0, "Release the embedding client after this many idle seconds (0 disables)")

	// Search flags
	serveCmd.Flags().Int("max-traversal-depth", 5, "Ceiling on explicit traversal depth")

	// Telemetry flags
	serveCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for error telemetry")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrideConfigWithFlags(cmd, cfg)

	if err := validateServeConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Println("Initializing Recall...")
	client, cleanup, err := initializeRecall(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize Recall: %w", err)
	}
	defer cleanup()

	srv := server.New(cfg, client)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Database flags
	if cmd.Flags().Changed("db-uri") {
		cfg.Database.URI, _ = cmd.Flags().GetString("db-uri")
	}
	if cmd.Flags().Changed("db-username") {
		cfg.Database.Username, _ = cmd.Flags().GetString("db-username")
	}
	if cmd.Flags().Changed("db-password") {
		cfg.Database.Password, _ = cmd.Flags().GetString("db-password")
	}
	if cmd.Flags().Changed("db-database") {
		cfg.Database.Database, _ = cmd.Flags().GetString("db-database")
	}

	// Embedding flags
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}
	if cmd.Flags().Changed("embedding-base-url") {
		cfg.Embedding.BaseURL, _ = cmd.Flags().GetString("embedding-base-url")
	}
	if cmd.Flags().Changed("embedding-idle-release") {
		cfg.Embedding.IdleReleaseSeconds, _ = cmd.Flags().GetInt("embedding-idle-release")
	}

	// Search flags
	if cmd.Flags().Changed("max-traversal-depth") {
		cfg.Search.MaxTraversalDepth, _ = cmd.Flags().GetInt("max-traversal-depth")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}

func validateServeConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Database.URI == "" {
		return fmt.Errorf("database URI is required")
	}
	return nil
}

// initializeRecall wires the graph driver, the embedding stack, and
// telemetry into a Recall client. The returned cleanup flushes telemetry.
func initializeRecall(cfg *config.Config) (recall.Recall, func(), error) {
	cleanup := func() {}

	logger := slog.New(recallLogger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))

	// Error telemetry via Parquet
	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(
			recallLogger.NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)}),
			cfg.Telemetry.ParquetPath,
		)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize error tracking: %v\n", err)
		} else {
			logger = slog.New(parquetHandler)
			cleanup = func() {
				if err := parquetHandler.Flush(); err != nil {
					fmt.Printf("Warning: Failed to flush telemetry: %v\n", err)
				}
			}
			fmt.Printf("Error tracking enabled at: %s\n", cfg.Telemetry.ParquetPath)
		}
	}

	graphDriver, err := driver.NewNeo4jDriver(
		cfg.Database.URI,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Database,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create graph driver: %w", err)
	}

	embedderClient := buildEmbedder(cfg, logger)

	client, err := recall.NewClient(graphDriver, embedderClient, &recall.Config{
		MaxTraversalDepth: cfg.Search.MaxTraversalDepth,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, cleanup, nil
}

// buildEmbedder assembles the embedding stack: an OpenAI client behind a
// cache, optionally a circuit breaker, all behind a lazy wrapper so the
// provider is only touched once a semantic search arrives. Returns nil
// when no API key is configured; semantic search is then unavailable.
func buildEmbedder(cfg *config.Config, logger *slog.Logger) embedder.Client {
	if cfg.Embedding.APIKey == "" {
		fmt.Println("No embedding API key configured; semantic search disabled")
		return nil
	}

	factory := func() (embedder.Client, error) {
		var client embedder.Client = embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embedder.Config{
			Model:      cfg.Embedding.Model,
			BaseURL:    cfg.Embedding.BaseURL,
			Dimensions: cfg.Embedding.Dimensions,
			BatchSize:  cfg.Embedding.BatchSize,
		})

		cached, err := embedder.NewCachedClient(client)
		if err != nil {
			logger.Warn("embedding cache unavailable", "error", err)
		} else {
			client = cached
		}

		if cfg.CircuitBreaker.Enabled {
			var alerter alert.Alerter = &alert.NoOpAlerter{}
			if cfg.Alert.Enabled {
				alerter = alert.NewEmailAlerter(cfg.Alert)
			}
			client = embedder.NewCircuitBreakerClient(client, cfg.CircuitBreaker, alerter, "embedding")
		}
		return client, nil
	}

	idleTimeout := time.Duration(cfg.Embedding.IdleReleaseSeconds) * time.Second
	return embedder.NewLazyClient(factory, idleTimeout, logger)
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
