package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"log-receiver/internal/api"
	"log-receiver/internal/config"
	"log-receiver/internal/logging"
	"log-receiver/internal/metrics"
	"log-receiver/internal/sink"
	"log-receiver/internal/sink/console"
	"log-receiver/internal/sink/kafka"
	"log-receiver/internal/sink/opensearch"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()

	if err != nil {
		logger.Error("Log receiver failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("Log receiver stopped")
	_ = logger.Sync()
}

// run serves until ctx is cancelled. Sinks are closed on every return path.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	out, err := buildSinks(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create sinks: %w", err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("Error closing sinks", zap.Error(err))
		}
	}()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	server := api.NewServer(out, logger, cfg.Server)
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func buildSinks(cfg *config.Config, logger *zap.Logger) (sink.Multi, error) {
	var out sink.Multi

	if cfg.Sinks.Console.Enabled {
		out = append(out, console.NewConsoleSink(os.Stdout))
	}

	if cfg.KafkaEnabled() {
		out = append(out, kafka.NewSink(cfg.Sinks.Kafka, logger.Named("kafka")))
		logger.Info("Forwarding to Kafka",
			zap.Strings("brokers", cfg.Sinks.Kafka.Brokers),
			zap.String("topic", cfg.Sinks.Kafka.Topic))
	}

	if cfg.OpenSearchEnabled() {
		indexer, err := opensearch.NewSink(cfg.Sinks.OpenSearch)
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("opensearch sink: %w", err)
		}
		out = append(out, indexer)
		logger.Info("Indexing to OpenSearch",
			zap.Strings("addresses", cfg.Sinks.OpenSearch.Addresses),
			zap.String("index_prefix", cfg.Sinks.OpenSearch.IndexPrefix))
	}

	return out, nil
}

func serveMetrics(addr string, logger *zap.Logger) {
	logger.Info("Starting metrics server", zap.String("addr", addr))
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", zap.Error(err))
	}
}
