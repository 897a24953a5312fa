package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"log-receiver/internal/client"
	"log-receiver/internal/logging"
	"log-receiver/internal/sender"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := LoadSender(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	c := client.New(cfg.Target)
	defer c.Close()

	eng := sender.NewEngine(sender.NewRandomSource(cfg.Messages), c, cfg.Engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Sending to receiver", zap.String("url", cfg.Target.URL))
	stats := eng.Start(ctx)
	if stats.Failed > 0 && stats.Sent == 0 {
		logger.Error("No messages delivered", zap.Int64("failed", stats.Failed))
		os.Exit(1)
	}
}
