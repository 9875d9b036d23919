package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/status-im/token-aggregator/config"
	"github.com/status-im/token-aggregator/core"
)

const defaultConfigPath = "config.yaml"

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	// Load configuration
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	configureLogging(cfg.Logging)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping services...")
		cancel()
	}()

	registry, err := core.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up services: %v", err)
	}

	if err := registry.StartAll(ctx); err != nil {
		log.Fatalf("Failed to start services: %v", err)
	}

	<-ctx.Done()
	registry.StopAll()
	log.Println("Shutdown complete")
}

func configureLogging(cfg config.LoggingConfig) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
