package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"migrator/internal/config"
	"migrator/internal/database"
	"migrator/internal/logger"
	"migrator/internal/migration"
	"migrator/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	engine := migration.NewEngine(cfg, logger, db.DB)

	// Initialize worker
	w := worker.New(cfg, logger, engine)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
