package worker

import (
	"context"
	"encoding/json"
	"time"

	"migrator/internal/config"
	"migrator/internal/logger"
	"migrator/internal/migration"
	"migrator/internal/worker/processors"

	"github.com/segmentio/kafka-go"
)

type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	reader    *kafka.Reader
	processor *processors.MigrationProcessor
}

func New(cfg *config.Config, logger *logger.Logger, engine *migration.Engine) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "migrator-worker",
		Topic:          "migration-requests",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	processor := processors.NewMigrationProcessor(cfg, logger, engine)

	return &Worker{
		config:    cfg,
		logger:    logger,
		reader:    reader,
		processor: processor,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for migration requests...")

	for {
		message, err := w.reader.ReadMessage(context.Background())
		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		var req processors.MigrationRequest
		if err := json.Unmarshal(message.Value, &req); err != nil {
			w.logger.Error("Failed to parse migration request: %v", err)
			continue
		}

		// Runs execute strictly one at a time, in arrival order.
		if err := w.processor.Process(req); err != nil {
			w.logger.Error("Failed to process migration request: %v", err)
			continue
		}
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
