package processors

import (
	"fmt"

	"migrator/internal/config"
	"migrator/internal/logger"
	"migrator/internal/migration"
)

// MigrationRequest is the payload of one queued migration run.
type MigrationRequest struct {
	OperatorID  string `json:"operator_id"`
	FromStoreID string `json:"from_store_id"`
	ToStoreID   string `json:"to_store_id"`
}

// MigrationProcessor executes queued migration runs one at a time. The run
// itself is synchronous; queueing only decouples it from the HTTP surface.
type MigrationProcessor struct {
	config *config.Config
	logger *logger.Logger
	engine *migration.Engine
}

func NewMigrationProcessor(cfg *config.Config, logger *logger.Logger, engine *migration.Engine) *MigrationProcessor {
	return &MigrationProcessor{
		config: cfg,
		logger: logger,
		engine: engine,
	}
}

func (p *MigrationProcessor) Process(req MigrationRequest) error {
	if req.OperatorID == "" || req.FromStoreID == "" || req.ToStoreID == "" {
		return fmt.Errorf("migration request missing operator or store ids: %+v", req)
	}

	p.logger.Info("Running migration %s -> %s for operator %s",
		req.FromStoreID, req.ToStoreID, req.OperatorID)

	summary, err := p.engine.Run(req.OperatorID, req.FromStoreID, req.ToStoreID)
	if err != nil {
		return fmt.Errorf("migration %s -> %s failed: %w", req.FromStoreID, req.ToStoreID, err)
	}

	p.logger.Info("Migration %s -> %s finished: %d collections, %d products, %d inventory updates, %d errors",
		req.FromStoreID, req.ToStoreID,
		summary.CollectionsImported, summary.ProductsImported,
		summary.InventoryUpdated, len(summary.Errors))
	for _, msg := range summary.Errors {
		p.logger.Error("Migration error: %s", msg)
	}
	return nil
}
