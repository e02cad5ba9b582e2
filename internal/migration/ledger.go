package migration

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"migrator/internal/models"
)

// Ledger is the persisted idempotence record. Upsert-only: rows are never
// deleted, and a row that reached SUCCESS (or PARTIAL) is a permanent skip
// condition for its source entity.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Upsert inserts or updates the row for (operator, fromStore, entityType,
// sourceID). Conflicts update the mutable fields only; created_at survives.
func (l *Ledger) Upsert(rec *models.MigrationRecord) error {
	err := l.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "operator_id"},
			{Name: "from_store_id"},
			{Name: "entity_type"},
			{Name: "source_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"to_store_id", "source_name", "dest_id", "status", "error_message", "updated_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("ledger upsert failed: %w", err)
	}
	return nil
}

// Find returns the row for a migration key, or nil when none exists.
func (l *Ledger) Find(operatorID, fromStoreID string, entityType models.EntityType, sourceID string) (*models.MigrationRecord, error) {
	var rec models.MigrationRecord
	err := l.db.
		Where("operator_id = ? AND from_store_id = ? AND entity_type = ? AND source_id = ?",
			operatorID, fromStoreID, entityType, sourceID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns all rows for one operator and store pair, oldest first.
func (l *Ledger) List(operatorID, fromStoreID, toStoreID string) ([]models.MigrationRecord, error) {
	var recs []models.MigrationRecord
	query := l.db.Where("operator_id = ? AND from_store_id = ?", operatorID, fromStoreID)
	if toStoreID != "" {
		query = query.Where("to_store_id = ?", toStoreID)
	}
	if err := query.Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// ListByType returns the successful mappings of one entity type, used to seed
// the run's relation maps.
func (l *Ledger) ListByType(operatorID, fromStoreID string, entityType models.EntityType) ([]models.MigrationRecord, error) {
	var recs []models.MigrationRecord
	err := l.db.
		Where("operator_id = ? AND from_store_id = ? AND entity_type = ?",
			operatorID, fromStoreID, entityType).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
