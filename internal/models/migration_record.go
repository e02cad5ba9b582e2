package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntityType string

const (
	EntityCollection    EntityType = "COLLECTION"
	EntityProduct       EntityType = "PRODUCT"
	EntityBrand         EntityType = "BRAND"
	EntityRibbon        EntityType = "RIBBON"
	EntityCustomization EntityType = "CUSTOMIZATION"
	EntityInfoSection   EntityType = "INFO_SECTION"
)

type MigrationStatus string

const (
	StatusPending MigrationStatus = "PENDING"
	StatusSuccess MigrationStatus = "SUCCESS"
	StatusPartial MigrationStatus = "PARTIAL"
	StatusFailed  MigrationStatus = "FAILED"
	StatusSkipped MigrationStatus = "SKIPPED"
)

// MigrationRecord is one row of the migration ledger. Rows are upserted, never
// deleted; the unique key is (operator, from store, entity type, source id).
type MigrationRecord struct {
	ID           string          `json:"id" gorm:"type:uuid;primary_key"`
	OperatorID   string          `json:"operator_id" gorm:"not null;uniqueIndex:idx_migration_key"`
	FromStoreID  string          `json:"from_store_id" gorm:"not null;uniqueIndex:idx_migration_key"`
	ToStoreID    string          `json:"to_store_id" gorm:"not null"`
	EntityType   EntityType      `json:"entity_type" gorm:"not null;uniqueIndex:idx_migration_key"`
	SourceID     string          `json:"source_id" gorm:"not null;uniqueIndex:idx_migration_key"`
	SourceName   string          `json:"source_name"`
	DestID       string          `json:"dest_id"`
	Status       MigrationStatus `json:"status" gorm:"default:PENDING"`
	ErrorMessage string          `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (r *MigrationRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// Migrated reports whether the destination object exists and must not be
// created again on a rerun. PARTIAL counts: the remote product was created,
// only follow-up steps failed.
func (r *MigrationRecord) Migrated() bool {
	return r.Status == StatusSuccess || r.Status == StatusPartial
}
