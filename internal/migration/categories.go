package migration

import (
	"migrator/internal/logger"
	"migrator/internal/models"
	"migrator/internal/store"
)

// The platform maintains a synthetic bucket holding every product of a store.
// It must never be created on the destination nor linked to any product.
const sentinelCollectionID = "00000000-0000-0000-0000-000000000001"

func isSentinelCollection(c models.SourceCollection) bool {
	if c.ID == sentinelCollectionID {
		return true
	}
	switch normalizeName(c.Name) {
	case "all items", "all products":
		return true
	}
	return false
}

// CollectionImporter creates destination collections, tracked in the ledger so
// reruns skip what already succeeded.
type CollectionImporter struct {
	api    StoreAPI
	ledger *Ledger
	logger *logger.Logger
}

func NewCollectionImporter(api StoreAPI, ledger *Ledger, logger *logger.Logger) *CollectionImporter {
	return &CollectionImporter{api: api, ledger: ledger, logger: logger}
}

func (i *CollectionImporter) Import(rc *runContext, collections []models.SourceCollection, summary *models.Summary) {
	for _, c := range collections {
		if isSentinelCollection(c) {
			i.logger.Debug("Skipping synthetic collection %q", c.Name)
			continue
		}
		i.importOne(rc, c, summary)
	}
}

func (i *CollectionImporter) importOne(rc *runContext, c models.SourceCollection, summary *models.Summary) {
	if c.Name == "" {
		summary.AddError("collection " + c.ID + ": missing name, skipped")
		return
	}

	existing, err := i.ledger.Find(rc.OperatorID, rc.FromStoreID, models.EntityCollection, c.ID)
	if err != nil {
		i.logger.Error("Ledger lookup for collection %s failed: %v", c.ID, err)
	}
	if existing != nil && existing.Migrated() {
		rc.CollectionIDs[c.ID] = existing.DestID
		return
	}

	rec := &models.MigrationRecord{
		OperatorID:  rc.OperatorID,
		FromStoreID: rc.FromStoreID,
		ToStoreID:   rc.ToStoreID,
		EntityType:  models.EntityCollection,
		SourceID:    c.ID,
		SourceName:  c.Name,
		Status:      models.StatusPending,
	}

	// System fields (id, slug, product counts) are stripped; the destination
	// generates its own slug.
	created, err := i.api.CreateCollection(store.CollectionCreate{
		Name:        c.Name,
		Description: c.Description,
		Media:       c.Media,
		Visible:     c.Visible,
	})
	if err != nil {
		rec.Status = models.StatusFailed
		rec.ErrorMessage = err.Error()
		if upsertErr := i.ledger.Upsert(rec); upsertErr != nil {
			i.logger.Error("Ledger upsert for collection %s failed: %v", c.ID, upsertErr)
		}
		summary.AddError("collection " + c.Name + ": " + err.Error())
		return
	}

	rec.Status = models.StatusSuccess
	rec.DestID = created.ID
	if err := i.ledger.Upsert(rec); err != nil {
		i.logger.Error("Ledger upsert for collection %s failed: %v", c.ID, err)
	}

	rc.CollectionIDs[c.ID] = created.ID
	if created.Slug != "" {
		rc.CollectionSlugs[created.Slug] = created.ID
	}
	summary.CollectionsImported++
}
