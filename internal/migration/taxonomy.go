package migration

import (
	"migrator/internal/logger"
	"migrator/internal/models"
	"migrator/internal/store"
)

// Reconciler ensures a destination-side counterpart exists for each shared
// entity referenced by a source product. Resolution order: ledger mapping by
// source id, then destination name index (case-insensitive, trimmed), then
// creation. The run caches make repeated references within one run free of
// duplicate-creation risk.
type Reconciler struct {
	api    StoreAPI
	ledger *Ledger
	logger *logger.Logger
}

func NewReconciler(api StoreAPI, ledger *Ledger, logger *logger.Logger) *Reconciler {
	return &Reconciler{api: api, ledger: ledger, logger: logger}
}

// sourceKey is the ledger key for an entity. Entities that only exist as
// inline text on the source side have no id; their normalized name stands in.
func sourceKey(entity models.TaxonomyEntity) string {
	if entity.SourceID != "" {
		return entity.SourceID
	}
	return "name:" + normalizeName(entity.Name)
}

// EnsureDestinationID resolves or creates the destination entity and returns
// its id, plus whether a remote create happened. An empty id means the
// reference could not be resolved; callers treat it as absent, not fatal.
func (r *Reconciler) EnsureDestinationID(rc *runContext, entity models.TaxonomyEntity) (string, bool) {
	if entity.Name == "" && entity.SourceID == "" {
		return "", false
	}

	// 1. Ledger-recorded mapping by source id.
	if entity.SourceID != "" {
		if destID, ok := rc.Relations.ResolveID(entity.Type, entity.SourceID); ok {
			return destID, false
		}
	}

	// 2. Destination name index. A hit is written back to the ledger so
	// future runs resolve by id directly.
	if destID, ok := rc.Relations.ResolveName(entity.Type, entity.Name); ok {
		rc.Relations.PutID(entity.Type, entity.SourceID, destID)
		r.recordMapping(rc, entity, destID)
		return destID, false
	}

	// 3. Create on the destination with the best available name.
	kind := taxonomyKinds[entity.Type]
	created, err := r.api.CreateTaxonomy(kind, store.TaxonomyCreate{
		Name:        entity.Name,
		Description: entity.Description,
	})
	if err != nil {
		r.logger.Error("Failed to create %s %q on destination: %v", kind, entity.Name, err)
		return "", false
	}

	rc.Relations.PutID(entity.Type, entity.SourceID, created.ID)
	rc.Relations.PutName(entity.Type, entity.Name, created.ID)
	r.recordMapping(rc, entity, created.ID)
	return created.ID, true
}

func (r *Reconciler) recordMapping(rc *runContext, entity models.TaxonomyEntity, destID string) {
	rec := &models.MigrationRecord{
		OperatorID:  rc.OperatorID,
		FromStoreID: rc.FromStoreID,
		ToStoreID:   rc.ToStoreID,
		EntityType:  entity.Type,
		SourceID:    sourceKey(entity),
		SourceName:  entity.Name,
		DestID:      destID,
		Status:      models.StatusSuccess,
	}
	if err := r.ledger.Upsert(rec); err != nil {
		r.logger.Error("Failed to record %s mapping for %q: %v", entity.Type, entity.Name, err)
	}
}
