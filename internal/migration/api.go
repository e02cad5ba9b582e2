package migration

import (
	"strings"

	"migrator/internal/models"
	"migrator/internal/store"
)

// StoreAPI is the slice of the platform client the engine needs. *store.Client
// satisfies it; tests use an in-memory fake.
type StoreAPI interface {
	StoreID() string
	GetStoreInfo() (*store.StoreInfo, error)

	ListCollections(limit, offset int) ([]store.Collection, error)
	CreateCollection(req store.CollectionCreate) (*store.Collection, error)
	LinkProductToCollection(collectionID, productID string) error

	ListProductsFlat(limit, offset int) ([]store.FlatProduct, error)
	ListProductsRelational(limit, offset int) ([]store.RelationalProduct, error)
	ListVariants(productID string) ([]store.FlatVariant, error)
	ListInventory(limit, offset int) ([]store.InventoryItem, error)

	CreateProduct(payload interface{}) (*store.CreatedProduct, error)
	PatchProductInventory(productID string, patch store.FlatInventoryPatch) error
	PatchProductVariants(productID string, patch store.FlatVariantsPatch) error
	AddProductMedia(productID string, media []store.MediaItem) error

	ListTaxonomy(kind store.TaxonomyKind, limit, offset int) ([]store.TaxonomyEntity, error)
	CreateTaxonomy(kind store.TaxonomyKind, req store.TaxonomyCreate) (*store.TaxonomyEntity, error)
}

var _ StoreAPI = (*store.Client)(nil)

// taxonomyKinds maps ledger entity types to platform resources.
var taxonomyKinds = map[models.EntityType]store.TaxonomyKind{
	models.EntityBrand:         store.KindBrand,
	models.EntityRibbon:        store.KindRibbon,
	models.EntityCustomization: store.KindCustomization,
	models.EntityInfoSection:   store.KindInfoSection,
}

// RelationMaps is the run-scoped cache for one taxonomy resolution pass:
// ledger-derived source->destination id maps plus a live index of destination
// entities by lowercase-trimmed name. Grown as entities are created, never
// shared across runs.
type RelationMaps struct {
	IDs   map[models.EntityType]map[string]string
	Names map[models.EntityType]map[string]string
}

func NewRelationMaps() *RelationMaps {
	m := &RelationMaps{
		IDs:   make(map[models.EntityType]map[string]string),
		Names: make(map[models.EntityType]map[string]string),
	}
	for entityType := range taxonomyKinds {
		m.IDs[entityType] = make(map[string]string)
		m.Names[entityType] = make(map[string]string)
	}
	return m
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (m *RelationMaps) ResolveID(entityType models.EntityType, sourceID string) (string, bool) {
	destID, ok := m.IDs[entityType][sourceID]
	return destID, ok && destID != ""
}

func (m *RelationMaps) ResolveName(entityType models.EntityType, name string) (string, bool) {
	destID, ok := m.Names[entityType][normalizeName(name)]
	return destID, ok && destID != ""
}

func (m *RelationMaps) PutID(entityType models.EntityType, sourceID, destID string) {
	if sourceID != "" {
		m.IDs[entityType][sourceID] = destID
	}
}

func (m *RelationMaps) PutName(entityType models.EntityType, name, destID string) {
	if key := normalizeName(name); key != "" {
		m.Names[entityType][key] = destID
	}
}

// runContext carries the per-run caches through the import call chain. One
// instance per run, single-writer; never a package global.
type runContext struct {
	OperatorID  string
	FromStoreID string
	ToStoreID   string

	Relations *RelationMaps

	// CollectionIDs maps source collection id -> destination collection id
	// (filled by the category importer and the ledger).
	CollectionIDs map[string]string

	// CollectionSlugs maps destination collection slug -> destination id,
	// populated lazily during product import. Process-local, not persisted.
	CollectionSlugs map[string]string
	slugsLoaded     bool
}

func newRunContext(operatorID, fromStoreID, toStoreID string) *runContext {
	return &runContext{
		OperatorID:      operatorID,
		FromStoreID:     fromStoreID,
		ToStoreID:       toStoreID,
		Relations:       NewRelationMaps(),
		CollectionIDs:   make(map[string]string),
		CollectionSlugs: make(map[string]string),
	}
}
