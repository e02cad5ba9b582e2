package migration

import (
	"fmt"

	"migrator/internal/config"
	"migrator/internal/database"
	"migrator/internal/logger"
	"migrator/internal/store"

	"gorm.io/gorm"
)

// fakeStore is an in-memory StoreAPI. Zero-value methods behave like an empty
// store; tests override the hook fields they care about and inspect the
// recorded calls.
type fakeStore struct {
	id   string
	info store.StoreInfo

	collections []store.Collection
	taxonomy    map[store.TaxonomyKind][]store.TaxonomyEntity
	flat        []store.FlatProduct
	relational  []store.RelationalProduct
	variants    map[string][]store.FlatVariant
	inventory   []store.InventoryItem

	infoErr       error
	createErr     func(attempt int) error
	collectionErr error

	nextID int

	createAttempts    int
	createdPayloads   []interface{}
	createdSlugs      []string
	createdCollection []store.CollectionCreate
	createdTaxonomy   []store.TaxonomyCreate
	inventoryPatches  []store.FlatInventoryPatch
	variantPatches    []store.FlatVariantsPatch
	mediaCalls        [][]store.MediaItem
	links             []string // "collectionID/productID"
	linkErrs          []error  // consumed per link call
}

func newFakeStore(id, schema string) *fakeStore {
	return &fakeStore{
		id:       id,
		info:     store.StoreInfo{StoreID: id, Currency: "USD", CatalogSchema: schema},
		taxonomy: map[store.TaxonomyKind][]store.TaxonomyEntity{},
		variants: map[string][]store.FlatVariant{},
	}
}

func (f *fakeStore) StoreID() string { return f.id }

func (f *fakeStore) GetStoreInfo() (*store.StoreInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	info := f.info
	return &info, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (f *fakeStore) ListCollections(limit, offset int) ([]store.Collection, error) {
	return page(f.collections, limit, offset), nil
}

func (f *fakeStore) CreateCollection(req store.CollectionCreate) (*store.Collection, error) {
	if f.collectionErr != nil {
		return nil, f.collectionErr
	}
	f.createdCollection = append(f.createdCollection, req)
	f.nextID++
	created := store.Collection{
		ID:      fmt.Sprintf("col-%d", f.nextID),
		Name:    req.Name,
		Slug:    slugify(req.Name),
		Visible: req.Visible,
	}
	f.collections = append(f.collections, created)
	return &created, nil
}

func (f *fakeStore) LinkProductToCollection(collectionID, productID string) error {
	if len(f.linkErrs) > 0 {
		err := f.linkErrs[0]
		f.linkErrs = f.linkErrs[1:]
		if err != nil {
			return err
		}
	}
	f.links = append(f.links, collectionID+"/"+productID)
	return nil
}

func (f *fakeStore) ListProductsFlat(limit, offset int) ([]store.FlatProduct, error) {
	return page(f.flat, limit, offset), nil
}

func (f *fakeStore) ListProductsRelational(limit, offset int) ([]store.RelationalProduct, error) {
	return page(f.relational, limit, offset), nil
}

func (f *fakeStore) ListVariants(productID string) ([]store.FlatVariant, error) {
	return f.variants[productID], nil
}

func (f *fakeStore) ListInventory(limit, offset int) ([]store.InventoryItem, error) {
	return page(f.inventory, limit, offset), nil
}

func (f *fakeStore) CreateProduct(payload interface{}) (*store.CreatedProduct, error) {
	f.createAttempts++
	if f.createErr != nil {
		if err := f.createErr(f.createAttempts); err != nil {
			return nil, err
		}
	}
	f.createdPayloads = append(f.createdPayloads, payload)

	slug := ""
	switch p := payload.(type) {
	case *store.FlatProductCreate:
		slug = p.Slug
	case *store.RelationalProductCreate:
		slug = p.Slug
	}
	f.createdSlugs = append(f.createdSlugs, slug)

	f.nextID++
	return &store.CreatedProduct{
		ID:   fmt.Sprintf("prod-%d", f.nextID),
		Slug: slug,
	}, nil
}

func (f *fakeStore) PatchProductInventory(productID string, patch store.FlatInventoryPatch) error {
	f.inventoryPatches = append(f.inventoryPatches, patch)
	return nil
}

func (f *fakeStore) PatchProductVariants(productID string, patch store.FlatVariantsPatch) error {
	f.variantPatches = append(f.variantPatches, patch)
	return nil
}

func (f *fakeStore) AddProductMedia(productID string, media []store.MediaItem) error {
	f.mediaCalls = append(f.mediaCalls, media)
	return nil
}

func (f *fakeStore) ListTaxonomy(kind store.TaxonomyKind, limit, offset int) ([]store.TaxonomyEntity, error) {
	return page(f.taxonomy[kind], limit, offset), nil
}

func (f *fakeStore) CreateTaxonomy(kind store.TaxonomyKind, req store.TaxonomyCreate) (*store.TaxonomyEntity, error) {
	f.createdTaxonomy = append(f.createdTaxonomy, req)
	f.nextID++
	created := store.TaxonomyEntity{
		ID:   fmt.Sprintf("%s-%d", kind, f.nextID),
		Name: req.Name,
	}
	f.taxonomy[kind] = append(f.taxonomy[kind], created)
	return &created, nil
}

// --- shared test helpers ---

func testConfig() *config.Config {
	return &config.Config{
		StoreAPIBase:  "http://stores.test/%s",
		PageSize:      100,
		MaxPages:      200,
		SlugRetries:   8,
		RateLimitMax:  3,
		RateLimitBase: 1,
		LogLevel:      "error",
	}
}

func testDB(t interface{ Fatalf(string, ...interface{}) }) *gorm.DB {
	db, err := database.New("sqlite://:memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db.DB
}

func testLogger() *logger.Logger {
	return logger.New("error")
}

func testEngine(t interface{ Fatalf(string, ...interface{}) }, stores map[string]StoreAPI) *Engine {
	e := NewEngine(testConfig(), testLogger(), testDB(t))
	e.newClient = func(storeID string) (StoreAPI, error) {
		api, ok := stores[storeID]
		if !ok {
			return nil, &AuthError{StoreID: storeID, Err: fmt.Errorf("no access token configured for store %s", storeID)}
		}
		return api, nil
	}
	return e
}
