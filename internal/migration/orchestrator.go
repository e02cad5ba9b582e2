package migration

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"migrator/internal/config"
	"migrator/internal/logger"
	"migrator/internal/models"
	"migrator/internal/store"
)

// ClientFactory builds the API client for one store. Swapped out in tests.
type ClientFactory func(storeID string) (StoreAPI, error)

// Engine is the catalog migration orchestrator. One Engine serves many runs;
// all run-scoped state lives in a per-run context, so concurrent operators
// cannot interfere. A single run is strictly sequential: one category, one
// product, one remote call at a time.
type Engine struct {
	cfg       *config.Config
	logger    *logger.Logger
	ledger    *Ledger
	tokens    store.TokenProvider
	newClient ClientFactory
}

func NewEngine(cfg *config.Config, logger *logger.Logger, db *gorm.DB) *Engine {
	e := &Engine{
		cfg:    cfg,
		logger: logger,
		ledger: NewLedger(db),
		tokens: store.NewEnvTokenProvider(),
	}
	e.newClient = e.defaultClientFactory
	return e
}

func (e *Engine) Ledger() *Ledger { return e.ledger }

func (e *Engine) defaultClientFactory(storeID string) (StoreAPI, error) {
	token, err := e.tokens.Token(storeID)
	if err != nil {
		return nil, &AuthError{StoreID: storeID, Err: err}
	}
	baseURL := fmt.Sprintf(e.cfg.StoreAPIBase, storeID)
	return store.NewClient(storeID, baseURL, token, e.logger), nil
}

// connect builds a client and probes the store. The probe is the credential
// check and the schema detection in one call, and it happens before any write.
func (e *Engine) connect(storeID string) (StoreAPI, *store.StoreInfo, error) {
	api, err := e.newClient(storeID)
	if err != nil {
		return nil, nil, err
	}
	info, err := api.GetStoreInfo()
	if err != nil {
		if store.IsAuthFailure(err) {
			return nil, nil, &AuthError{StoreID: storeID, Err: err}
		}
		return nil, nil, fmt.Errorf("failed to reach store %s: %w", storeID, err)
	}
	return api, info, nil
}

// ExportCatalog reads the full catalog of a store into one document: products
// enriched with inventory (matched by SKU), variant detail, collection slugs,
// and, for relational stores, the taxonomy blocks their products reference.
func (e *Engine) ExportCatalog(storeID string) (*models.CatalogDocument, error) {
	api, info, err := e.connect(storeID)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Exporting catalog from store %s (schema=%s)", storeID, schemaName(info.CatalogSchema))

	fetcher := NewFetcher(api, e.cfg.PageSize, e.cfg.MaxPages, e.logger)

	collections, err := fetcher.FetchCollections()
	if err != nil {
		return nil, err
	}

	products, err := fetcher.FetchProducts(info.CatalogSchema)
	if err != nil {
		return nil, err
	}

	slugByID := make(map[string]string, len(collections))
	for _, c := range collections {
		if !isSentinelCollection(c) {
			slugByID[c.ID] = c.Slug
		}
	}

	doc := &models.CatalogDocument{
		FromStoreID: storeID,
		Collections: collections,
	}

	relational := info.CatalogSchema == store.SchemaRelational

	var inventory map[string]models.Stock
	if !relational {
		inventory, err = fetcher.FetchInventory()
		if err != nil {
			e.logger.Error("Inventory fetch for store %s failed: %v", storeID, err)
			inventory = map[string]models.Stock{}
		}
	}

	for idx := range products {
		p := &products[idx]
		if p.Currency == "" {
			p.Currency = info.Currency
		}
		for _, id := range p.CollectionIDs {
			if slug, ok := slugByID[id]; ok && slug != "" {
				p.CollectionSlugs = append(p.CollectionSlugs, slug)
			}
		}
		if !relational {
			applyInventory(p, inventory)
		} else {
			summarizeStock(p)
		}
	}

	if relational {
		if err := e.exportTaxonomyBlocks(fetcher, doc, products); err != nil {
			e.logger.Error("Taxonomy export for store %s failed: %v", storeID, err)
		}
	}

	doc.Products = products
	e.logger.Info("Exported %d collections and %d products from store %s",
		len(collections), len(products), storeID)
	return doc, nil
}

// exportTaxonomyBlocks embeds the shared entities referenced by the exported
// products, so an import can reconcile them by name even without source-store
// access.
func (e *Engine) exportTaxonomyBlocks(fetcher *Fetcher, doc *models.CatalogDocument, products []models.SourceProduct) error {
	referenced := map[models.EntityType]map[string]bool{}
	for entityType := range taxonomyKinds {
		referenced[entityType] = map[string]bool{}
	}
	for _, p := range products {
		if p.BrandID != "" {
			referenced[models.EntityBrand][p.BrandID] = true
		}
		if p.RibbonID != "" {
			referenced[models.EntityRibbon][p.RibbonID] = true
		}
		for _, id := range p.CustomizationIDs {
			referenced[models.EntityCustomization][id] = true
		}
		for _, id := range p.InfoSectionIDs {
			referenced[models.EntityInfoSection][id] = true
		}
	}

	collect := func(entityType models.EntityType) ([]models.TaxonomyEntity, error) {
		if len(referenced[entityType]) == 0 {
			return nil, nil
		}
		items, err := fetcher.FetchTaxonomy(taxonomyKinds[entityType])
		if err != nil {
			return nil, err
		}
		var block []models.TaxonomyEntity
		for _, item := range items {
			if referenced[entityType][item.ID] {
				block = append(block, models.TaxonomyEntity{
					Type:        entityType,
					SourceID:    item.ID,
					Name:        item.Name,
					Description: item.Description,
				})
			}
		}
		return block, nil
	}

	var err error
	if doc.Brands, err = collect(models.EntityBrand); err != nil {
		return err
	}
	if doc.Ribbons, err = collect(models.EntityRibbon); err != nil {
		return err
	}
	if doc.Customizations, err = collect(models.EntityCustomization); err != nil {
		return err
	}
	doc.InfoSections, err = collect(models.EntityInfoSection)
	return err
}

// ImportCatalog imports one or more catalog documents into the destination
// store. Documents may be merged or split by concern; at least one must carry
// usable data.
func (e *Engine) ImportCatalog(operatorID, toStoreID string, docs ...*models.CatalogDocument) (*models.Summary, error) {
	merged := mergeDocuments(docs)
	if merged.Empty() {
		return nil, &ValidationError{Reason: "no usable catalog data in provided documents"}
	}

	api, info, err := e.connect(toStoreID)
	if err != nil {
		return nil, err
	}

	var adapter SchemaAdapter
	if info.CatalogSchema == store.SchemaRelational {
		adapter = NewRelationalAdapter()
	} else {
		adapter = NewFlatAdapter()
	}
	e.logger.Info("Importing into store %s with %s schema adapter", toStoreID, adapter.Name())

	currency := info.Currency
	if currency == "" {
		currency = "USD"
	}

	rc := newRunContext(operatorID, merged.FromStoreID, toStoreID)
	summary := &models.Summary{}

	fetcher := NewFetcher(api, e.cfg.PageSize, e.cfg.MaxPages, e.logger)
	reconciler := NewReconciler(api, e.ledger, e.logger)
	collectionImporter := NewCollectionImporter(api, e.ledger, e.logger)
	linkRetry := NewRetryPolicy(e.cfg.RateLimitMax, time.Duration(e.cfg.RateLimitBase)*time.Millisecond)
	productImporter := NewProductImporter(api, adapter, reconciler, e.ledger, fetcher,
		e.logger, linkRetry, e.cfg.SlugRetries, currency)

	// Collections first: products link against them.
	collectionImporter.Import(rc, merged.Collections, summary)

	if adapter.TaxonomyAware() {
		if err := e.buildRelationMaps(rc, fetcher); err != nil {
			e.logger.Error("Failed to build relation maps: %v", err)
		}
	}

	products := sortByCreation(merged.Products)
	for idx := range products {
		productImporter.Import(rc, &products[idx], merged, summary)
	}

	e.logger.Info("Import into store %s done: %d collections, %d products, %d errors",
		toStoreID, summary.CollectionsImported, summary.ProductsImported, len(summary.Errors))
	return summary, nil
}

// Run migrates a whole catalog between two stores: export, then import.
func (e *Engine) Run(operatorID, fromStoreID, toStoreID string) (*models.Summary, error) {
	doc, err := e.ExportCatalog(fromStoreID)
	if err != nil {
		return nil, err
	}
	return e.ImportCatalog(operatorID, toStoreID, doc)
}

// buildRelationMaps pages through the destination's taxonomy entities once and
// merges the ledger's recorded mappings on top.
func (e *Engine) buildRelationMaps(rc *runContext, fetcher *Fetcher) error {
	for entityType, kind := range taxonomyKinds {
		items, err := fetcher.FetchTaxonomy(kind)
		if err != nil {
			return fmt.Errorf("failed to list destination %s: %w", kind, err)
		}
		for _, item := range items {
			rc.Relations.PutName(entityType, item.Name, item.ID)
		}

		recs, err := e.ledger.ListByType(rc.OperatorID, rc.FromStoreID, entityType)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if !rec.Migrated() || rec.DestID == "" {
				continue
			}
			rc.Relations.PutID(entityType, rec.SourceID, rec.DestID)
			rc.Relations.PutName(entityType, rec.SourceName, rec.DestID)
		}
	}
	return nil
}

func mergeDocuments(docs []*models.CatalogDocument) *models.CatalogDocument {
	merged := &models.CatalogDocument{}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if merged.FromStoreID == "" {
			merged.FromStoreID = doc.FromStoreID
		}
		merged.Collections = append(merged.Collections, doc.Collections...)
		merged.Products = append(merged.Products, doc.Products...)
		merged.Brands = append(merged.Brands, doc.Brands...)
		merged.Ribbons = append(merged.Ribbons, doc.Ribbons...)
		merged.Customizations = append(merged.Customizations, doc.Customizations...)
		merged.InfoSections = append(merged.InfoSections, doc.InfoSections...)
	}
	return merged
}

// sortByCreation orders products by creation timestamp ascending so the
// destination catalog keeps the original ordering. Unparseable timestamps sort
// last; the sort is stable.
func sortByCreation(products []models.SourceProduct) []models.SourceProduct {
	type keyed struct {
		product models.SourceProduct
		created time.Time
		known   bool
	}
	items := make([]keyed, len(products))
	for i, p := range products {
		t, err := time.Parse(time.RFC3339, p.CreatedAt)
		items[i] = keyed{product: p, created: t, known: err == nil && p.CreatedAt != ""}
	}

	sort.SliceStable(items, func(a, b int) bool {
		ka, kb := items[a], items[b]
		if ka.known != kb.known {
			return ka.known
		}
		if !ka.known {
			return false
		}
		return ka.created.Before(kb.created)
	})

	sorted := make([]models.SourceProduct, len(items))
	for i, item := range items {
		sorted[i] = item.product
	}
	return sorted
}

// applyInventory overlays the SKU-matched inventory records onto a product's
// variants and recomputes its stock summary.
func applyInventory(p *models.SourceProduct, inventory map[string]models.Stock) {
	for idx := range p.Variants {
		v := &p.Variants[idx]
		if stock, ok := inventory[v.SKU]; ok && v.SKU != "" {
			v.Stock = stock
		}
	}
	if stock, ok := inventory[p.SKU]; ok && len(p.Variants) == 1 && p.Variants[0].SKU == p.SKU {
		p.Variants[0].Stock = stock
	}
	summarizeStock(p)
}

func summarizeStock(p *models.SourceProduct) {
	summary := models.Stock{}
	for _, v := range p.Variants {
		summary.Quantity += v.Stock.Quantity
		summary.InStock = summary.InStock || v.Stock.InStock
		summary.TrackQuantity = summary.TrackQuantity || v.Stock.TrackQuantity
	}
	p.Stock = summary
}

func schemaName(schema string) string {
	if schema == store.SchemaRelational {
		return store.SchemaRelational
	}
	return store.SchemaFlat
}
