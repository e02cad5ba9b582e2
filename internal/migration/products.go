package migration

import (
	"fmt"
	"strings"
	"unicode"

	"migrator/internal/logger"
	"migrator/internal/models"
	"migrator/internal/store"
)

// Product pipeline states. Failure at or before stateCreated demotes the
// ledger row to FAILED; anything after is best-effort and at worst demotes the
// terminal status to PARTIAL. The created remote product is never rolled back.
const (
	statePending           = "pending"
	stateTaxonomyResolved  = "taxonomy_resolved"
	statePayloadBuilt      = "payload_built"
	stateCreated           = "created"
	stateInventoryAttached = "inventory_attached"
	stateMediaAttached     = "media_attached"
	stateCategoriesLinked  = "categories_linked"
)

// ProductImporter runs the per-product pipeline: reconcile taxonomy, build the
// payload through the active schema adapter, create with collision retry, then
// best-effort inventory/variants/media/collection links.
type ProductImporter struct {
	api        StoreAPI
	adapter    SchemaAdapter
	reconciler *Reconciler
	ledger     *Ledger
	fetcher    *Fetcher
	logger     *logger.Logger

	linkRetry   RetryPolicy
	slugRetries int
	currency    string
}

func NewProductImporter(api StoreAPI, adapter SchemaAdapter, reconciler *Reconciler, ledger *Ledger,
	fetcher *Fetcher, logger *logger.Logger, linkRetry RetryPolicy, slugRetries int, currency string) *ProductImporter {
	return &ProductImporter{
		api:         api,
		adapter:     adapter,
		reconciler:  reconciler,
		ledger:      ledger,
		fetcher:     fetcher,
		logger:      logger,
		linkRetry:   linkRetry,
		slugRetries: slugRetries,
		currency:    currency,
	}
}

func (i *ProductImporter) Import(rc *runContext, p *models.SourceProduct, doc *models.CatalogDocument, summary *models.Summary) {
	if p.Name == "" && p.SKU == "" {
		i.logger.Error("Product %s has neither name nor sku, skipped", p.ID)
		summary.AddError("product " + p.ID + ": missing name and sku, skipped")
		return
	}

	existing, err := i.ledger.Find(rc.OperatorID, rc.FromStoreID, models.EntityProduct, p.ID)
	if err != nil {
		i.logger.Error("Ledger lookup for product %s failed: %v", p.ID, err)
	}
	if existing != nil && existing.Migrated() {
		i.logger.Debug("Product %q already migrated, skipping", p.Name)
		return
	}

	rec := &models.MigrationRecord{
		OperatorID:  rc.OperatorID,
		FromStoreID: rc.FromStoreID,
		ToStoreID:   rc.ToStoreID,
		EntityType:  models.EntityProduct,
		SourceID:    p.ID,
		SourceName:  p.Name,
		Status:      models.StatusPending,
	}
	if err := i.ledger.Upsert(rec); err != nil {
		i.logger.Error("Ledger upsert for product %s failed: %v", p.ID, err)
	}
	state := statePending

	fail := func(reason error) {
		rec.Status = models.StatusFailed
		rec.ErrorMessage = reason.Error()
		if err := i.ledger.Upsert(rec); err != nil {
			i.logger.Error("Ledger upsert for product %s failed: %v", p.ID, err)
		}
		summary.AddError(fmt.Sprintf("product %s (%s): %v", p.Name, state, reason))
	}

	growTaxonomy := func(created bool) {
		if created {
			summary.TaxonomyCreated++
		}
	}

	refs := ResolvedRefs{}
	if i.adapter.TaxonomyAware() {
		refs = i.resolveRefs(rc, p, doc, growTaxonomy)
	}
	state = stateTaxonomyResolved

	slugBase := p.Slug
	if slugBase == "" {
		slugBase = slugify(p.Name)
	}

	state = statePayloadBuilt
	created, acceptedSlug, err := i.createWithCollisionRetry(p, slugBase, refs)
	if err != nil {
		fail(err)
		return
	}
	i.logger.Debug("Product %q reached state %s as %s", p.Name, stateCreated, created.ID)

	rec.DestID = created.ID
	if acceptedSlug != "" && created.Slug == "" {
		created.Slug = acceptedSlug
	}

	// Everything past this point is best-effort: the remote product exists
	// and its status never falls back to FAILED.
	var postErrs []error

	inventoryUpdated, attachErrs := i.adapter.AttachDetails(i.api, created, p)
	postErrs = append(postErrs, attachErrs...)
	if inventoryUpdated {
		summary.InventoryUpdated++
	}
	i.logger.Debug("Product %q reached state %s", p.Name, stateInventoryAttached)

	if len(p.Media) > 0 {
		media := make([]store.MediaItem, 0, len(p.Media))
		for _, url := range p.Media {
			media = append(media, store.MediaItem{URL: url})
		}
		if err := i.api.AddProductMedia(created.ID, media); err != nil {
			postErrs = append(postErrs, fmt.Errorf("media attach: %w", err))
		}
		i.logger.Debug("Product %q reached state %s", p.Name, stateMediaAttached)
	}

	postErrs = append(postErrs, i.linkCollections(rc, p, created.ID)...)
	i.logger.Debug("Product %q reached state %s", p.Name, stateCategoriesLinked)

	if len(postErrs) == 0 {
		rec.Status = models.StatusSuccess
	} else {
		rec.Status = models.StatusPartial
		msgs := make([]string, 0, len(postErrs))
		for _, e := range postErrs {
			msgs = append(msgs, e.Error())
			summary.AddError(fmt.Sprintf("product %s: %v", p.Name, e))
		}
		rec.ErrorMessage = strings.Join(msgs, "; ")
	}
	if err := i.ledger.Upsert(rec); err != nil {
		i.logger.Error("Ledger upsert for product %s failed: %v", p.ID, err)
	}
	summary.ProductsImported++
}

// resolveRefs resolves every shared entity the product references. Unresolved
// references come back empty and the product imports without them.
func (i *ProductImporter) resolveRefs(rc *runContext, p *models.SourceProduct, doc *models.CatalogDocument, grow func(bool)) ResolvedRefs {
	refs := ResolvedRefs{}

	if p.BrandID != "" || p.BrandName != "" {
		entity := taxonomyBlockLookup(doc.Brands, models.EntityBrand, p.BrandID, p.BrandName)
		id, created := i.reconciler.EnsureDestinationID(rc, entity)
		refs.BrandID = id
		grow(created)
	}
	if p.RibbonID != "" || p.RibbonName != "" {
		entity := taxonomyBlockLookup(doc.Ribbons, models.EntityRibbon, p.RibbonID, p.RibbonName)
		id, created := i.reconciler.EnsureDestinationID(rc, entity)
		refs.RibbonID = id
		grow(created)
	}
	for _, sourceID := range p.CustomizationIDs {
		entity := taxonomyBlockLookup(doc.Customizations, models.EntityCustomization, sourceID, "")
		if id, created := i.reconciler.EnsureDestinationID(rc, entity); id != "" {
			refs.CustomizationIDs = append(refs.CustomizationIDs, id)
			grow(created)
		}
	}
	for _, sourceID := range p.InfoSectionIDs {
		entity := taxonomyBlockLookup(doc.InfoSections, models.EntityInfoSection, sourceID, "")
		if id, created := i.reconciler.EnsureDestinationID(rc, entity); id != "" {
			refs.InfoSectionIDs = append(refs.InfoSectionIDs, id)
			grow(created)
		}
	}

	return refs
}

// taxonomyBlockLookup finds the exported taxonomy block for a reference,
// falling back to whatever identity the product itself carries.
func taxonomyBlockLookup(block []models.TaxonomyEntity, entityType models.EntityType, sourceID, name string) models.TaxonomyEntity {
	for _, e := range block {
		if sourceID != "" && e.SourceID == sourceID {
			e.Type = entityType
			return e
		}
		if sourceID == "" && name != "" && normalizeName(e.Name) == normalizeName(name) {
			e.Type = entityType
			return e
		}
	}
	return models.TaxonomyEntity{Type: entityType, SourceID: sourceID, Name: name}
}

// createWithCollisionRetry creates the product, retrying slug collisions with
// a numeric suffix up to the bound. Returns the accepted slug of the attempt
// that went through.
func (i *ProductImporter) createWithCollisionRetry(p *models.SourceProduct, slugBase string, refs ResolvedRefs) (*store.CreatedProduct, string, error) {
	for attempt := 0; ; attempt++ {
		slug := slugBase
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", slugBase, attempt)
		}

		payload, err := i.adapter.BuildCreatePayload(p, slug, refs, i.currency)
		if err != nil {
			return nil, "", fmt.Errorf("payload build: %w", err)
		}

		created, err := i.api.CreateProduct(payload)
		if err == nil {
			return created, slug, nil
		}
		if store.IsConflict(err) && attempt < i.slugRetries {
			i.logger.Debug("Slug %q taken, retrying with suffix", slug)
			continue
		}
		return nil, "", err
	}
}

func (i *ProductImporter) linkCollections(rc *runContext, p *models.SourceProduct, productID string) []error {
	var errs []error

	link := func(collectionID string) {
		err := i.linkRetry.Do(func() error {
			return i.api.LinkProductToCollection(collectionID, productID)
		}, store.IsRateLimited)
		if err != nil {
			errs = append(errs, fmt.Errorf("collection link %s: %w", collectionID, err))
		}
	}

	linked := make(map[string]bool)
	for _, sourceID := range p.CollectionIDs {
		if sourceID == sentinelCollectionID {
			continue
		}
		destID, ok := rc.CollectionIDs[sourceID]
		if !ok {
			continue
		}
		if !linked[destID] {
			linked[destID] = true
			link(destID)
		}
	}

	// Documents produced by older exports carry collection slugs only; the
	// slug map is built lazily on first need.
	for _, slug := range p.CollectionSlugs {
		if err := i.ensureCollectionSlugs(rc); err != nil {
			errs = append(errs, fmt.Errorf("collection slug lookup: %w", err))
			break
		}
		destID, ok := rc.CollectionSlugs[slug]
		if !ok || linked[destID] {
			continue
		}
		linked[destID] = true
		link(destID)
	}

	return errs
}

func (i *ProductImporter) ensureCollectionSlugs(rc *runContext) error {
	if rc.slugsLoaded {
		return nil
	}
	collections, err := fetchAllPages(i.fetcher.pageSize, i.fetcher.maxPages, i.api.ListCollections)
	if err != nil {
		return err
	}
	for _, c := range collections {
		if c.Slug != "" {
			if _, exists := rc.CollectionSlugs[c.Slug]; !exists {
				rc.CollectionSlugs[c.Slug] = c.ID
			}
		}
	}
	rc.slugsLoaded = true
	return nil
}

// slugify derives a URL-safe slug from a product name.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
