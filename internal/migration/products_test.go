package migration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"migrator/internal/models"
	"migrator/internal/store"
)

func newTestImporter(t *testing.T, api *fakeStore, adapter SchemaAdapter, slugRetries int) (*ProductImporter, *Ledger) {
	t.Helper()
	ledger := NewLedger(testDB(t))
	log := testLogger()
	linkRetry := NewRetryPolicy(3, time.Millisecond)
	linkRetry.sleep = func(time.Duration) {}
	imp := NewProductImporter(api, adapter, NewReconciler(api, ledger, log), ledger,
		NewFetcher(api, 100, 200, log), log, linkRetry, slugRetries, "USD")
	return imp, ledger
}

func conflictErr() error { return &store.APIError{StatusCode: 409} }

func TestImportRetriesSlugCollisions(t *testing.T) {
	api := newFakeStore("dst", store.SchemaFlat)
	api.createErr = func(attempt int) error {
		if attempt <= 3 {
			return conflictErr()
		}
		return nil
	}
	imp, ledger := newTestImporter(t, api, NewFlatAdapter(), 8)

	var summary models.Summary
	p := shirtProduct()
	imp.Import(newRunContext("op-1", "src", "dst"), p, &models.CatalogDocument{}, &summary)

	assert.Equal(t, 4, api.createAttempts)
	// Only the accepted attempt lands; the suffix counts failed attempts.
	require.Equal(t, []string{"shirt-3"}, api.createdSlugs)

	rec, err := ledger.Find("op-1", "src", models.EntityProduct, p.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusSuccess, rec.Status)
	assert.NotEmpty(t, rec.DestID)
	assert.Equal(t, 1, summary.ProductsImported)
}

func TestImportFailsWhenCollisionBoundExceeded(t *testing.T) {
	api := newFakeStore("dst", store.SchemaFlat)
	api.createErr = func(int) error { return conflictErr() }
	imp, ledger := newTestImporter(t, api, NewFlatAdapter(), 2)

	var summary models.Summary
	p := shirtProduct()
	imp.Import(newRunContext("op-1", "src", "dst"), p, &models.CatalogDocument{}, &summary)

	assert.Equal(t, 3, api.createAttempts) // base slug plus two suffixed retries

	rec, err := ledger.Find("op-1", "src", models.EntityProduct, p.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusFailed, rec.Status)
	assert.NotEmpty(t, rec.ErrorMessage)
	assert.Equal(t, 0, summary.ProductsImported)
	assert.Len(t, summary.Errors, 1)
}

func TestImportDemotesToPartialOnLinkFailure(t *testing.T) {
	api := newFakeStore("dst", store.SchemaFlat)
	api.linkErrs = []error{&store.APIError{StatusCode: 500, Body: "upstream broke"}}
	imp, ledger := newTestImporter(t, api, NewFlatAdapter(), 8)

	rc := newRunContext("op-1", "src", "dst")
	rc.CollectionIDs["src-col-1"] = "dst-col-1"

	p := shirtProduct()
	p.CollectionIDs = []string{"src-col-1"}

	var summary models.Summary
	imp.Import(rc, p, &models.CatalogDocument{}, &summary)

	// The remote product exists, so a failed follow-up never yields FAILED.
	rec, err := ledger.Find("op-1", "src", models.EntityProduct, p.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusPartial, rec.Status)
	assert.Contains(t, rec.ErrorMessage, "collection link")
	assert.NotEmpty(t, rec.DestID)
	assert.Equal(t, 1, summary.ProductsImported)
	assert.True(t, rec.Migrated(), "partial rows must still skip on rerun")
}

func TestImportRetriesRateLimitedLinks(t *testing.T) {
	api := newFakeStore("dst", store.SchemaFlat)
	api.linkErrs = []error{
		&store.APIError{StatusCode: 429},
		&store.APIError{StatusCode: 429},
	}
	imp, ledger := newTestImporter(t, api, NewFlatAdapter(), 8)

	rc := newRunContext("op-1", "src", "dst")
	rc.CollectionIDs["src-col-1"] = "dst-col-1"

	p := shirtProduct()
	p.CollectionIDs = []string{"src-col-1"}

	var summary models.Summary
	imp.Import(rc, p, &models.CatalogDocument{}, &summary)

	assert.Equal(t, []string{"dst-col-1/" + mustDestID(t, ledger, p.ID)}, api.links)

	rec, err := ledger.Find("op-1", "src", models.EntityProduct, p.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusSuccess, rec.Status)
}

func mustDestID(t *testing.T, ledger *Ledger, sourceID string) string {
	t.Helper()
	rec, err := ledger.Find("op-1", "src", models.EntityProduct, sourceID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec.DestID
}

func TestImportSkipsProductWithoutIdentity(t *testing.T) {
	api := newFakeStore("dst", store.SchemaFlat)
	imp, ledger := newTestImporter(t, api, NewFlatAdapter(), 8)

	var summary models.Summary
	imp.Import(newRunContext("op-1", "src", "dst"), &models.SourceProduct{ID: "p-broken"}, &models.CatalogDocument{}, &summary)

	assert.Equal(t, 0, api.createAttempts)
	assert.Len(t, summary.Errors, 1)

	rec, err := ledger.Find("op-1", "src", models.EntityProduct, "p-broken")
	require.NoError(t, err)
	assert.Nil(t, rec, "invalid products never enter the ledger")
}

func TestImportSkipsAlreadyMigratedProduct(t *testing.T) {
	api := newFakeStore("dst", store.SchemaFlat)
	imp, ledger := newTestImporter(t, api, NewFlatAdapter(), 8)

	p := shirtProduct()
	require.NoError(t, ledger.Upsert(&models.MigrationRecord{
		OperatorID:  "op-1",
		FromStoreID: "src",
		ToStoreID:   "dst",
		EntityType:  models.EntityProduct,
		SourceID:    p.ID,
		DestID:      "prod-old",
		Status:      models.StatusSuccess,
	}))

	var summary models.Summary
	imp.Import(newRunContext("op-1", "src", "dst"), p, &models.CatalogDocument{}, &summary)

	assert.Equal(t, 0, api.createAttempts)
	assert.Equal(t, 0, summary.ProductsImported)
}

func TestImportNeverLinksSentinelCollection(t *testing.T) {
	api := newFakeStore("dst", store.SchemaFlat)
	imp, _ := newTestImporter(t, api, NewFlatAdapter(), 8)

	rc := newRunContext("op-1", "src", "dst")
	rc.CollectionIDs["src-col-1"] = "dst-col-1"
	rc.CollectionIDs[sentinelCollectionID] = "dst-should-not-exist"

	p := shirtProduct()
	p.CollectionIDs = []string{sentinelCollectionID, "src-col-1"}

	var summary models.Summary
	imp.Import(rc, p, &models.CatalogDocument{}, &summary)

	require.Len(t, api.links, 1)
	assert.Contains(t, api.links[0], "dst-col-1/")
}

func TestImportLinksByCollectionSlugLazily(t *testing.T) {
	api := newFakeStore("dst", store.SchemaFlat)
	api.collections = []store.Collection{
		{ID: "dst-col-7", Name: "Summer", Slug: "summer"},
	}
	imp, _ := newTestImporter(t, api, NewFlatAdapter(), 8)

	p := shirtProduct()
	p.CollectionSlugs = []string{"summer"}

	var summary models.Summary
	imp.Import(newRunContext("op-1", "src", "dst"), p, &models.CatalogDocument{}, &summary)

	require.Len(t, api.links, 1)
	assert.Contains(t, api.links[0], "dst-col-7/")
}

func TestImportResolvesTaxonomyOnRelationalSchema(t *testing.T) {
	api := newFakeStore("dst", store.SchemaRelational)
	imp, _ := newTestImporter(t, api, NewRelationalAdapter(), 8)

	p := shirtProduct()
	p.BrandID = "src-brand-1"
	doc := &models.CatalogDocument{
		Brands: []models.TaxonomyEntity{
			{SourceID: "src-brand-1", Name: "Acme"},
		},
	}

	var summary models.Summary
	imp.Import(newRunContext("op-1", "src", "dst"), p, doc, &summary)

	require.Len(t, api.createdTaxonomy, 1)
	assert.Equal(t, "Acme", api.createdTaxonomy[0].Name)
	assert.Equal(t, 1, summary.TaxonomyCreated)

	require.Len(t, api.createdPayloads, 1)
	create := api.createdPayloads[0].(*store.RelationalProductCreate)
	assert.NotEmpty(t, create.BrandID)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "blue-suede-shoes", slugify("  Blue Suede Shoes "))
	assert.Equal(t, "t-shirt-2", slugify("T-Shirt #2!"))
	assert.Equal(t, "", slugify("***"))
}
