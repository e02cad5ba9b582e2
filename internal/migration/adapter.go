package migration

import (
	"github.com/shopspring/decimal"

	"migrator/internal/models"
	"migrator/internal/store"
)

// ResolvedRefs carries the destination ids the taxonomy reconciler resolved
// for one product. Empty fields mean the reference could not be resolved and
// is treated as absent.
type ResolvedRefs struct {
	BrandID          string
	RibbonID         string
	CustomizationIDs []string
	InfoSectionIDs   []string
}

// SchemaAdapter knows how to build a valid create payload for one catalog
// schema version and how to finish the product after creation. Exactly two
// implementations exist; the orchestrator picks one per run from the detected
// capability flag.
type SchemaAdapter interface {
	Name() string

	// TaxonomyAware reports whether the destination schema references shared
	// entities by id (and therefore needs reconciliation before payload
	// build). The flat schema carries brand/ribbon as inline text instead.
	TaxonomyAware() bool

	// BuildCreatePayload builds the outgoing product document. The slug is
	// passed separately so collision retries can vary it without rebuilding.
	BuildCreatePayload(p *models.SourceProduct, slug string, refs ResolvedRefs, currency string) (interface{}, error)

	// AttachDetails performs the version-specific follow-up writes after the
	// product exists. Best-effort: errors are collected, never fatal.
	AttachDetails(api StoreAPI, created *store.CreatedProduct, p *models.SourceProduct) (inventoryUpdated bool, errs []error)
}

// effectiveProductType defaults to physical when the source value is absent or
// unrecognized.
func effectiveProductType(t models.ProductType) string {
	if t == models.ProductTypeDigital {
		return string(models.ProductTypeDigital)
	}
	return string(models.ProductTypePhysical)
}

// moneyString renders an amount as a fixed-point decimal string. Currency
// amounts never travel as floats.
func moneyString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// basePrice picks the product-level price: the first visible variant's price,
// falling back to the first variant.
func basePrice(p *models.SourceProduct) decimal.Decimal {
	for _, v := range p.Variants {
		if v.Visible {
			return v.Price
		}
	}
	if len(p.Variants) > 0 {
		return p.Variants[0].Price
	}
	return decimal.Zero
}
