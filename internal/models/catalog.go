package models

import (
	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypePhysical    ProductType = "physical"
	ProductTypeDigital     ProductType = "digital"
	ProductTypeUnspecified ProductType = "unspecified"
)

// SourceCollection is a category/collection read from the source store.
type SourceCollection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Media       string `json:"media,omitempty"`
	Visible     bool   `json:"visible"`
}

// ProductOption is a declared option (e.g. Size, Color) with its ordered
// choice values.
type ProductOption struct {
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"`
	Choices []string `json:"choices"`
}

type Stock struct {
	TrackQuantity bool `json:"track_quantity"`
	Quantity      int  `json:"quantity"`
	InStock       bool `json:"in_stock"`
}

// SourceVariant is one sellable variant of a SourceProduct. Prices are kept as
// decimals end to end; they never pass through a float on the way out.
type SourceVariant struct {
	SKU            string           `json:"sku"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	Weight         float64          `json:"weight,omitempty"`
	Visible        bool             `json:"visible"`
	Choices        VariantChoices   `json:"choices"`
	Stock          Stock            `json:"stock"`
}

// SourceProduct is the canonical, version-independent shape of a product read
// from the source store. Immutable during a run.
type SourceProduct struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Description      string          `json:"description,omitempty"`
	Visible          bool            `json:"visible"`
	ProductType      ProductType     `json:"product_type"`
	SKU              string          `json:"sku"`
	Currency         string          `json:"currency,omitempty"`
	Media            []string        `json:"media,omitempty"`
	Variants         []SourceVariant `json:"variants"`
	Options          []ProductOption `json:"options,omitempty"`
	CustomizationIDs []string        `json:"customization_ids,omitempty"`
	InfoSectionIDs   []string        `json:"info_section_ids,omitempty"`
	BrandID          string          `json:"brand_id,omitempty"`
	BrandName        string          `json:"brand_name,omitempty"`
	RibbonID         string          `json:"ribbon_id,omitempty"`
	RibbonName       string          `json:"ribbon_name,omitempty"`
	CollectionIDs    []string        `json:"collection_ids,omitempty"`
	CollectionSlugs  []string        `json:"collection_slugs,omitempty"`
	Stock            Stock           `json:"stock"`
	CreatedAt        string          `json:"created_at,omitempty"` // RFC3339; may be empty or garbage
}

// TaxonomyEntity is a shared named entity (brand, ribbon, customization, info
// section) referenced by products. Name is the natural key when no ledger
// mapping exists.
type TaxonomyEntity struct {
	Type        EntityType `json:"type"`
	SourceID    string     `json:"source_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	DestID      string     `json:"dest_id,omitempty"`
}

// CatalogDocument is the exported snapshot of one store's catalog. It may be
// produced whole or split by concern (collections-only / products-only).
type CatalogDocument struct {
	FromStoreID    string             `json:"from_store_id"`
	Collections    []SourceCollection `json:"collections,omitempty"`
	Products       []SourceProduct    `json:"products,omitempty"`
	Brands         []TaxonomyEntity   `json:"brands,omitempty"`
	Ribbons        []TaxonomyEntity   `json:"ribbons,omitempty"`
	Customizations []TaxonomyEntity   `json:"customizations,omitempty"`
	InfoSections   []TaxonomyEntity   `json:"info_sections,omitempty"`
}

// Empty reports whether the document carries nothing importable.
func (d *CatalogDocument) Empty() bool {
	return d == nil || (len(d.Collections) == 0 && len(d.Products) == 0)
}

// MaxSummaryErrors caps the human-readable error list in a Summary.
const MaxSummaryErrors = 50

// Summary is the user-visible result of an import run.
type Summary struct {
	CollectionsImported int      `json:"collections_imported"`
	ProductsImported    int      `json:"products_imported"`
	InventoryUpdated    int      `json:"inventory_updated"`
	TaxonomyCreated     int      `json:"taxonomy_created"`
	Errors              []string `json:"errors,omitempty"`
	ErrorsTruncated     int      `json:"errors_truncated,omitempty"`
}

// AddError appends a human-readable error, capping the list and counting the
// overflow instead of growing without bound.
func (s *Summary) AddError(msg string) {
	if len(s.Errors) >= MaxSummaryErrors {
		s.ErrorsTruncated++
		return
	}
	s.Errors = append(s.Errors, msg)
}
