package store

import (
	"migrator/internal/models"
)

// Catalog schema versions exposed by the platform. Old stores run the flat
// schema; stores migrated to the relational catalog report it in their site
// properties.
const (
	SchemaFlat       = "flat"
	SchemaRelational = "relational"
)

// StoreInfo is the site-properties document. CatalogSchema doubles as the
// capability flag for adapter selection; it is empty on old stores.
type StoreInfo struct {
	StoreID       string `json:"storeId"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	CatalogSchema string `json:"catalogSchema,omitempty"`
}

type Collection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Media       string `json:"media,omitempty"`
	Visible     bool   `json:"visible"`
	NumProducts int    `json:"numProducts,omitempty"` // read-only
}

// CollectionCreate omits id, slug and numProducts: the destination generates
// its own slug and the counters are computed.
type CollectionCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Media       string `json:"media,omitempty"`
	Visible     bool   `json:"visible"`
}

// TaxonomyKind is the path segment of a shared-entity resource.
type TaxonomyKind string

const (
	KindBrand         TaxonomyKind = "brands"
	KindRibbon        TaxonomyKind = "ribbons"
	KindCustomization TaxonomyKind = "customizations"
	KindInfoSection   TaxonomyKind = "info-sections"
)

type TaxonomyEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type TaxonomyCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type MediaItem struct {
	URL string `json:"url"`
}

// --- Flat (v1) read shapes ---

type FlatOption struct {
	Name    string   `json:"name"`
	Type    string   `json:"optionType,omitempty"`
	Choices []string `json:"choices"`
}

type FlatProduct struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Slug          string       `json:"slug"`
	Description   string       `json:"description,omitempty"`
	Visible       bool         `json:"visible"`
	ProductType   string       `json:"productType,omitempty"`
	SKU           string       `json:"sku,omitempty"`
	Currency      string       `json:"currency,omitempty"`
	Brand         string       `json:"brand,omitempty"`  // inline text, no id
	Ribbon        string       `json:"ribbon,omitempty"` // inline text, no id
	Media         []MediaItem  `json:"media,omitempty"`
	Options       []FlatOption `json:"options,omitempty"`
	CollectionIDs []string     `json:"collectionIds,omitempty"`
	CreatedDate   string       `json:"createdDate,omitempty"`
}

type FlatVariant struct {
	SKU          string                `json:"sku"`
	Price        float64               `json:"price"`
	ComparePrice float64               `json:"comparePrice,omitempty"`
	Weight       float64               `json:"weight,omitempty"`
	Visible      bool                  `json:"visible"`
	Choices      models.VariantChoices `json:"choices"`
	Quantity     int                   `json:"quantity"`
	InStock      bool                  `json:"inStock"`
}

// --- Relational (v3) read shapes ---

type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Money struct {
	Amount   string `json:"amount"` // fixed-point decimal string
	Currency string `json:"currency"`
}

type RelChoice struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type RelOption struct {
	Name            string `json:"name"`
	RenderType      string `json:"renderType,omitempty"`
	ChoicesSettings struct {
		Choices []RelChoice `json:"choices"`
	} `json:"choicesSettings"`
}

type RelVariantChoice struct {
	OptionName string `json:"optionName"`
	ChoiceName string `json:"choiceName"`
}

type RelInventory struct {
	TrackQuantity bool `json:"trackQuantity"`
	Quantity      int  `json:"quantity"`
	InStock       bool `json:"inStock"`
}

type RelVariant struct {
	ID             string             `json:"id,omitempty"`
	SKU            string             `json:"sku,omitempty"`
	Visible        bool               `json:"visible"`
	Weight         float64            `json:"weight,omitempty"`
	Choices        []RelVariantChoice `json:"choices"`
	Price          Money              `json:"price"`
	CompareAtPrice *Money             `json:"compareAtPrice,omitempty"`
	Inventory      RelInventory       `json:"inventory"`
}

type RelationalProduct struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Slug           string       `json:"slug"`
	Description    string       `json:"description,omitempty"`
	Visible        bool         `json:"visible"`
	ProductType    string       `json:"productType,omitempty"`
	Brand          *Ref         `json:"brand,omitempty"`
	Ribbon         *Ref         `json:"ribbon,omitempty"`
	ModifierIDs    []string     `json:"modifierIds,omitempty"`
	InfoSectionIDs []string     `json:"infoSectionIds,omitempty"`
	Media          []MediaItem  `json:"media,omitempty"`
	Options        []RelOption  `json:"options,omitempty"`
	Variants       []RelVariant `json:"variants,omitempty"`
	CollectionIDs  []string     `json:"collectionIds,omitempty"`
	CreatedDate    string       `json:"createdDate,omitempty"`
}

// --- Inventory (flat stores track it as a separate collection) ---

type InventoryItem struct {
	ProductID     string `json:"productId,omitempty"`
	SKU           string `json:"sku"`
	TrackQuantity bool   `json:"trackQuantity"`
	Quantity      int    `json:"quantity"`
	InStock       bool   `json:"inStock"`
}

// --- Create payloads (outgoing; adapters fill these) ---

type FlatProductCreate struct {
	Name           string       `json:"name"`
	Slug           string       `json:"slug,omitempty"`
	Description    string       `json:"description,omitempty"`
	Visible        bool         `json:"visible"`
	ProductType    string       `json:"productType"`
	SKU            string       `json:"sku,omitempty"`
	Brand          string       `json:"brand,omitempty"`
	Ribbon         string       `json:"ribbon,omitempty"`
	Price          string       `json:"price"` // decimal string
	ManageVariants bool         `json:"manageVariants"`
	Options        []FlatOption `json:"options,omitempty"`
}

type FlatVariantInventory struct {
	SKU      string              `json:"sku,omitempty"`
	Choices  []models.ChoicePair `json:"choices,omitempty"`
	Quantity int                 `json:"quantity"`
	InStock  bool                `json:"inStock"`
}

type FlatInventoryPatch struct {
	TrackQuantity bool                   `json:"trackQuantity"`
	Quantity      int                    `json:"quantity"`
	InStock       bool                   `json:"inStock"`
	Variants      []FlatVariantInventory `json:"variants,omitempty"`
}

type FlatVariantPatch struct {
	Choices      []models.ChoicePair `json:"choices"`
	SKU          string              `json:"sku,omitempty"`
	Price        string              `json:"price,omitempty"` // decimal string
	ComparePrice string              `json:"comparePrice,omitempty"`
	Weight       float64             `json:"weight,omitempty"`
	Visible      bool                `json:"visible"`
}

type FlatVariantsPatch struct {
	Variants []FlatVariantPatch `json:"variants"`
}

type RelChoiceCreate struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type RelOptionCreate struct {
	Name    string            `json:"name"`
	Choices []RelChoiceCreate `json:"choices"`
}

type RelVariantCreate struct {
	SKU            string             `json:"sku,omitempty"`
	Visible        bool               `json:"visible"`
	Weight         float64            `json:"weight,omitempty"`
	Choices        []RelVariantChoice `json:"choices"`
	Price          Money              `json:"price"`
	CompareAtPrice *Money             `json:"compareAtPrice,omitempty"`
	Inventory      RelInventory       `json:"inventory"`
}

type RelationalProductCreate struct {
	Name           string             `json:"name"`
	Slug           string             `json:"slug,omitempty"`
	Description    string             `json:"description,omitempty"`
	Visible        bool               `json:"visible"`
	ProductType    string             `json:"productType"`
	BrandID        string             `json:"brandId,omitempty"`
	RibbonID       string             `json:"ribbonId,omitempty"`
	ModifierIDs    []string           `json:"modifierIds,omitempty"`
	InfoSectionIDs []string           `json:"infoSectionIds,omitempty"`
	Options        []RelOptionCreate  `json:"options,omitempty"`
	Variants       []RelVariantCreate `json:"variants"`
}

// --- Create response ---

type CreatedVariant struct {
	ID  string `json:"id"`
	SKU string `json:"sku,omitempty"`
}

type CreatedProduct struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Slug     string           `json:"slug"`
	Variants []CreatedVariant `json:"variants,omitempty"`
}
