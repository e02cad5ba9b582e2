package migration

import (
	"fmt"

	"github.com/shopspring/decimal"

	"migrator/internal/logger"
	"migrator/internal/models"
	"migrator/internal/store"
)

// Fetcher reads a store's catalog page by page and converts both wire schemas
// to the canonical in-memory shape. A page is assumed full when its size
// equals the page size; fetching stops on the first short page or at the page
// ceiling, whichever comes first.
type Fetcher struct {
	api      StoreAPI
	pageSize int
	maxPages int
	logger   *logger.Logger
}

func NewFetcher(api StoreAPI, pageSize, maxPages int, logger *logger.Logger) *Fetcher {
	return &Fetcher{api: api, pageSize: pageSize, maxPages: maxPages, logger: logger}
}

// fetchAllPages drives offset pagination until a short page or the safety
// ceiling. The ceiling guards against API anomalies that keep returning full
// pages forever.
func fetchAllPages[T any](pageSize, maxPages int, list func(limit, offset int) ([]T, error)) ([]T, error) {
	var all []T
	for page := 0; page < maxPages; page++ {
		items, err := list(pageSize, page*pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < pageSize {
			break
		}
	}
	return all, nil
}

func (f *Fetcher) FetchCollections() ([]models.SourceCollection, error) {
	items, err := fetchAllPages(f.pageSize, f.maxPages, f.api.ListCollections)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collections: %w", err)
	}

	collections := make([]models.SourceCollection, 0, len(items))
	for _, item := range items {
		collections = append(collections, models.SourceCollection{
			ID:          item.ID,
			Name:        item.Name,
			Slug:        item.Slug,
			Description: item.Description,
			Media:       item.Media,
			Visible:     item.Visible,
		})
	}
	return collections, nil
}

// FetchProducts reads all products of a store in the given catalog schema.
func (f *Fetcher) FetchProducts(schema string) ([]models.SourceProduct, error) {
	if schema == store.SchemaRelational {
		return f.fetchRelationalProducts()
	}
	return f.fetchFlatProducts()
}

func (f *Fetcher) fetchFlatProducts() ([]models.SourceProduct, error) {
	items, err := fetchAllPages(f.pageSize, f.maxPages, f.api.ListProductsFlat)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := make([]models.SourceProduct, 0, len(items))
	for _, item := range items {
		product := convertFlatProduct(item)

		// Variant detail lives behind a separate endpoint in the flat schema.
		variants, err := f.api.ListVariants(item.ID)
		if err != nil {
			f.logger.Error("Failed to fetch variants for product %s: %v", item.ID, err)
		}
		for _, v := range variants {
			product.Variants = append(product.Variants, convertFlatVariant(v))
		}
		if len(product.Variants) == 0 {
			// Products without managed variants still sell as one implicit
			// variant keyed by the product SKU.
			product.Variants = append(product.Variants, models.SourceVariant{
				SKU:     item.SKU,
				Visible: item.Visible,
			})
		}

		products = append(products, product)
	}
	return products, nil
}

func (f *Fetcher) fetchRelationalProducts() ([]models.SourceProduct, error) {
	items, err := fetchAllPages(f.pageSize, f.maxPages, f.api.ListProductsRelational)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := make([]models.SourceProduct, 0, len(items))
	for _, item := range items {
		products = append(products, convertRelationalProduct(item))
	}
	return products, nil
}

// FetchInventory reads the flat-schema inventory collection keyed by SKU.
func (f *Fetcher) FetchInventory() (map[string]models.Stock, error) {
	items, err := fetchAllPages(f.pageSize, f.maxPages, f.api.ListInventory)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}

	bySKU := make(map[string]models.Stock, len(items))
	for _, item := range items {
		if item.SKU == "" {
			continue
		}
		bySKU[item.SKU] = models.Stock{
			TrackQuantity: item.TrackQuantity,
			Quantity:      item.Quantity,
			InStock:       item.InStock,
		}
	}
	return bySKU, nil
}

// FetchTaxonomy reads all destination entities of one shared kind, subject to
// the same page ceiling as catalog reads.
func (f *Fetcher) FetchTaxonomy(kind store.TaxonomyKind) ([]store.TaxonomyEntity, error) {
	return fetchAllPages(f.pageSize, f.maxPages, func(limit, offset int) ([]store.TaxonomyEntity, error) {
		return f.api.ListTaxonomy(kind, limit, offset)
	})
}

func parseProductType(raw string) models.ProductType {
	switch raw {
	case string(models.ProductTypePhysical):
		return models.ProductTypePhysical
	case string(models.ProductTypeDigital):
		return models.ProductTypeDigital
	default:
		return models.ProductTypeUnspecified
	}
}

func mediaURLs(media []store.MediaItem) []string {
	urls := make([]string, 0, len(media))
	for _, m := range media {
		if m.URL != "" {
			urls = append(urls, m.URL)
		}
	}
	return urls
}

func convertFlatProduct(item store.FlatProduct) models.SourceProduct {
	options := make([]models.ProductOption, 0, len(item.Options))
	for _, o := range item.Options {
		options = append(options, models.ProductOption{
			Name:    o.Name,
			Type:    o.Type,
			Choices: o.Choices,
		})
	}

	return models.SourceProduct{
		ID:            item.ID,
		Name:          item.Name,
		Slug:          item.Slug,
		Description:   item.Description,
		Visible:       item.Visible,
		ProductType:   parseProductType(item.ProductType),
		SKU:           item.SKU,
		Currency:      item.Currency,
		Media:         mediaURLs(item.Media),
		Options:       options,
		BrandName:     item.Brand,
		RibbonName:    item.Ribbon,
		CollectionIDs: item.CollectionIDs,
		CreatedAt:     item.CreatedDate,
	}
}

func convertFlatVariant(v store.FlatVariant) models.SourceVariant {
	variant := models.SourceVariant{
		SKU:     v.SKU,
		Price:   decimal.NewFromFloat(v.Price),
		Weight:  v.Weight,
		Visible: v.Visible,
		Choices: v.Choices,
		Stock: models.Stock{
			Quantity: v.Quantity,
			InStock:  v.InStock,
		},
	}
	if v.ComparePrice > 0 {
		compare := decimal.NewFromFloat(v.ComparePrice)
		variant.CompareAtPrice = &compare
	}
	return variant
}

func convertRelationalProduct(item store.RelationalProduct) models.SourceProduct {
	options := make([]models.ProductOption, 0, len(item.Options))
	for _, o := range item.Options {
		choices := make([]string, 0, len(o.ChoicesSettings.Choices))
		for _, c := range o.ChoicesSettings.Choices {
			choices = append(choices, c.Name)
		}
		options = append(options, models.ProductOption{
			Name:    o.Name,
			Type:    o.RenderType,
			Choices: choices,
		})
	}

	product := models.SourceProduct{
		ID:               item.ID,
		Name:             item.Name,
		Slug:             item.Slug,
		Description:      item.Description,
		Visible:          item.Visible,
		ProductType:      parseProductType(item.ProductType),
		Media:            mediaURLs(item.Media),
		Options:          options,
		CustomizationIDs: item.ModifierIDs,
		InfoSectionIDs:   item.InfoSectionIDs,
		CollectionIDs:    item.CollectionIDs,
		CreatedAt:        item.CreatedDate,
	}
	if item.Brand != nil {
		product.BrandID = item.Brand.ID
		product.BrandName = item.Brand.Name
	}
	if item.Ribbon != nil {
		product.RibbonID = item.Ribbon.ID
		product.RibbonName = item.Ribbon.Name
	}

	for _, v := range item.Variants {
		variant := models.SourceVariant{
			SKU:     v.SKU,
			Visible: v.Visible,
			Weight:  v.Weight,
			Stock: models.Stock{
				TrackQuantity: v.Inventory.TrackQuantity,
				Quantity:      v.Inventory.Quantity,
				InStock:       v.Inventory.InStock,
			},
		}
		if price, err := decimal.NewFromString(v.Price.Amount); err == nil {
			variant.Price = price
		}
		if product.Currency == "" {
			product.Currency = v.Price.Currency
		}
		if v.CompareAtPrice != nil {
			if compare, err := decimal.NewFromString(v.CompareAtPrice.Amount); err == nil {
				variant.CompareAtPrice = &compare
			}
		}

		pairs := make([]models.ChoicePair, 0, len(v.Choices))
		for _, c := range v.Choices {
			pairs = append(pairs, models.ChoicePair{Option: c.OptionName, Choice: c.ChoiceName})
		}
		variant.Choices = models.NewChoicePairs(pairs)

		product.Variants = append(product.Variants, variant)
		if v.SKU != "" && product.SKU == "" {
			product.SKU = v.SKU
		}
	}

	return product
}
