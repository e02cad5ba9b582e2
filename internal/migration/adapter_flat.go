package migration

import (
	"fmt"

	"migrator/internal/models"
	"migrator/internal/store"
)

// FlatAdapter targets the flat catalog schema: one nested product document
// with inline option text, then inventory and variant detail patched in
// separate calls after creation.
type FlatAdapter struct{}

func NewFlatAdapter() *FlatAdapter { return &FlatAdapter{} }

func (a *FlatAdapter) Name() string { return store.SchemaFlat }

func (a *FlatAdapter) TaxonomyAware() bool { return false }

func (a *FlatAdapter) BuildCreatePayload(p *models.SourceProduct, slug string, _ ResolvedRefs, _ string) (interface{}, error) {
	options := make([]store.FlatOption, 0, len(p.Options))
	for _, o := range p.Options {
		options = append(options, store.FlatOption{
			Name:    o.Name,
			Type:    o.Type,
			Choices: o.Choices,
		})
	}

	return &store.FlatProductCreate{
		Name:           p.Name,
		Slug:           slug,
		Description:    p.Description,
		Visible:        p.Visible,
		ProductType:    effectiveProductType(p.ProductType),
		SKU:            p.SKU,
		Brand:          p.BrandName,
		Ribbon:         p.RibbonName,
		Price:          moneyString(basePrice(p)),
		ManageVariants: len(p.Options) > 0,
		Options:        options,
	}, nil
}

func (a *FlatAdapter) AttachDetails(api StoreAPI, created *store.CreatedProduct, p *models.SourceProduct) (bool, []error) {
	var errs []error

	inventoryUpdated := false
	if err := api.PatchProductInventory(created.ID, a.buildInventoryPatch(p)); err != nil {
		errs = append(errs, fmt.Errorf("inventory patch for product %s: %w", created.ID, err))
	} else {
		inventoryUpdated = true
	}

	if len(p.Options) > 0 && len(p.Variants) > 0 {
		if err := api.PatchProductVariants(created.ID, a.buildVariantsPatch(p)); err != nil {
			errs = append(errs, fmt.Errorf("variants patch for product %s: %w", created.ID, err))
		}
	}

	return inventoryUpdated, errs
}

func (a *FlatAdapter) buildInventoryPatch(p *models.SourceProduct) store.FlatInventoryPatch {
	patch := store.FlatInventoryPatch{
		TrackQuantity: p.Stock.TrackQuantity,
		Quantity:      p.Stock.Quantity,
		InStock:       p.Stock.InStock,
	}
	for _, v := range p.Variants {
		patch.Variants = append(patch.Variants, store.FlatVariantInventory{
			SKU:      v.SKU,
			Choices:  v.Choices.Normalize(p.Options),
			Quantity: v.Stock.Quantity,
			InStock:  v.Stock.InStock,
		})
	}
	return patch
}

func (a *FlatAdapter) buildVariantsPatch(p *models.SourceProduct) store.FlatVariantsPatch {
	var patch store.FlatVariantsPatch
	for _, v := range p.Variants {
		vp := store.FlatVariantPatch{
			Choices: v.Choices.Normalize(p.Options),
			SKU:     v.SKU,
			Price:   moneyString(v.Price),
			Weight:  v.Weight,
			Visible: v.Visible,
		}
		if v.CompareAtPrice != nil {
			vp.ComparePrice = moneyString(*v.CompareAtPrice)
		}
		patch.Variants = append(patch.Variants, vp)
	}
	return patch
}
