package migration

import (
	"migrator/internal/models"
	"migrator/internal/store"
)

// RelationalAdapter targets the relational catalog schema: one payload carries
// declared options with typed choice lists, modifiers, and explicit variants
// with embedded inventory. No follow-up writes are needed.
type RelationalAdapter struct{}

func NewRelationalAdapter() *RelationalAdapter { return &RelationalAdapter{} }

func (a *RelationalAdapter) Name() string { return store.SchemaRelational }

func (a *RelationalAdapter) TaxonomyAware() bool { return true }

func (a *RelationalAdapter) BuildCreatePayload(p *models.SourceProduct, slug string, refs ResolvedRefs, currency string) (interface{}, error) {
	options := make([]store.RelOptionCreate, 0, len(p.Options))
	for _, o := range p.Options {
		choices := make([]store.RelChoiceCreate, 0, len(o.Choices))
		for _, name := range o.Choices {
			choices = append(choices, store.RelChoiceCreate{Name: name, Type: o.Type})
		}
		options = append(options, store.RelOptionCreate{Name: o.Name, Choices: choices})
	}

	variants := make([]store.RelVariantCreate, 0, len(p.Variants))
	for _, v := range p.Variants {
		pairs := v.Choices.Normalize(p.Options)
		choices := make([]store.RelVariantChoice, 0, len(pairs))
		for _, pair := range pairs {
			choices = append(choices, store.RelVariantChoice{
				OptionName: pair.Option,
				ChoiceName: pair.Choice,
			})
		}

		variant := store.RelVariantCreate{
			SKU:     v.SKU,
			Visible: v.Visible,
			Weight:  v.Weight,
			Choices: choices,
			Price: store.Money{
				Amount:   moneyString(v.Price),
				Currency: currency,
			},
			Inventory: store.RelInventory{
				TrackQuantity: v.Stock.TrackQuantity,
				Quantity:      v.Stock.Quantity,
				InStock:       v.Stock.InStock,
			},
		}
		if v.CompareAtPrice != nil {
			variant.CompareAtPrice = &store.Money{
				Amount:   moneyString(*v.CompareAtPrice),
				Currency: currency,
			}
		}
		variants = append(variants, variant)
	}

	// A product always carries at least one variant: the implicit one when
	// the source declares none.
	if len(variants) == 0 {
		variants = append(variants, store.RelVariantCreate{
			SKU:     p.SKU,
			Visible: p.Visible,
			Choices: []store.RelVariantChoice{},
			Price: store.Money{
				Amount:   moneyString(basePrice(p)),
				Currency: currency,
			},
			Inventory: store.RelInventory{
				TrackQuantity: p.Stock.TrackQuantity,
				Quantity:      p.Stock.Quantity,
				InStock:       p.Stock.InStock,
			},
		})
	}

	return &store.RelationalProductCreate{
		Name:           p.Name,
		Slug:           slug,
		Description:    p.Description,
		Visible:        p.Visible,
		ProductType:    effectiveProductType(p.ProductType),
		BrandID:        refs.BrandID,
		RibbonID:       refs.RibbonID,
		ModifierIDs:    refs.CustomizationIDs,
		InfoSectionIDs: refs.InfoSectionIDs,
		Options:        options,
		Variants:       variants,
	}, nil
}

// AttachDetails is a no-op for the relational schema: inventory and variant
// detail ride along in the creation call.
func (a *RelationalAdapter) AttachDetails(_ StoreAPI, _ *store.CreatedProduct, p *models.SourceProduct) (bool, []error) {
	return len(p.Variants) > 0, nil
}
