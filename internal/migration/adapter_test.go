package migration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"migrator/internal/models"
	"migrator/internal/store"
)

func shirtProduct() *models.SourceProduct {
	compare := decimal.RequireFromString("29.90")
	return &models.SourceProduct{
		ID:          "p-1",
		Name:        "Shirt",
		Slug:        "shirt",
		Visible:     true,
		ProductType: models.ProductTypeUnspecified,
		Options: []models.ProductOption{
			{Name: "Size", Choices: []string{"S", "M"}},
			{Name: "Color", Choices: []string{"Red", "Blue"}},
		},
		Variants: []models.SourceVariant{
			{
				SKU:            "SH-S-RED",
				Price:          decimal.RequireFromString("19.9"),
				CompareAtPrice: &compare,
				Visible:        true,
				Choices: models.NewChoicePairs([]models.ChoicePair{
					{Option: "Size", Choice: "S"},
					{Option: "Color", Choice: "Red"},
				}),
				Stock: models.Stock{TrackQuantity: true, Quantity: 5, InStock: true},
			},
			{
				// Color selection missing: must be backfilled with "Red".
				SKU:     "SH-M",
				Price:   decimal.RequireFromString("21"),
				Visible: true,
				Choices: models.NewChoiceValues(map[string]string{"Size": "M"}),
				Stock:   models.Stock{Quantity: 2, InStock: true},
			},
		},
		Stock: models.Stock{TrackQuantity: true, Quantity: 7, InStock: true},
	}
}

func TestRelationalPayloadShape(t *testing.T) {
	adapter := NewRelationalAdapter()
	payload, err := adapter.BuildCreatePayload(shirtProduct(), "shirt", ResolvedRefs{BrandID: "b-9"}, "USD")
	require.NoError(t, err)

	create, ok := payload.(*store.RelationalProductCreate)
	require.True(t, ok)

	assert.Equal(t, "physical", create.ProductType) // unspecified defaults
	assert.Equal(t, "b-9", create.BrandID)
	require.Len(t, create.Options, 2)
	assert.Equal(t, []store.RelChoiceCreate{{Name: "S"}, {Name: "M"}}, create.Options[0].Choices)

	require.Len(t, create.Variants, 2)
	first := create.Variants[0]
	assert.Equal(t, "19.90", first.Price.Amount)
	assert.Equal(t, "USD", first.Price.Currency)
	require.NotNil(t, first.CompareAtPrice)
	assert.Equal(t, "29.90", first.CompareAtPrice.Amount)
	assert.True(t, first.Inventory.TrackQuantity)

	// Every variant carries exactly one choice per declared option.
	second := create.Variants[1]
	require.Len(t, second.Choices, 2)
	assert.Equal(t, store.RelVariantChoice{OptionName: "Size", ChoiceName: "M"}, second.Choices[0])
	assert.Equal(t, store.RelVariantChoice{OptionName: "Color", ChoiceName: "Red"}, second.Choices[1])
	assert.Equal(t, "21.00", second.Price.Amount)
}

func TestRelationalPayloadSynthesizesImplicitVariant(t *testing.T) {
	p := &models.SourceProduct{
		Name:    "Poster",
		SKU:     "POST-1",
		Visible: true,
		Stock:   models.Stock{Quantity: 3, InStock: true},
	}

	payload, err := NewRelationalAdapter().BuildCreatePayload(p, "poster", ResolvedRefs{}, "USD")
	require.NoError(t, err)

	create := payload.(*store.RelationalProductCreate)
	require.Len(t, create.Variants, 1)
	assert.Equal(t, "POST-1", create.Variants[0].SKU)
	assert.Equal(t, "0.00", create.Variants[0].Price.Amount)
	assert.Equal(t, 3, create.Variants[0].Inventory.Quantity)
}

func TestFlatPayloadShape(t *testing.T) {
	adapter := NewFlatAdapter()
	p := shirtProduct()
	p.BrandName = "Acme"

	payload, err := adapter.BuildCreatePayload(p, "shirt-2", ResolvedRefs{}, "USD")
	require.NoError(t, err)

	create, ok := payload.(*store.FlatProductCreate)
	require.True(t, ok)

	assert.Equal(t, "shirt-2", create.Slug)
	assert.Equal(t, "physical", create.ProductType)
	assert.Equal(t, "Acme", create.Brand)
	assert.Equal(t, "19.90", create.Price) // first visible variant, decimal string
	assert.True(t, create.ManageVariants)
	require.Len(t, create.Options, 2)
}

func TestFlatAttachDetailsPatchesInventoryAndVariants(t *testing.T) {
	api := newFakeStore("dst", store.SchemaFlat)
	adapter := NewFlatAdapter()
	p := shirtProduct()

	inventoryUpdated, errs := adapter.AttachDetails(api, &store.CreatedProduct{ID: "prod-1"}, p)
	assert.True(t, inventoryUpdated)
	assert.Empty(t, errs)

	require.Len(t, api.inventoryPatches, 1)
	patch := api.inventoryPatches[0]
	assert.True(t, patch.TrackQuantity)
	assert.Equal(t, 7, patch.Quantity)
	require.Len(t, patch.Variants, 2)
	// Backfilled choice rides along on the inventory patch too.
	assert.Equal(t, models.ChoicePair{Option: "Color", Choice: "Red"}, patch.Variants[1].Choices[1])

	require.Len(t, api.variantPatches, 1)
	vp := api.variantPatches[0].Variants
	require.Len(t, vp, 2)
	assert.Equal(t, "19.90", vp[0].Price)
	assert.Equal(t, "29.90", vp[0].ComparePrice)
	assert.Equal(t, "21.00", vp[1].Price)
}

func TestProductTypePassedThroughWhenDigital(t *testing.T) {
	p := shirtProduct()
	p.ProductType = models.ProductTypeDigital

	payload, err := NewRelationalAdapter().BuildCreatePayload(p, "shirt", ResolvedRefs{}, "USD")
	require.NoError(t, err)
	assert.Equal(t, "digital", payload.(*store.RelationalProductCreate).ProductType)
}
