package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocerly/checkout/internal/cart"
	"github.com/grocerly/checkout/internal/catalog"
	"github.com/grocerly/checkout/internal/pricing"
)

func TestAssembleSnapshotsItems(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	items := []cart.Item{
		{ProductID: "prod-a", Quantity: 2, UnitPriceCents: 1000},
		{ProductID: "prod-b", Quantity: 1, UnitPriceCents: 350},
	}
	products := map[string]catalog.Product{
		"prod-a": {ID: "prod-a", SKU: "APL-1", Name: "Apples 1kg", PriceCents: 1000, Stock: 5},
		"prod-b": {ID: "prod-b", SKU: "MLK-2", Name: "Milk 2L", PriceCents: 350, Stock: 9},
	}
	quote := pricing.Quote{SubtotalCents: 2350, DeliveryFeeCents: 500, DiscountCents: 235, TotalCents: 2615, PromoCode: "SAVE10"}

	o := Assemble(AssembleInput{
		UserID: "u1", AddressID: "addr1", ZoneID: "z1", Notes: "leave at door",
	}, items, products, quote, now)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "SAVE10", o.PromoCode)
	assert.Equal(t, quote.TotalCents, o.TotalCents)
	assert.Equal(t, o.SubtotalCents+o.DeliveryFeeCents-o.DiscountCents, o.TotalCents)
	require.Len(t, o.Items, 2)
	assert.Equal(t, Item{OrderID: o.ID, ProductID: "prod-a", SKU: "APL-1", Name: "Apples 1kg", UnitPriceCents: 1000, Quantity: 2}, o.Items[0])

	// Stored items always sum to the stored subtotal.
	sum := 0
	for _, it := range o.Items {
		sum += it.Quantity * it.UnitPriceCents
	}
	assert.Equal(t, o.SubtotalCents, sum)
}
