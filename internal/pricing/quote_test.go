package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func activePromo(t PromoType, value, minOrder int) *Promotion {
	return &Promotion{
		ID: "p1", Code: "SAVE10", Type: t, Value: value,
		MinOrderCents: minOrder,
		StartsAt:      now.AddDate(0, -1, 0),
		EndsAt:        now.AddDate(0, 1, 0),
		Active:        true,
	}
}

func TestZoneDeliveryFee(t *testing.T) {
	z := Zone{FeeCents: 500, FreeOverCents: 10000}
	assert.Equal(t, 500, z.DeliveryFeeCents(2000))
	assert.Equal(t, 0, z.DeliveryFeeCents(10000))
	assert.Equal(t, 0, z.DeliveryFeeCents(15000))

	never := Zone{FeeCents: 500} // no threshold
	assert.Equal(t, 500, never.DeliveryFeeCents(1_000_000))
}

// 2kg at $10/kg, $5 flat fee, $100 free-delivery threshold, no promo.
func TestQuoteFlatFeeNoPromo(t *testing.T) {
	z := &Zone{FeeCents: 500, FreeOverCents: 10000}
	q := BuildQuote(2000, z, nil, now)
	assert.Equal(t, Quote{SubtotalCents: 2000, DeliveryFeeCents: 500, TotalCents: 2500}, q)
}

// Same cart with SAVE10 (10%, min order $15).
func TestQuotePercentagePromo(t *testing.T) {
	z := &Zone{FeeCents: 500, FreeOverCents: 10000}
	q := BuildQuote(2000, z, activePromo(PromoPercentage, 10, 1500), now)
	assert.Equal(t, 200, q.DiscountCents)
	assert.Equal(t, 2300, q.TotalCents)
	assert.Equal(t, "SAVE10", q.PromoCode)
}

func TestQuoteDiscountAppliesToSubtotalOnly(t *testing.T) {
	// A 100% discount still leaves the delivery fee payable.
	z := &Zone{FeeCents: 500}
	q := BuildQuote(2000, z, activePromo(PromoPercentage, 100, 0), now)
	assert.Equal(t, 2000, q.DiscountCents)
	assert.Equal(t, 500, q.TotalCents)
}

func TestQuoteFixedPromoCappedAtSubtotal(t *testing.T) {
	q := BuildQuote(1000, nil, activePromo(PromoFixed, 5000, 0), now)
	assert.Equal(t, 1000, q.DiscountCents)
	assert.Equal(t, 0, q.TotalCents)
}

func TestQuoteIneligiblePromoIgnored(t *testing.T) {
	cases := map[string]*Promotion{
		"inactive":      {Type: PromoPercentage, Value: 10, StartsAt: now.AddDate(0, -1, 0), EndsAt: now.AddDate(0, 1, 0)},
		"expired":       {Active: true, Type: PromoPercentage, Value: 10, StartsAt: now.AddDate(0, -2, 0), EndsAt: now.AddDate(0, -1, 0)},
		"not yet valid": {Active: true, Type: PromoPercentage, Value: 10, StartsAt: now.AddDate(0, 1, 0), EndsAt: now.AddDate(0, 2, 0)},
		"exhausted":     {Active: true, Type: PromoPercentage, Value: 10, MaxUses: 3, UsesCount: 3, StartsAt: now.AddDate(0, -1, 0), EndsAt: now.AddDate(0, 1, 0)},
		"below minimum": {Active: true, Type: PromoPercentage, Value: 10, MinOrderCents: 5000, StartsAt: now.AddDate(0, -1, 0), EndsAt: now.AddDate(0, 1, 0)},
	}
	for name, p := range cases {
		q := BuildQuote(2000, nil, p, now)
		assert.Zero(t, q.DiscountCents, name)
		assert.Empty(t, q.PromoCode, name)
		assert.Equal(t, 2000, q.TotalCents, name)
	}
}

func TestQuoteNoZoneNoFee(t *testing.T) {
	q := BuildQuote(2000, nil, nil, now)
	assert.Equal(t, Quote{SubtotalCents: 2000, TotalCents: 2000}, q)
}

func TestPromotionUsesRemaining(t *testing.T) {
	p := *activePromo(PromoPercentage, 10, 0)
	p.MaxUses = 2
	p.UsesCount = 1
	assert.True(t, p.CanApply(2000, now))
	p.UsesCount = 2
	assert.False(t, p.CanApply(2000, now))
	p.MaxUses = 0 // unlimited
	assert.True(t, p.CanApply(2000, now))
}
