package pricing

import "time"

// Quote is the priced breakdown of a checkout: every field is frozen
// onto the order.
type Quote struct {
	SubtotalCents    int
	DeliveryFeeCents int
	DiscountCents    int
	TotalCents       int
	PromoCode        string
}

// BuildQuote prices a cart subtotal for a resolved zone and an optional
// promotion. Either pointer may be nil: no zone means no delivery fee
// (the orchestrator decides whether an unzoned address may check out at
// all), and a promotion that does not apply is ignored rather than
// failing the quote.
func BuildQuote(subtotalCents int, zone *Zone, promo *Promotion, now time.Time) Quote {
	q := Quote{SubtotalCents: subtotalCents}
	if zone != nil {
		q.DeliveryFeeCents = zone.DeliveryFeeCents(subtotalCents)
	}
	if promo != nil && promo.CanApply(subtotalCents, now) {
		q.DiscountCents = promo.DiscountCents(subtotalCents)
		q.PromoCode = promo.Code
	}
	q.TotalCents = subtotalCents + q.DeliveryFeeCents - q.DiscountCents
	if q.TotalCents < 0 {
		q.TotalCents = 0
	}
	return q
}
