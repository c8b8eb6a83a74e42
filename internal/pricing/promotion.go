package pricing

import "time"

type PromoType string

const (
	PromoPercentage PromoType = "percentage"
	PromoFixed      PromoType = "fixed"
)

// Promotion is a discount code. Value is a percentage for PromoPercentage
// and cents for PromoFixed. MaxUses 0 means unlimited.
type Promotion struct {
	ID            string
	Code          string
	Type          PromoType
	Value         int
	MinOrderCents int
	MaxUses       int
	UsesCount     int
	StartsAt      time.Time
	EndsAt        time.Time
	Active        bool
}

// CanApply reports whether the promotion is redeemable against the given
// subtotal right now.
func (p Promotion) CanApply(subtotalCents int, now time.Time) bool {
	if !p.Active {
		return false
	}
	if now.Before(p.StartsAt) || now.After(p.EndsAt) {
		return false
	}
	if p.MaxUses > 0 && p.UsesCount >= p.MaxUses {
		return false
	}
	return subtotalCents >= p.MinOrderCents
}

// DiscountCents computes the discount against the subtotal only. A fixed
// discount is capped at the subtotal so it can never drive the total
// negative on its own.
func (p Promotion) DiscountCents(subtotalCents int) int {
	switch p.Type {
	case PromoPercentage:
		return subtotalCents * p.Value / 100
	case PromoFixed:
		if p.Value > subtotalCents {
			return subtotalCents
		}
		return p.Value
	}
	return 0
}
