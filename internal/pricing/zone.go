package pricing

// Zone is a delivery area keyed by suburbs and postcode prefixes, with a
// flat fee waived above a free-delivery threshold.
type Zone struct {
	ID               string
	Name             string
	Suburbs          []string
	PostcodePrefixes []string
	FeeCents         int
	FreeOverCents    int // 0 means delivery is never free
	Active           bool
}

// DeliveryFeeCents returns the flat fee, or 0 once the subtotal reaches
// the free-delivery threshold.
func (z Zone) DeliveryFeeCents(subtotalCents int) int {
	if z.FreeOverCents > 0 && subtotalCents >= z.FreeOverCents {
		return 0
	}
	return z.FeeCents
}
