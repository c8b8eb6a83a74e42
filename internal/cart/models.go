package cart

import "time"

// Cart holds a user's in-progress selection. At most one per user,
// enforced by a unique index on user_id.
type Cart struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Item is unique per (cart, product); re-adding a product merges
// quantity instead of duplicating the row. UnitPriceCents is the price
// snapshotted when the item was last touched.
type Item struct {
	CartID         string    `json:"-"`
	ProductID      string    `json:"product_id"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
	AddedAt        time.Time `json:"added_at,omitempty"`
}

func (c *Cart) Empty() bool { return len(c.Items) == 0 }

// SubtotalCents sums quantity times snapshotted unit price.
func (c *Cart) SubtotalCents() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity * it.UnitPriceCents
	}
	return total
}

func (c *Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
