package orders

import "time"

// Order freezes everything the customer agreed to at checkout: totals,
// the address and zone used, and the promo code applied. Later edits to
// products, zones or promotions never touch a placed order.
type Order struct {
	ID               string     `json:"id"`
	Number           string     `json:"number"`
	ExternalID       string     `json:"-"`
	UserID           string     `json:"user_id"`
	Status           Status     `json:"status"`
	AddressID        string     `json:"address_id"`
	ZoneID           string     `json:"zone_id,omitempty"`
	PromoCode        string     `json:"promo_code,omitempty"`
	SubtotalCents    int        `json:"subtotal_cents"`
	DeliveryFeeCents int        `json:"delivery_fee_cents"`
	DiscountCents    int        `json:"discount_cents"`
	TotalCents       int        `json:"total_cents"`
	Notes            string     `json:"notes,omitempty"`
	ScheduledDate    string     `json:"scheduled_date,omitempty"`
	ScheduledSlot    string     `json:"scheduled_slot,omitempty"`
	Items            []Item     `json:"items,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
}

// Item is an immutable snapshot of the product at purchase time.
type Item struct {
	OrderID        string `json:"-"`
	ProductID      string `json:"product_id"`
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	UnitPriceCents int    `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// Address is the delivery destination as resolved at checkout.
type Address struct {
	ID       string
	UserID   string
	Line1    string
	Suburb   string
	Postcode string
}
