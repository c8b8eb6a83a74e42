package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/grocerly/checkout/internal/cart"
	"github.com/grocerly/checkout/internal/catalog"
	"github.com/grocerly/checkout/internal/pricing"
)

// AssembleInput carries everything Assemble freezes onto the order.
type AssembleInput struct {
	UserID        string
	ExternalID    string
	AddressID     string
	ZoneID        string
	Notes         string
	ScheduledDate string
	ScheduledSlot string
}

// Assemble builds the order aggregate from a cart snapshot and a priced
// quote. Item name and sku are copied from the live products at this
// instant; the unit price is the cart snapshot the quote was built from,
// so the stored items always sum to the stored subtotal. Nothing is
// persisted here.
func Assemble(in AssembleInput, items []cart.Item, products map[string]catalog.Product, quote pricing.Quote, now time.Time) Order {
	o := Order{
		ID:               uuid.NewString(),
		Number:           NewNumber(now),
		ExternalID:       in.ExternalID,
		UserID:           in.UserID,
		Status:           StatusPending,
		AddressID:        in.AddressID,
		ZoneID:           in.ZoneID,
		PromoCode:        quote.PromoCode,
		SubtotalCents:    quote.SubtotalCents,
		DeliveryFeeCents: quote.DeliveryFeeCents,
		DiscountCents:    quote.DiscountCents,
		TotalCents:       quote.TotalCents,
		Notes:            in.Notes,
		ScheduledDate:    in.ScheduledDate,
		ScheduledSlot:    in.ScheduledSlot,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, it := range items {
		p := products[it.ProductID]
		o.Items = append(o.Items, Item{
			OrderID:        o.ID,
			ProductID:      it.ProductID,
			SKU:            p.SKU,
			Name:           p.Name,
			UnitPriceCents: it.UnitPriceCents,
			Quantity:       it.Quantity,
		})
	}
	return o
}
