package checkout

import (
	"context"
	"errors"

	"github.com/grocerly/checkout/internal/cart"
)

const (
	IssueUnavailable       = "unavailable"
	IssueInsufficientStock = "insufficient_stock"
	IssuePriceChanged      = "price_changed"
)

// CartIssue describes one line that would not survive checkout as the
// cart stands.
type CartIssue struct {
	ProductID          string `json:"product_id"`
	Name               string `json:"name,omitempty"`
	Reason             string `json:"reason"`
	Requested          int    `json:"requested,omitempty"`
	Available          int    `json:"available,omitempty"`
	SnapshotPriceCents int    `json:"snapshot_price_cents,omitempty"`
	CurrentPriceCents  int    `json:"current_price_cents,omitempty"`
}

// ValidateCart is the read-only pre-flight the client calls before
// checkout. Unlike PlaceOrder's fail-fast pre-check it reports every
// problem, so the client can fix the cart in one pass. Nothing is
// written.
func (s *Service) ValidateCart(ctx context.Context, userID string) ([]CartIssue, error) {
	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)

	crt, err := uow.CartWithItems(ctx, userID)
	if errors.Is(err, cart.ErrNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if crt.Empty() {
		return nil, ErrEmptyCart
	}

	products, err := uow.ProductsByID(ctx, crt.ProductIDs())
	if err != nil {
		return nil, err
	}

	var issues []CartIssue
	for _, it := range crt.Items {
		p, ok := products[it.ProductID]
		if !ok || !p.Active {
			issues = append(issues, CartIssue{ProductID: it.ProductID, Name: p.Name, Reason: IssueUnavailable})
			continue
		}
		if it.Quantity > p.Stock {
			issues = append(issues, CartIssue{
				ProductID: p.ID, Name: p.Name, Reason: IssueInsufficientStock,
				Requested: it.Quantity, Available: p.Stock,
			})
		}
		if it.UnitPriceCents != p.PriceCents {
			issues = append(issues, CartIssue{
				ProductID: p.ID, Name: p.Name, Reason: IssuePriceChanged,
				SnapshotPriceCents: it.UnitPriceCents, CurrentPriceCents: p.PriceCents,
			})
		}
	}
	return issues, nil
}
