package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/grocerly/checkout/internal/cart"
	"github.com/grocerly/checkout/internal/inventory"
	"github.com/grocerly/checkout/internal/orders"
	"github.com/grocerly/checkout/internal/pricing"
)

// AddressInput is a new delivery address supplied with the checkout
// request; ignored when AddressID names a saved one.
type AddressInput struct {
	Line1    string `json:"line1"`
	Suburb   string `json:"suburb"`
	Postcode string `json:"postcode"`
}

type PlaceOrderRequest struct {
	AddressID      string       `json:"address_id,omitempty"`
	Address        AddressInput `json:"address"`
	PromoCode      string       `json:"promo_code,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	ScheduledDate  string       `json:"scheduled_date,omitempty"`
	ScheduledSlot  string       `json:"scheduled_time_slot,omitempty"`
	IdempotencyKey string       `json:"-"`
}

// Service is the checkout orchestrator. One PlaceOrder call is one
// storage transaction: pricing reads, order assembly, stock
// reservation, promo redemption and cart clearing either all commit or
// all roll back.
type Service struct {
	Store Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// PlaceOrder converts the user's cart into a pending order. The
// returned bool is true when an idempotency key replayed an order that
// was already placed.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*orders.Order, bool, error) {
	now := s.now()

	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer uow.Rollback(ctx)

	// The database is the truth for idempotent replays; redis is only a
	// fast path in front of this check.
	if req.IdempotencyKey != "" {
		prev, err := uow.OrderByExternalID(ctx, req.IdempotencyKey)
		if err == nil {
			return prev, true, nil
		}
		if !errors.Is(err, orders.ErrNotFound) {
			return nil, false, err
		}
	}

	settings, err := uow.Settings(ctx)
	if err != nil {
		return nil, false, err
	}

	crt, err := uow.CartWithItems(ctx, userID)
	if errors.Is(err, cart.ErrNotFound) {
		return nil, false, ErrEmptyCart
	}
	if err != nil {
		return nil, false, err
	}
	if crt.Empty() {
		return nil, false, ErrEmptyCart
	}

	products, err := uow.ProductsByID(ctx, crt.ProductIDs())
	if err != nil {
		return nil, false, err
	}
	// Fail-fast pre-check: report the first violation only. The ledger
	// re-checks under row locks, this read just surfaces obvious
	// problems before any write happens.
	for _, it := range crt.Items {
		p, ok := products[it.ProductID]
		if !ok || !p.Active {
			return nil, false, &inventory.InsufficientStockError{
				ProductID: it.ProductID, Name: p.Name, Requested: it.Quantity, Available: 0,
			}
		}
		if it.Quantity > p.Stock {
			return nil, false, &inventory.InsufficientStockError{
				ProductID: p.ID, Name: p.Name, Requested: it.Quantity, Available: p.Stock,
			}
		}
	}

	addr, err := uow.ResolveOrCreateAddress(ctx, orders.Address{
		ID:       req.AddressID,
		UserID:   userID,
		Line1:    req.Address.Line1,
		Suburb:   req.Address.Suburb,
		Postcode: req.Address.Postcode,
	})
	if err != nil {
		return nil, false, err
	}

	zone, err := uow.ZoneForAddress(ctx, addr.Suburb, addr.Postcode)
	if err != nil {
		return nil, false, err
	}
	if zone == nil {
		if !settings.AllowUnzonedDelivery {
			return nil, false, ErrUndeliverableAddress
		}
		zone = &pricing.Zone{FeeCents: settings.DefaultDeliveryFeeCents}
	}

	// A promo code that does not resolve or apply never blocks checkout,
	// it just contributes no discount.
	var promo *pricing.Promotion
	if req.PromoCode != "" {
		promo, err = uow.PromotionByCode(ctx, req.PromoCode)
		if err != nil {
			return nil, false, err
		}
	}

	quote := pricing.BuildQuote(crt.SubtotalCents(), zone, promo, now)

	order := orders.Assemble(orders.AssembleInput{
		UserID:        userID,
		ExternalID:    req.IdempotencyKey,
		AddressID:     addr.ID,
		ZoneID:        zone.ID,
		Notes:         req.Notes,
		ScheduledDate: req.ScheduledDate,
		ScheduledSlot: req.ScheduledSlot,
	}, crt.Items, products, quote, now)

	if err := uow.InsertOrder(ctx, order); err != nil {
		// A concurrent request with the same idempotency key won the
		// insert race. Our transaction is aborted; the winner's committed
		// order is the one to return.
		if req.IdempotencyKey != "" && errors.Is(err, orders.ErrDuplicateExternalID) {
			uow.Rollback(ctx)
			return s.replayByKey(ctx, req.IdempotencyKey)
		}
		return nil, false, err
	}
	for _, it := range order.Items {
		if err := uow.ReserveStock(ctx, order.ID, it.ProductID, it.Quantity); err != nil {
			return nil, false, err
		}
	}
	if quote.PromoCode != "" {
		if err := uow.RedeemPromotion(ctx, promo.ID); err != nil {
			return nil, false, err
		}
	}
	if err := uow.ClearCart(ctx, crt.ID); err != nil {
		return nil, false, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, false, err
	}
	return &order, false, nil
}

// replayByKey re-reads the order committed by whichever request won
// the external_id unique constraint.
func (s *Service) replayByKey(ctx context.Context, key string) (*orders.Order, bool, error) {
	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer uow.Rollback(ctx)

	prev, err := uow.OrderByExternalID(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return prev, true, nil
}
