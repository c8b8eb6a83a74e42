package checkout

import (
	"context"

	"github.com/grocerly/checkout/internal/cart"
	"github.com/grocerly/checkout/internal/catalog"
	"github.com/grocerly/checkout/internal/orders"
	"github.com/grocerly/checkout/internal/pricing"
)

// Store opens units of work against the backing storage.
type Store interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork is one all-or-nothing checkout transaction. Every write the
// orchestrator performs goes through the same unit; Commit is the only
// point anything becomes visible, Rollback undoes everything. Rollback
// after Commit is a no-op so it can sit in a defer.
type UnitOfWork interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context)

	Settings(ctx context.Context) (Settings, error)
	CartWithItems(ctx context.Context, userID string) (*cart.Cart, error)
	ProductsByID(ctx context.Context, ids []string) (map[string]catalog.Product, error)
	ResolveOrCreateAddress(ctx context.Context, a orders.Address) (orders.Address, error)
	ZoneForAddress(ctx context.Context, suburb, postcode string) (*pricing.Zone, error)
	PromotionByCode(ctx context.Context, code string) (*pricing.Promotion, error)
	RedeemPromotion(ctx context.Context, promoID string) error
	OrderByExternalID(ctx context.Context, externalID string) (*orders.Order, error)
	InsertOrder(ctx context.Context, o orders.Order) error
	ReserveStock(ctx context.Context, orderID, productID string, qty int) error
	ClearCart(ctx context.Context, cartID string) error
}
