package checkout

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grocerly/checkout/internal/cart"
	"github.com/grocerly/checkout/internal/catalog"
	"github.com/grocerly/checkout/internal/inventory"
	"github.com/grocerly/checkout/internal/orders"
	"github.com/grocerly/checkout/internal/pricing"
)

// PGStore binds the domain repos to one pgx transaction per unit of
// work.
type PGStore struct {
	DB       *pgxpool.Pool
	Carts    cart.Repo
	Catalog  catalog.Repo
	Pricing  pricing.Repo
	Orders   orders.Repo
	Ledger   inventory.Ledger
	Settings SettingsRepo
}

func (s *PGStore) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &pgUnitOfWork{tx: tx, s: s}, nil
}

type pgUnitOfWork struct {
	tx pgx.Tx
	s  *PGStore
}

func (u *pgUnitOfWork) Commit(ctx context.Context) error { return u.tx.Commit(ctx) }

// Rollback after Commit returns pgx.ErrTxClosed, which is exactly the
// no-op the interface promises.
func (u *pgUnitOfWork) Rollback(ctx context.Context) { _ = u.tx.Rollback(ctx) }

func (u *pgUnitOfWork) Settings(ctx context.Context) (Settings, error) {
	return u.s.Settings.Load(ctx, u.tx)
}

func (u *pgUnitOfWork) CartWithItems(ctx context.Context, userID string) (*cart.Cart, error) {
	return u.s.Carts.GetByUser(ctx, u.tx, userID)
}

func (u *pgUnitOfWork) ProductsByID(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	return u.s.Catalog.ByIDs(ctx, u.tx, ids)
}

func (u *pgUnitOfWork) ResolveOrCreateAddress(ctx context.Context, a orders.Address) (orders.Address, error) {
	return u.s.Orders.ResolveOrCreateAddress(ctx, u.tx, a)
}

func (u *pgUnitOfWork) ZoneForAddress(ctx context.Context, suburb, postcode string) (*pricing.Zone, error) {
	return u.s.Pricing.ZoneForAddress(ctx, u.tx, suburb, postcode)
}

func (u *pgUnitOfWork) PromotionByCode(ctx context.Context, code string) (*pricing.Promotion, error) {
	return u.s.Pricing.PromotionByCode(ctx, u.tx, code)
}

func (u *pgUnitOfWork) RedeemPromotion(ctx context.Context, promoID string) error {
	return u.s.Pricing.Redeem(ctx, u.tx, promoID)
}

func (u *pgUnitOfWork) OrderByExternalID(ctx context.Context, externalID string) (*orders.Order, error) {
	return u.s.Orders.ByExternalID(ctx, u.tx, externalID)
}

func (u *pgUnitOfWork) InsertOrder(ctx context.Context, o orders.Order) error {
	return u.s.Orders.Insert(ctx, u.tx, o)
}

func (u *pgUnitOfWork) ReserveStock(ctx context.Context, orderID, productID string, qty int) error {
	return u.s.Ledger.Reserve(ctx, u.tx, orderID, productID, qty)
}

func (u *pgUnitOfWork) ClearCart(ctx context.Context, cartID string) error {
	return u.s.Carts.Clear(ctx, u.tx, cartID)
}
