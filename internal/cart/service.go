package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grocerly/checkout/internal/catalog"
)

var ErrUnknownProduct = errors.New("product does not exist or is inactive")

type Service struct {
	DB      *pgxpool.Pool
	Carts   Repo
	Catalog catalog.Repo
}

func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.Carts.GetByUser(ctx, s.DB, userID)
	if errors.Is(err, ErrNotFound) {
		return &Cart{UserID: userID}, nil
	}
	return c, err
}

func (s *Service) product(ctx context.Context, productID string) (catalog.Product, error) {
	ps, err := s.Catalog.ByIDs(ctx, s.DB, []string{productID})
	if err != nil {
		return catalog.Product{}, err
	}
	p, ok := ps[productID]
	if !ok || !p.Active {
		return catalog.Product{}, ErrUnknownProduct
	}
	return p, nil
}

// AddItem puts qty units of the product in the user's cart, merging
// with an existing line and re-snapshotting the current price.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	p, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.Carts.UpsertItem(ctx, s.DB, userID, productID, qty, p.PriceCents); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) SetQuantity(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		if err := s.Carts.RemoveItem(ctx, s.DB, userID, productID); err != nil {
			return nil, err
		}
		return s.Get(ctx, userID)
	}
	if err := s.Carts.SetItemQuantity(ctx, s.DB, userID, productID, qty); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) (*Cart, error) {
	if err := s.Carts.RemoveItem(ctx, s.DB, userID, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Sync replaces the server cart with the client's lines, dropping
// anything that no longer maps to an active product and re-snapshotting
// prices.
func (s *Service) Sync(ctx context.Context, userID string, lines []Item) (*Cart, error) {
	kept := make([]Item, 0, len(lines))
	for _, l := range lines {
		p, err := s.product(ctx, l.ProductID)
		if errors.Is(err, ErrUnknownProduct) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if l.Quantity <= 0 {
			continue
		}
		l.UnitPriceCents = p.PriceCents
		kept = append(kept, l)
	}
	if err := s.Carts.Sync(ctx, s.DB, userID, kept); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}
