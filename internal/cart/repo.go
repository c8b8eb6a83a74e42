package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/grocerly/checkout/internal/postgres"
)

var ErrNotFound = errors.New("cart not found")

type Repo struct{}

// GetByUser loads the user's cart with items, or ErrNotFound.
func (Repo) GetByUser(ctx context.Context, q postgres.Querier, userID string) (*Cart, error) {
	var c Cart
	err := q.QueryRow(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id=$1`, userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `SELECT cart_id, product_id, quantity, unit_price_cents, added_at
	                           FROM cart_items WHERE cart_id=$1 ORDER BY added_at`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.CartID, &it.ProductID, &it.Quantity, &it.UnitPriceCents, &it.AddedAt); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

// ensure returns the id of the user's cart, creating one if needed.
func (Repo) ensure(ctx context.Context, q postgres.Querier, userID string) (string, error) {
	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO carts(id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
		RETURNING id`, uuid.NewString(), userID).Scan(&id)
	return id, err
}

// UpsertItem adds a product to the user's cart, merging quantity when
// the product is already present. The unit price is re-snapshotted on
// every touch.
func (r Repo) UpsertItem(ctx context.Context, q postgres.Querier, userID, productID string, qty, unitPriceCents int) error {
	cartID, err := r.ensure(ctx, q, userID)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		INSERT INTO cart_items(cart_id, product_id, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
		              unit_price_cents = EXCLUDED.unit_price_cents,
		              added_at = now()`,
		cartID, productID, qty, unitPriceCents)
	return err
}

// SetItemQuantity overwrites the quantity of an existing line.
func (r Repo) SetItemQuantity(ctx context.Context, q postgres.Querier, userID, productID string, qty int) error {
	ct, err := q.Exec(ctx, `
		UPDATE cart_items SET quantity=$3, added_at=now()
		WHERE product_id=$2 AND cart_id = (SELECT id FROM carts WHERE user_id=$1)`,
		userID, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) RemoveItem(ctx context.Context, q postgres.Querier, userID, productID string) error {
	_, err := q.Exec(ctx, `
		DELETE FROM cart_items
		WHERE product_id=$2 AND cart_id = (SELECT id FROM carts WHERE user_id=$1)`,
		userID, productID)
	return err
}

// Sync replaces the whole cart with the given lines (client-side cart
// reconciliation after login).
func (r Repo) Sync(ctx context.Context, q postgres.Querier, userID string, items []Item) error {
	cartID, err := r.ensure(ctx, q, userID)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := q.Exec(ctx, `
			INSERT INTO cart_items(cart_id, product_id, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (cart_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
			cartID, it.ProductID, it.Quantity, it.UnitPriceCents); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes the cart and its items. Runs inside the checkout
// transaction once the order is assembled.
func (Repo) Clear(ctx context.Context, q postgres.Querier, cartID string) error {
	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM carts WHERE id=$1`, cartID)
	return err
}
