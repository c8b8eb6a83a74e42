package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/grocerly/checkout/internal/postgres"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateExternalID means another request with the same
	// idempotency key committed its order first.
	ErrDuplicateExternalID = errors.New("order with this external id already exists")
)

type Repo struct{}

// Insert writes the order header and its items in the caller's
// transaction.
func (Repo) Insert(ctx context.Context, q postgres.Querier, o Order) error {
	_, err := q.Exec(ctx, `
		INSERT INTO orders(id, number, external_id, user_id, status, address_id, zone_id, promo_code,
		                   subtotal_cents, delivery_fee_cents, discount_cents, total_cents,
		                   notes, scheduled_date, scheduled_slot, created_at, updated_at)
		VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,NULLIF($7,''),NULLIF($8,''),$9,$10,$11,$12,$13,$14,$15,$16,$16)`,
		o.ID, o.Number, o.ExternalID, o.UserID, o.Status, o.AddressID, o.ZoneID, o.PromoCode,
		o.SubtotalCents, o.DeliveryFeeCents, o.DiscountCents, o.TotalCents,
		o.Notes, o.ScheduledDate, o.ScheduledSlot, o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_external_id_key" {
			return ErrDuplicateExternalID
		}
		return err
	}
	for _, it := range o.Items {
		if _, err := q.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, sku, name, unit_price_cents, quantity)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, it.ProductID, it.SKU, it.Name, it.UnitPriceCents, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// ByExternalID finds an earlier order placed with the same idempotency
// key, or ErrNotFound.
func (r Repo) ByExternalID(ctx context.Context, q postgres.Querier, externalID string) (*Order, error) {
	var id string
	err := q.QueryRow(ctx, `SELECT id FROM orders WHERE external_id=$1`, externalID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, q, id)
}

func (Repo) Get(ctx context.Context, q postgres.Querier, id string) (*Order, error) {
	var o Order
	err := q.QueryRow(ctx, `
		SELECT id, number, COALESCE(external_id,''), user_id, status, address_id,
		       COALESCE(zone_id,''), COALESCE(promo_code,''),
		       subtotal_cents, delivery_fee_cents, discount_cents, total_cents,
		       notes, scheduled_date, scheduled_slot, created_at, updated_at, cancelled_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Number, &o.ExternalID, &o.UserID, &o.Status, &o.AddressID,
			&o.ZoneID, &o.PromoCode,
			&o.SubtotalCents, &o.DeliveryFeeCents, &o.DiscountCents, &o.TotalCents,
			&o.Notes, &o.ScheduledDate, &o.ScheduledSlot, &o.CreatedAt, &o.UpdatedAt, &o.CancelledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT order_id, product_id, sku, name, unit_price_cents, quantity
		FROM order_items WHERE order_id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.SKU, &it.Name, &it.UnitPriceCents, &it.Quantity); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// UpdateStatus moves the order through the state machine, locking the
// row so concurrent transitions serialize. ErrInvalidTransition when the
// move is not allowed from the current status.
func (Repo) UpdateStatus(ctx context.Context, q postgres.Querier, id string, to Status) (from Status, err error) {
	err = q.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if !CanTransition(from, to) {
		return from, ErrInvalidTransition
	}
	set := `status=$2, updated_at=now()`
	if to == StatusCancelled {
		set += `, cancelled_at=now()`
	}
	_, err = q.Exec(ctx, `UPDATE orders SET `+set+` WHERE id=$1`, id, to)
	return from, err
}

// ResolveOrCreateAddress returns the id of a saved address or persists
// the supplied one for the user.
func (Repo) ResolveOrCreateAddress(ctx context.Context, q postgres.Querier, a Address) (Address, error) {
	if a.ID != "" {
		err := q.QueryRow(ctx, `SELECT id, user_id, line1, suburb, postcode FROM addresses WHERE id=$1 AND user_id=$2`,
			a.ID, a.UserID).Scan(&a.ID, &a.UserID, &a.Line1, &a.Suburb, &a.Postcode)
		if errors.Is(err, pgx.ErrNoRows) {
			return Address{}, ErrNotFound
		}
		return a, err
	}
	a.ID = uuid.NewString()
	_, err := q.Exec(ctx, `INSERT INTO addresses(id, user_id, line1, suburb, postcode) VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.UserID, a.Line1, a.Suburb, a.Postcode)
	return a, err
}
