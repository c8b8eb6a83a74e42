package inventory

import (
	"context"
	"fmt"

	"github.com/grocerly/checkout/internal/orders"
	"github.com/grocerly/checkout/internal/postgres"
)

// InsufficientStockError reports the first product that could not be
// reserved. Non-retryable at this layer; the orchestrator aborts the
// whole transaction.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// Ledger mutates product stock and records every movement in
// inventory_logs. All methods run in the caller's transaction.
type Ledger struct{}

// Reserve decrements stock for one order line. Idempotent per
// (order, product): a repeated call for an already reserved pair is a
// no-op, so a retried checkout can never double-deduct.
func (Ledger) Reserve(ctx context.Context, q postgres.Querier, orderID, productID string, qty int) error {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM stock_reservations
			WHERE order_id=$1 AND product_id=$2 AND status='RESERVED'
		)`, orderID, productID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	// Row lock serializes concurrent checkouts contending for the same
	// product.
	var stock int
	if err := q.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, productID).Scan(&stock); err != nil {
		return err
	}
	if stock < qty {
		return &InsufficientStockError{ProductID: productID, Requested: qty, Available: stock}
	}

	if _, err := q.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`, productID, qty); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `
		INSERT INTO stock_reservations(order_id, product_id, qty, status)
		VALUES ($1,$2,$3,'RESERVED')
		ON CONFLICT (order_id, product_id) DO NOTHING`, orderID, productID, qty); err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		INSERT INTO inventory_logs(product_id, delta, stock_before, stock_after, reason)
		VALUES ($1,$2,$3,$4,$5)`,
		productID, -qty, stock, stock-qty, "order:"+orderID)
	return err
}

// Release restores stock for every still-RESERVED line of the order and
// writes compensating log entries. Safe to call when nothing was
// reserved, or after a partial reservation: only committed RESERVED rows
// are compensated.
func (Ledger) Release(ctx context.Context, q postgres.Querier, orderID string) ([]orders.ItemQty, error) {
	rows, err := q.Query(ctx, `
		SELECT product_id, qty FROM stock_reservations
		WHERE order_id=$1 AND status='RESERVED'`, orderID)
	if err != nil {
		return nil, err
	}
	var held []orders.ItemQty
	for rows.Next() {
		var it orders.ItemQty
		if err := rows.Scan(&it.ProductID, &it.Qty); err != nil {
			rows.Close()
			return nil, err
		}
		held = append(held, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, it := range held {
		var stock int
		if err := q.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).Scan(&stock); err != nil {
			return nil, err
		}
		if _, err := q.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id=$1`, it.ProductID, it.Qty); err != nil {
			return nil, err
		}
		if _, err := q.Exec(ctx, `
			INSERT INTO inventory_logs(product_id, delta, stock_before, stock_after, reason)
			VALUES ($1,$2,$3,$4,$5)`,
			it.ProductID, it.Qty, stock, stock+it.Qty, "release:order:"+orderID); err != nil {
			return nil, err
		}
	}
	if _, err := q.Exec(ctx, `
		UPDATE stock_reservations SET status='RELEASED', released_at=now()
		WHERE order_id=$1 AND status='RESERVED'`, orderID); err != nil {
		return nil, err
	}
	return held, nil
}
