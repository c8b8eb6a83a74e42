package catalog

import (
	"context"

	"github.com/grocerly/checkout/internal/postgres"
)

type Repo struct{}

func (Repo) List(ctx context.Context, q postgres.Querier) ([]Product, error) {
	rows, err := q.Query(ctx, `SELECT id, sku, name, price_cents, stock, active, created_at, updated_at
	                           FROM products WHERE active ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ByIDs returns the named products keyed by id. Missing ids are simply
// absent from the map; callers decide whether that is an error.
func (Repo) ByIDs(ctx context.Context, q postgres.Querier, ids []string) (map[string]Product, error) {
	if len(ids) == 0 {
		return map[string]Product{}, nil
	}
	rows, err := q.Query(ctx, `SELECT id, sku, name, price_cents, stock, active, created_at, updated_at
	                           FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Product, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
