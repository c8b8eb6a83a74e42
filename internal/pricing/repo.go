package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/grocerly/checkout/internal/postgres"
)

// ErrExhausted is returned by Redeem when the usage cap was hit between
// lookup and redemption.
var ErrExhausted = errors.New("promotion exhausted")

type Repo struct{}

const zoneCols = `id, name, suburbs, postcode_prefixes, fee_cents, free_over_cents, active`

// ZoneForAddress resolves the delivery zone for an address: exact suburb
// match first, postcode-prefix fallback second, active zones only. A nil
// zone with nil error means the address is not covered.
func (r Repo) ZoneForAddress(ctx context.Context, q postgres.Querier, suburb, postcode string) (*Zone, error) {
	z, err := scanZone(q.QueryRow(ctx, `
		SELECT `+zoneCols+` FROM delivery_zones
		WHERE active AND lower($1) IN (SELECT lower(s) FROM unnest(suburbs) AS s)
		ORDER BY name LIMIT 1`, suburb))
	if err == nil {
		return z, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	z, err = scanZone(q.QueryRow(ctx, `
		SELECT `+zoneCols+` FROM delivery_zones
		WHERE active AND EXISTS (
			SELECT 1 FROM unnest(postcode_prefixes) AS p WHERE $1 LIKE p || '%'
		)
		ORDER BY name LIMIT 1`, postcode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return z, nil
}

func scanZone(row pgx.Row) (*Zone, error) {
	var z Zone
	if err := row.Scan(&z.ID, &z.Name, &z.Suburbs, &z.PostcodePrefixes, &z.FeeCents, &z.FreeOverCents, &z.Active); err != nil {
		return nil, err
	}
	return &z, nil
}

// PromotionByCode looks a promotion up case-insensitively, locking the
// row so the uses counter cannot be raced by a concurrent checkout. A
// nil promotion with nil error means no such code.
func (r Repo) PromotionByCode(ctx context.Context, q postgres.Querier, code string) (*Promotion, error) {
	var p Promotion
	err := q.QueryRow(ctx, `
		SELECT id, code, type, value, min_order_cents, max_uses, uses_count, starts_at, ends_at, active
		FROM promotions WHERE lower(code)=lower($1) FOR UPDATE`, code).
		Scan(&p.ID, &p.Code, &p.Type, &p.Value, &p.MinOrderCents, &p.MaxUses, &p.UsesCount, &p.StartsAt, &p.EndsAt, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Redeem bumps uses_count inside the checkout transaction. The WHERE
// guard re-checks the cap so over-redemption is impossible even if the
// caller's snapshot is stale.
func (r Repo) Redeem(ctx context.Context, q postgres.Querier, promoID string) error {
	ct, err := q.Exec(ctx, `
		UPDATE promotions SET uses_count = uses_count + 1
		WHERE id=$1 AND (max_uses = 0 OR uses_count < max_uses)`, promoID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrExhausted
	}
	return nil
}
