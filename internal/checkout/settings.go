package checkout

import (
	"context"
	"strconv"

	"github.com/grocerly/checkout/internal/postgres"
)

// Settings is the per-request snapshot of the mutable store settings.
// It is loaded once at the start of a checkout and never re-read, so a
// concurrent settings edit cannot change prices mid-transaction.
type Settings struct {
	// DefaultDeliveryFeeCents applies only when AllowUnzonedDelivery
	// lets an address without a zone match through.
	DefaultDeliveryFeeCents int
	AllowUnzonedDelivery    bool
}

func DefaultSettings() Settings {
	return Settings{DefaultDeliveryFeeCents: 0, AllowUnzonedDelivery: false}
}

type SettingsRepo struct{}

// Load reads the settings table into a snapshot. Unknown keys are
// ignored, missing keys keep their defaults.
func (SettingsRepo) Load(ctx context.Context, q postgres.Querier) (Settings, error) {
	st := DefaultSettings()
	rows, err := q.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return st, err
		}
		switch k {
		case "delivery.default_fee_cents":
			if n, err := strconv.Atoi(v); err == nil {
				st.DefaultDeliveryFeeCents = n
			}
		case "delivery.allow_unzoned":
			st.AllowUnzonedDelivery = v == "true" || v == "1"
		}
	}
	return st, rows.Err()
}
