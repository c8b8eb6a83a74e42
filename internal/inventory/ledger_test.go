package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grocerly/checkout/internal/orders"
)

type logRow struct {
	productID string
	delta     int
	before    int
	after     int
	reason    string
}

// memQuerier is an in-memory stand-in for the transaction the ledger
// normally runs in. It dispatches on the statement text and keeps the
// same state the real tables would.
type memQuerier struct {
	stock    map[string]int
	reserved map[string]map[string]int // order id -> product id -> qty
	logs     []logRow
}

func newMemQuerier(stock map[string]int) *memQuerier {
	return &memQuerier{stock: stock, reserved: map[string]map[string]int{}}
}

func (m *memQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "SELECT EXISTS"):
		_, ok := m.reserved[args[0].(string)][args[1].(string)]
		return scanFunc(func(dest ...any) error {
			*dest[0].(*bool) = ok
			return nil
		})
	case strings.Contains(sql, "SELECT stock FROM products"):
		stock, ok := m.stock[args[0].(string)]
		return scanFunc(func(dest ...any) error {
			if !ok {
				return pgx.ErrNoRows
			}
			*dest[0].(*int) = stock
			return nil
		})
	}
	return scanFunc(func(...any) error { return pgx.ErrNoRows })
}

func (m *memQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "stock = stock - $2"):
		m.stock[args[0].(string)] -= args[1].(int)
	case strings.Contains(sql, "stock = stock + $2"):
		m.stock[args[0].(string)] += args[1].(int)
	case strings.Contains(sql, "INSERT INTO stock_reservations"):
		order, product, qty := args[0].(string), args[1].(string), args[2].(int)
		if m.reserved[order] == nil {
			m.reserved[order] = map[string]int{}
		}
		if _, ok := m.reserved[order][product]; !ok { // ON CONFLICT DO NOTHING
			m.reserved[order][product] = qty
		}
	case strings.Contains(sql, "INSERT INTO inventory_logs"):
		m.logs = append(m.logs, logRow{
			productID: args[0].(string),
			delta:     args[1].(int),
			before:    args[2].(int),
			after:     args[3].(int),
			reason:    args[4].(string),
		})
	case strings.Contains(sql, "status='RELEASED'"):
		delete(m.reserved, args[0].(string))
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (m *memQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	var held []orders.ItemQty
	for product, qty := range m.reserved[args[0].(string)] {
		held = append(held, orders.ItemQty{ProductID: product, Qty: qty})
	}
	return &itemRows{items: held}, nil
}

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

type itemRows struct {
	items []orders.ItemQty
	i     int
}

func (r *itemRows) Next() bool {
	r.i++
	return r.i <= len(r.items)
}

func (r *itemRows) Scan(dest ...any) error {
	it := r.items[r.i-1]
	*dest[0].(*string) = it.ProductID
	*dest[1].(*int) = it.Qty
	return nil
}

func (r *itemRows) Close()                                       {}
func (r *itemRows) Err() error                                   { return nil }
func (r *itemRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *itemRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *itemRows) Values() ([]any, error)                       { return nil, nil }
func (r *itemRows) RawValues() [][]byte                          { return nil }
func (r *itemRows) Conn() *pgx.Conn                              { return nil }

func TestReserveRepeatedCallDoesNotDoubleDeduct(t *testing.T) {
	m := newMemQuerier(map[string]int{"prod-a": 5})
	var l Ledger

	require.NoError(t, l.Reserve(context.Background(), m, "o1", "prod-a", 2))
	assert.Equal(t, 3, m.stock["prod-a"])
	require.Len(t, m.logs, 1)
	assert.Equal(t, logRow{productID: "prod-a", delta: -2, before: 5, after: 3, reason: "order:o1"}, m.logs[0])

	// retried checkout reserves the same pair again
	require.NoError(t, l.Reserve(context.Background(), m, "o1", "prod-a", 2))
	assert.Equal(t, 3, m.stock["prod-a"])
	assert.Len(t, m.logs, 1)
}

func TestReserveInsufficientStock(t *testing.T) {
	m := newMemQuerier(map[string]int{"prod-a": 1})
	var l Ledger

	err := l.Reserve(context.Background(), m, "o1", "prod-a", 2)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "prod-a", ise.ProductID)
	assert.Equal(t, 2, ise.Requested)
	assert.Equal(t, 1, ise.Available)

	// nothing written
	assert.Equal(t, 1, m.stock["prod-a"])
	assert.Empty(t, m.reserved["o1"])
	assert.Empty(t, m.logs)
}

func TestReleaseRestoresHeldStock(t *testing.T) {
	m := newMemQuerier(map[string]int{"prod-a": 5})
	var l Ledger

	require.NoError(t, l.Reserve(context.Background(), m, "o1", "prod-a", 2))

	held, err := l.Release(context.Background(), m, "o1")
	require.NoError(t, err)
	assert.Equal(t, []orders.ItemQty{{ProductID: "prod-a", Qty: 2}}, held)
	assert.Equal(t, 5, m.stock["prod-a"])

	require.Len(t, m.logs, 2)
	assert.Equal(t, logRow{productID: "prod-a", delta: 2, before: 3, after: 5, reason: "release:order:o1"}, m.logs[1])

	// the reservation is RELEASED now, so a second release finds nothing
	held, err = l.Release(context.Background(), m, "o1")
	require.NoError(t, err)
	assert.Empty(t, held)
	assert.Equal(t, 5, m.stock["prod-a"])
	assert.Len(t, m.logs, 2)
}

func TestReleaseNothingReserved(t *testing.T) {
	m := newMemQuerier(map[string]int{"prod-a": 5})
	var l Ledger

	held, err := l.Release(context.Background(), m, "o-unknown")
	require.NoError(t, err)
	assert.Empty(t, held)
	assert.Equal(t, 5, m.stock["prod-a"])
	assert.Empty(t, m.logs)
}
