package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/grocerly/checkout/internal/kafka"
	"github.com/grocerly/checkout/internal/orders"
	"github.com/grocerly/checkout/internal/redisx"
)

// Service reacts to cancelled orders by handing reserved stock back to
// the shelf and announcing the release.
type Service struct {
	DB          *pgxpool.Pool
	Ledger      Ledger
	Redis       *redis.Client
	Producer    *kafkax.Producer // publishes stock.released
	ServiceName string
}

// HandleOrderCancelled is wired as the fulfillment consumer handler.
func (s *Service) HandleOrderCancelled(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCancelled {
		return nil
	}

	// Dedup by event id; redelivery after a crash is expected, a second
	// release of the same cancellation is not. Release itself is also
	// idempotent, so a lost dedup key is harmless.
	dkey := fmt.Sprintf(redisx.KeyDedup, "fulfillment", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderCancelledPayload](env.Payload)
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	released, err := s.Ledger.Release(ctx, tx, p.OrderID)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	if len(released) > 0 {
		s.publishReleased(p.OrderID, released, env.TraceID)
	}
	return nil
}

func (s *Service) publishReleased(orderID string, items []orders.ItemQty, trace string) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventStockReleased,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(orders.StockReleasedPayload{OrderID: orderID, Items: items}),
	}
	s.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventStockReleased)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
