package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/grocerly/checkout/internal/kafka"
	"github.com/grocerly/checkout/internal/orders"
	"github.com/grocerly/checkout/internal/redisx"
)

type OrderService interface {
	Get(ctx context.Context, id string) (*orders.Order, error)
	Cancel(ctx context.Context, id string) (*orders.Order, error)
}

type OrdersHandler struct {
	Service  OrderService
	Producer Publisher
	Redis    Cache
	Name     string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/cancel", h.cancel)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// status cache first, then DB
	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Service.Get(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		log.Printf("get order: id=%s err=%v", id, err)
		writeError(w, http.StatusInternalServerError, "could not load order")
		return
	}
	if h.Redis != nil {
		b := kafkax.MustMarshal(map[string]any{"status": o.Status})
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Cancel(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if errors.Is(err, orders.ErrInvalidTransition) {
		writeError(w, http.StatusConflict, "order can no longer be cancelled")
		return
	}
	if err != nil {
		log.Printf("cancel order: id=%s err=%v", id, err)
		writeError(w, http.StatusInternalServerError, "could not cancel order")
		return
	}

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, id)
		_ = h.Redis.Del(ctx, key).Err()
	}
	h.publishCancelled(o, r.Header.Get("X-Request-Id"))
	writeJSON(w, http.StatusOK, o)
}

// The fulfillment consumer picks this event up and releases the stock
// reservations held by the order.
func (h *OrdersHandler) publishCancelled(o *orders.Order, trace string) {
	if h.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCancelled,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Name,
		TraceID:       trace,
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(orders.OrderCancelledPayload{OrderID: o.ID}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCancelled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
