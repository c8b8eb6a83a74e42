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
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/grocerly/checkout/internal/checkout"
	"github.com/grocerly/checkout/internal/inventory"
	kafkax "github.com/grocerly/checkout/internal/kafka"
	"github.com/grocerly/checkout/internal/orders"
	"github.com/grocerly/checkout/internal/redisx"
)

type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID string, req checkout.PlaceOrderRequest) (*orders.Order, bool, error)
	ValidateCart(ctx context.Context, userID string) ([]checkout.CartIssue, error)
}

// Publisher is the slice of the kafka producer the handlers use.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Cache is the slice of the redis client the handlers use.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type CheckoutHandler struct {
	Service  CheckoutService
	Orders   OrderService
	Producer Publisher
	Redis    Cache
	Name     string
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/checkout/order", h.placeOrder)
	r.Get("/cart/validate", h.validateCart)
}

func (h *CheckoutHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "missing user")
		return
	}

	var req checkout.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Idempotency fast path: a key we have seen maps to the order it
	// created, so a retry is served from cache without touching the
	// checkout transaction. The orders.external_id unique column stays
	// the source of truth when the key has expired or redis is down.
	if req.IdempotencyKey != "" && h.Redis != nil && h.Orders != nil {
		idemKey := fmt.Sprintf(redisx.KeyIdemCheckout, req.IdempotencyKey)
		if id, err := h.Redis.Get(ctx, idemKey).Result(); err == nil && id != "" {
			if prev, err := h.Orders.Get(ctx, id); err == nil {
				writeJSON(w, http.StatusOK, prev)
				return
			}
		}
	}

	order, replayed, err := h.Service.PlaceOrder(ctx, uid, req)
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}

	if h.Redis != nil {
		if req.IdempotencyKey != "" {
			idemKey := fmt.Sprintf(redisx.KeyIdemCheckout, req.IdempotencyKey)
			_ = h.Redis.Set(ctx, idemKey, order.ID, redisx.TTLIdempotency).Err()
		}
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, order.ID)
		b := kafkax.MustMarshal(map[string]any{"status": order.Status})
		_ = h.Redis.Set(ctx, statusKey, b, redisx.TTLStatusCache).Err()
	}

	if !replayed {
		h.publishPlaced(order, r.Header.Get("X-Request-Id"))
	}

	code := http.StatusCreated
	if replayed {
		code = http.StatusOK
	}
	writeJSON(w, code, order)
}

// writeCheckoutError maps the checkout taxonomy onto status codes.
// Anything unrecognized is a persistence failure: full detail goes to
// the log, the client gets a generic message.
func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var ise *inventory.InsufficientStockError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusUnprocessableEntity, "your cart is empty")
	case errors.Is(err, checkout.ErrUndeliverableAddress):
		writeError(w, http.StatusUnprocessableEntity, "sorry, we do not deliver to this address")
	case errors.As(err, &ise):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "some items are no longer available in the requested quantity",
			"product_id": ise.ProductID,
			"requested":  ise.Requested,
			"available":  ise.Available,
		})
	default:
		log.Printf("checkout failed: user=%s err=%v", userID(r), err)
		writeError(w, http.StatusInternalServerError, "checkout failed, please try again")
	}
}

func (h *CheckoutHandler) publishPlaced(o *orders.Order, trace string) {
	if h.Producer == nil {
		return
	}
	items := make([]orders.ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orders.ItemQty{ProductID: it.ProductID, Qty: it.Quantity})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Name,
		TraceID:       trace,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID: o.ID, Number: o.Number, UserID: o.UserID, Items: items, TotalCents: o.TotalCents,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *CheckoutHandler) validateCart(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "missing user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	issues, err := h.Service.ValidateCart(ctx, uid)
	if errors.Is(err, checkout.ErrEmptyCart) {
		writeError(w, http.StatusUnprocessableEntity, "your cart is empty")
		return
	}
	if err != nil {
		log.Printf("validate cart: user=%s err=%v", uid, err)
		writeError(w, http.StatusInternalServerError, "could not validate cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": len(issues) == 0, "issues": issues})
}
