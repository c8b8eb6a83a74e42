package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/grocerly/checkout/internal/cart"
)

type CartService interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	AddItem(ctx context.Context, userID, productID string, qty int) (*cart.Cart, error)
	SetQuantity(ctx context.Context, userID, productID string, qty int) (*cart.Cart, error)
	Remove(ctx context.Context, userID, productID string) (*cart.Cart, error)
	Sync(ctx context.Context, userID string, lines []cart.Item) (*cart.Cart, error)
}

type CartHandler struct {
	Service CartService
}

type cartItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type cartSyncReq struct {
	Items []cartItemReq `json:"items"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.get)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items/{product_id}", h.setQuantity)
	r.Delete("/cart/items/{product_id}", h.remove)
	r.Post("/cart/sync", h.sync)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "missing user")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Service.Get(ctx, uid)
	if err != nil {
		log.Printf("get cart: user=%s err=%v", uid, err)
		writeError(w, http.StatusInternalServerError, "could not load cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "missing user")
		return
	}
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "product_id and a positive quantity are required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.AddItem(ctx, uid, req.ProductID, req.Quantity)
	if errors.Is(err, cart.ErrUnknownProduct) {
		writeError(w, http.StatusUnprocessableEntity, "product does not exist")
		return
	}
	if err != nil {
		log.Printf("add cart item: user=%s err=%v", uid, err)
		writeError(w, http.StatusInternalServerError, "could not update cart")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "missing user")
		return
	}
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.SetQuantity(ctx, uid, chi.URLParam(r, "product_id"), req.Quantity)
	if errors.Is(err, cart.ErrNotFound) {
		writeError(w, http.StatusNotFound, "item is not in the cart")
		return
	}
	if err != nil {
		log.Printf("set cart quantity: user=%s err=%v", uid, err)
		writeError(w, http.StatusInternalServerError, "could not update cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "missing user")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.Remove(ctx, uid, chi.URLParam(r, "product_id"))
	if err != nil {
		log.Printf("remove cart item: user=%s err=%v", uid, err)
		writeError(w, http.StatusInternalServerError, "could not update cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) sync(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "missing user")
		return
	}
	var req cartSyncReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	lines := make([]cart.Item, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, cart.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Service.Sync(ctx, uid, lines)
	if err != nil {
		log.Printf("sync cart: user=%s err=%v", uid, err)
		writeError(w, http.StatusInternalServerError, "could not sync cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}
