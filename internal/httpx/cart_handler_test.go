package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grocerly/checkout/internal/cart"
)

type fakeCart struct {
	cart *cart.Cart
	err  error

	addedProduct string
	addedQty     int
	setQty       int
	removed      string
	synced       []cart.Item
}

func (f *fakeCart) Get(ctx context.Context, userID string) (*cart.Cart, error) { return f.cart, f.err }

func (f *fakeCart) AddItem(ctx context.Context, userID, productID string, qty int) (*cart.Cart, error) {
	f.addedProduct, f.addedQty = productID, qty
	return f.cart, f.err
}

func (f *fakeCart) SetQuantity(ctx context.Context, userID, productID string, qty int) (*cart.Cart, error) {
	f.setQty = qty
	return f.cart, f.err
}

func (f *fakeCart) Remove(ctx context.Context, userID, productID string) (*cart.Cart, error) {
	f.removed = productID
	return f.cart, f.err
}

func (f *fakeCart) Sync(ctx context.Context, userID string, lines []cart.Item) (*cart.Cart, error) {
	f.synced = lines
	return f.cart, f.err
}

func doCart(svc CartService, method, path, body, user string) *httptest.ResponseRecorder {
	h := &CartHandler{Service: svc}
	r := NewRouter()
	h.Register(r)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddCartItem(t *testing.T) {
	svc := &fakeCart{cart: &cart.Cart{ID: "c1", UserID: "u1"}}
	w := doCart(svc, http.MethodPost, "/cart/items", `{"product_id":"prod-a","quantity":2}`, "u1")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "prod-a", svc.addedProduct)
	assert.Equal(t, 2, svc.addedQty)
}

func TestAddCartItemValidatesInput(t *testing.T) {
	svc := &fakeCart{}
	assert.Equal(t, http.StatusBadRequest, doCart(svc, http.MethodPost, "/cart/items", `{"quantity":2}`, "u1").Code)
	assert.Equal(t, http.StatusBadRequest, doCart(svc, http.MethodPost, "/cart/items", `{"product_id":"p","quantity":0}`, "u1").Code)
	assert.Equal(t, http.StatusUnauthorized, doCart(svc, http.MethodPost, "/cart/items", `{"product_id":"p","quantity":1}`, "").Code)
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	svc := &fakeCart{err: cart.ErrUnknownProduct}
	w := doCart(svc, http.MethodPost, "/cart/items", `{"product_id":"ghost","quantity":1}`, "u1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSetCartQuantity(t *testing.T) {
	svc := &fakeCart{cart: &cart.Cart{ID: "c1"}}
	w := doCart(svc, http.MethodPut, "/cart/items/prod-a", `{"quantity":7}`, "u1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, svc.setQty)
}

func TestRemoveCartItem(t *testing.T) {
	svc := &fakeCart{cart: &cart.Cart{ID: "c1"}}
	w := doCart(svc, http.MethodDelete, "/cart/items/prod-a", "", "u1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prod-a", svc.removed)
}

func TestSyncCart(t *testing.T) {
	svc := &fakeCart{cart: &cart.Cart{ID: "c1"}}
	w := doCart(svc, http.MethodPost, "/cart/sync", `{"items":[{"product_id":"a","quantity":1},{"product_id":"b","quantity":3}]}`, "u1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, svc.synced, 2)
	assert.Equal(t, "b", svc.synced[1].ProductID)
	assert.Equal(t, 3, svc.synced[1].Quantity)
}
