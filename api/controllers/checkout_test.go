package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/arkicoffee/storefront-backend/api/middleware"
	"github.com/arkicoffee/storefront-backend/internal/cart"
	"github.com/arkicoffee/storefront-backend/internal/catalog"
	"github.com/arkicoffee/storefront-backend/internal/checkout"
	"github.com/arkicoffee/storefront-backend/pkg/enums"
)

const validCheckoutBody = `{
  "name": "Lina Haddad",
  "email": "lina@example.com",
  "phone": "+971 50 123 4567",
  "address": "12 Al Wasl Road",
  "city": "Dubai",
  "zipCode": "12345"
}`

func seedCart(t *testing.T, registry *cart.Registry, sessionID string, price string, quantity int) {
	t.Helper()
	store := registry.Get(context.Background(), sessionID)
	product := catalog.Product{
		ID:      "yirgacheffe",
		Name:    "Yirgacheffe Natural",
		Price:   decimal.RequireFromString(price),
		InStock: true,
	}
	if err := store.AddItem(context.Background(), product, quantity, enums.GrindWholeBean); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

func checkoutRequest(body, sessionID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if sessionID != "" {
		req = req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
	}
	return req
}

func TestCheckoutSuccess(t *testing.T) {
	registry := cart.NewRegistry(nil, nil, nil)
	seedCart(t, registry, "s1", "25", 3)
	handler := Checkout(checkout.NewService(cart.DefaultPolicy(), 0, nil), registry, nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(validCheckoutBody, "s1"))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data checkout.Confirmation `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID == "" {
		t.Fatal("expected an order id")
	}
	if !envelope.Data.Quote.Total.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("expected total 95 got %s", envelope.Data.Quote.Total)
	}

	if !registry.Get(context.Background(), "s1").IsEmpty() {
		t.Fatal("cart should be cleared after checkout")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	registry := cart.NewRegistry(nil, nil, nil)
	handler := Checkout(checkout.NewService(cart.DefaultPolicy(), 0, nil), registry, nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(validCheckoutBody, "s1"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutInvalidForm(t *testing.T) {
	registry := cart.NewRegistry(nil, nil, nil)
	seedCart(t, registry, "s1", "25", 1)
	handler := Checkout(checkout.NewService(cart.DefaultPolicy(), 0, nil), registry, nil, nil)

	body := strings.Replace(validCheckoutBody, "12345", "wrong", 1)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(body, "s1"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Details["zipCode"] != "Please enter a valid ZIP code" {
		t.Fatalf("expected zip field error, got %v", envelope.Error.Details)
	}

	if registry.Get(context.Background(), "s1").IsEmpty() {
		t.Fatal("rejected checkout must not clear the cart")
	}
}

func TestCheckoutMissingSession(t *testing.T) {
	handler := Checkout(checkout.NewService(cart.DefaultPolicy(), 0, nil), cart.NewRegistry(nil, nil, nil), nil, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(validCheckoutBody, ""))

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
