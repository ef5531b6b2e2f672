package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arkicoffee/storefront-backend/api/middleware"
	"github.com/arkicoffee/storefront-backend/api/responses"
	"github.com/arkicoffee/storefront-backend/api/validators"
	"github.com/arkicoffee/storefront-backend/internal/catalog"
	cartsvc "github.com/arkicoffee/storefront-backend/internal/cart"
	"github.com/arkicoffee/storefront-backend/pkg/enums"
	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"github.com/arkicoffee/storefront-backend/pkg/logger"
	"github.com/arkicoffee/storefront-backend/pkg/metrics"
)

// CartFetch returns the session cart with its pricing quote.
func CartFetch(registry *cartsvc.Registry, policy cartsvc.Policy, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := newCartView(store, policy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddItem merges a catalog product into the session cart.
func CartAddItem(registry *cartsvc.Registry, products *catalog.Repository, policy cartsvc.Policy, logg *logger.Logger, m *metrics.StorefrontMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		grind, err := enums.ParseGrind(payload.Grind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid grind"))
			return
		}

		product, err := products.GetByID(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.InStock {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock"))
			return
		}

		if err := store.AddItem(r.Context(), product, payload.Quantity, grind); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.IncCartMutation("add")

		view, err := newCartView(store, policy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartUpdateItem sets the quantity for an existing line. Unknown product ids
// are a silent no-op; the current cart is returned either way.
func CartUpdateItem(registry *cartsvc.Registry, policy cartsvc.Policy, logg *logger.Logger, m *metrics.StorefrontMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		store.UpdateQuantity(r.Context(), productID, payload.Quantity)
		m.IncCartMutation("update")

		view, err := newCartView(store, policy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartRemoveItem deletes a line from the session cart; idempotent.
func CartRemoveItem(registry *cartsvc.Registry, policy cartsvc.Policy, logg *logger.Logger, m *metrics.StorefrontMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productId")
		store.RemoveItem(r.Context(), productID)
		m.IncCartMutation("remove")

		view, err := newCartView(store, policy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartClear empties the session cart.
func CartClear(registry *cartsvc.Registry, policy cartsvc.Policy, logg *logger.Logger, m *metrics.StorefrontMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, registry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Clear(r.Context())
		m.IncCartMutation("clear")

		view, err := newCartView(store, policy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func sessionStore(r *http.Request, registry *cartsvc.Registry) (*cartsvc.Store, error) {
	if registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart session missing")
	}
	return registry.Get(r.Context(), sessionID), nil
}
