package controllers

import (
	"net/http"

	"github.com/arkicoffee/storefront-backend/api/middleware"
	"github.com/arkicoffee/storefront-backend/api/responses"
	"github.com/arkicoffee/storefront-backend/api/validators"
	cartsvc "github.com/arkicoffee/storefront-backend/internal/cart"
	checkoutsvc "github.com/arkicoffee/storefront-backend/internal/checkout"
	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"github.com/arkicoffee/storefront-backend/pkg/logger"
	"github.com/arkicoffee/storefront-backend/pkg/metrics"
)

// Checkout runs the simulated order submission for the session cart.
func Checkout(svc *checkoutsvc.Service, registry *cartsvc.Registry, logg *logger.Logger, m *metrics.StorefrontMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || registry == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cart session missing"))
			return
		}

		var form checkoutsvc.ShippingForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := registry.Get(r.Context(), sessionID)
		confirmation, err := svc.Submit(r.Context(), store, form)
		if err != nil {
			m.IncCheckout("rejected")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncCheckout("placed")
		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}
