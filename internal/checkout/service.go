package checkout

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/arkicoffee/storefront-backend/internal/cart"
	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"github.com/arkicoffee/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// ShippingForm is the checkout form payload.
type ShippingForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
}

// Confirmation is returned after a simulated submission. No order is stored
// or transmitted anywhere.
type Confirmation struct {
	OrderID  string     `json:"orderId"`
	Quote    cart.Quote `json:"quote"`
	PlacedAt time.Time  `json:"placedAt"`
	Message  string     `json:"message"`
}

// Service runs the mock checkout flow: validate the form, pretend to process
// the order for a moment, clear the cart, confirm.
type Service struct {
	policy cart.Policy
	delay  time.Duration
	logg   *logger.Logger
}

// NewService builds a checkout service.
func NewService(policy cart.Policy, delay time.Duration, logg *logger.Logger) *Service {
	return &Service{
		policy: policy,
		delay:  delay,
		logg:   logg,
	}
}

// Submit validates the shipping form against a populated cart, waits the
// simulated processing delay, then clears the cart and returns the
// confirmation. The quote is taken before the clear so the confirmation shows
// what was charged.
func (s *Service) Submit(ctx context.Context, store *cart.Store, form ShippingForm) (*Confirmation, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable")
	}
	if store.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if fieldErrors := validateForm(form); len(fieldErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping form invalid").WithDetails(fieldErrors)
	}

	quote, err := s.policy.QuoteItems(store.Items())
	if err != nil {
		return nil, err
	}

	if err := s.simulateProcessing(ctx); err != nil {
		return nil, err
	}

	store.Clear(ctx)

	confirmation := &Confirmation{
		OrderID:  uuid.NewString(),
		Quote:    quote,
		PlacedAt: time.Now().UTC(),
		Message:  "Thank you for your order. You will receive a confirmation email shortly.",
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": confirmation.OrderID,
			"total":    quote.Total.String(),
		})
		s.logg.Info(logCtx, "checkout.submitted")
	}
	return confirmation, nil
}

func (s *Service) simulateProcessing(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeInternal, ctx.Err(), "checkout cancelled")
	}
}

func validateForm(form ShippingForm) map[string]string {
	fieldErrors := map[string]string{}

	if strings.TrimSpace(form.Name) == "" {
		fieldErrors["name"] = "Name is required"
	}
	switch email := strings.TrimSpace(form.Email); {
	case email == "":
		fieldErrors["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		fieldErrors["email"] = "Please enter a valid email address"
	}
	switch phone := strings.TrimSpace(form.Phone); {
	case phone == "":
		fieldErrors["phone"] = "Phone number is required"
	case !phonePattern.MatchString(phone):
		fieldErrors["phone"] = "Please enter a valid phone number"
	}
	if strings.TrimSpace(form.Address) == "" {
		fieldErrors["address"] = "Address is required"
	}
	if strings.TrimSpace(form.City) == "" {
		fieldErrors["city"] = "City is required"
	}
	switch zip := strings.TrimSpace(form.ZipCode); {
	case zip == "":
		fieldErrors["zipCode"] = "ZIP code is required"
	case !zipPattern.MatchString(zip):
		fieldErrors["zipCode"] = "Please enter a valid ZIP code"
	}

	return fieldErrors
}
