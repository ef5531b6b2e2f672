package cart

import (
	"fmt"

	"github.com/arkicoffee/storefront-backend/pkg/config"
	pkgerrors "github.com/arkicoffee/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Policy derives shipping and totals from cart contents. Pure functions, no
// state, no persistence.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// DefaultPolicy is the storefront's standard policy: flat 20 AED shipping,
// free strictly above 150 AED.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromInt(150),
		ShippingFee:           decimal.NewFromInt(20),
	}
}

// PolicyFromConfig parses the configured threshold and fee.
func PolicyFromConfig(cfg config.CartConfig) (Policy, error) {
	threshold, err := decimal.NewFromString(cfg.FreeShippingThreshold)
	if err != nil {
		return Policy{}, fmt.Errorf("parse free shipping threshold: %w", err)
	}
	fee, err := decimal.NewFromString(cfg.ShippingFee)
	if err != nil {
		return Policy{}, fmt.Errorf("parse shipping fee: %w", err)
	}
	if threshold.IsNegative() || fee.IsNegative() {
		return Policy{}, fmt.Errorf("shipping policy values must be non-negative")
	}
	return Policy{FreeShippingThreshold: threshold, ShippingFee: fee}, nil
}

// Shipping returns zero when the subtotal is strictly greater than the free
// shipping threshold, the flat fee otherwise. A subtotal exactly at the
// threshold still pays shipping.
func (p Policy) Shipping(subtotal decimal.Decimal) (decimal.Decimal, error) {
	if subtotal.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "subtotal cannot be negative")
	}
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		return decimal.Zero, nil
	}
	return p.ShippingFee, nil
}

// Total returns subtotal + shipping.
func (p Policy) Total(subtotal, shipping decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping)
}

// AmountToFreeShipping returns how much more the customer must spend before
// shipping is waived; zero once past the threshold.
func (p Policy) AmountToFreeShipping(subtotal decimal.Decimal) decimal.Decimal {
	remaining := p.FreeShippingThreshold.Sub(subtotal)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Quote is the derived pricing summary rendered on cart and checkout pages.
type Quote struct {
	Subtotal             decimal.Decimal `json:"subtotal"`
	Shipping             decimal.Decimal `json:"shipping"`
	Total                decimal.Decimal `json:"total"`
	AmountToFreeShipping decimal.Decimal `json:"amountToFreeShipping"`
}

// QuoteItems prices the given line items under the policy.
func (p Policy) QuoteItems(items []LineItem) (Quote, error) {
	subtotal := Subtotal(items)
	shipping, err := p.Shipping(subtotal)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Subtotal:             subtotal,
		Shipping:             shipping,
		Total:                p.Total(subtotal, shipping),
		AmountToFreeShipping: p.AmountToFreeShipping(subtotal),
	}, nil
}

// Subtotal sums price * quantity across the lines.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
