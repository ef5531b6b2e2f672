package catalog

import (
	"github.com/arkicoffee/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Product is a read-only catalog record loaded from the static fixtures.
// The cart stores its own snapshot of a Product at add time; nothing in the
// storefront mutates these.
type Product struct {
	ID            string                `json:"id"`
	Slug          string                `json:"slug"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Price         decimal.Decimal       `json:"price"`
	OriginalPrice *decimal.Decimal      `json:"originalPrice,omitempty"`
	Images        []string              `json:"images"`
	Category      enums.ProductCategory `json:"category"`
	Collection    string                `json:"collection,omitempty"`
	Origin        string                `json:"origin"`
	Process       string                `json:"process"`
	TastingNotes  []string              `json:"tastingNotes"`
	Score         *float64              `json:"score,omitempty"`
	Producer      string                `json:"producer,omitempty"`
	InStock       bool                  `json:"inStock"`
	Featured      bool                  `json:"featured,omitempty"`
}

// Collection groups products for the marketing pages.
type Collection struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Products    []string `json:"products"`
}
