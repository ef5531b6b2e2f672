package catalog

import (
	"sort"
	"strings"

	"github.com/arkicoffee/storefront-backend/pkg/enums"
)

// SortOption orders product listings.
type SortOption string

const (
	SortFeatured  SortOption = "featured"
	SortPriceAsc  SortOption = "price-asc"
	SortPriceDesc SortOption = "price-desc"
	SortScore     SortOption = "score"
)

// ParseSortOption converts raw input into a SortOption, defaulting to featured.
func ParseSortOption(value string) SortOption {
	switch SortOption(value) {
	case SortPriceAsc, SortPriceDesc, SortScore, SortFeatured:
		return SortOption(value)
	}
	return SortFeatured
}

// ListOptions describe the supported filter knobs for the browse endpoint.
type ListOptions struct {
	Category    *enums.ProductCategory
	Origin      string
	InStockOnly bool
	Query       string
	Sort        SortOption
}

func (o ListOptions) matches(p Product) bool {
	if o.Category != nil && p.Category != *o.Category {
		return false
	}
	if o.Origin != "" && !strings.EqualFold(p.Origin, o.Origin) {
		return false
	}
	if o.InStockOnly && !p.InStock {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(o.Query)); q != "" {
		haystack := strings.ToLower(p.Name + " " + p.Origin + " " + strings.Join(p.TastingNotes, " "))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

func sortProducts(products []Product, option SortOption) {
	switch option {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].Price.LessThan(products[i].Price)
		})
	case SortScore:
		sort.SliceStable(products, func(i, j int) bool {
			return scoreOf(products[i]) > scoreOf(products[j])
		})
	default:
		// Featured first, original fixture order otherwise.
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Featured && !products[j].Featured
		})
	}
}

func scoreOf(p Product) float64 {
	if p.Score == nil {
		return 0
	}
	return *p.Score
}
