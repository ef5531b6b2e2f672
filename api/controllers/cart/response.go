package cart

import (
	"github.com/arkicoffee/storefront-backend/internal/catalog"
	cartsvc "github.com/arkicoffee/storefront-backend/internal/cart"
	"github.com/arkicoffee/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

type lineItemView struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Grind    enums.Grind     `json:"grind,omitempty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartView struct {
	Items           []lineItemView `json:"items"`
	ItemCount       int            `json:"itemCount"`
	Quote           cartsvc.Quote  `json:"quote"`
	CheckoutEnabled bool           `json:"checkoutEnabled"`
}

func newCartView(store *cartsvc.Store, policy cartsvc.Policy) (cartView, error) {
	items := store.Items()
	quote, err := policy.QuoteItems(items)
	if err != nil {
		return cartView{}, err
	}

	views := make([]lineItemView, 0, len(items))
	count := 0
	for _, item := range items {
		count += item.Quantity
		views = append(views, lineItemView{
			Product:  item.Product,
			Quantity: item.Quantity,
			Grind:    item.Grind,
			Subtotal: item.Subtotal(),
		})
	}

	return cartView{
		Items:           views,
		ItemCount:       count,
		Quote:           quote,
		CheckoutEnabled: len(items) > 0,
	}, nil
}
