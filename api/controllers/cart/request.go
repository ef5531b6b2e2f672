package cart

// AddItemRequest adds a product to the session cart. Quantity must be at
// least 1; anything pushing a line past the cap is clamped by the store.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Grind     string `json:"grind,omitempty"`
}

// UpdateQuantityRequest sets the desired quantity for an existing line. The
// value is allowed to be zero or negative (decrement buttons send those); the
// store clamps it.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
