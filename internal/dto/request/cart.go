package request

type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=99"`
}

// UpdateCartItemRequest changes the quantity of a key or the duration of a subscription.
// Quantities below one are ignored and large ones capped by the cart itself.
type UpdateCartItemRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	Duration *string `json:"duration,omitempty" validate:"omitempty,oneof=30-d 90-d 1-y"`
}
