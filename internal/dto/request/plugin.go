package request

type ValidateLinkRequest struct {
	Code     string `json:"code" validate:"required,max=16"`
	AuthUUID string `json:"authUUID" validate:"required,max=64"`
	Username string `json:"username" validate:"required,max=32"`
}

type CompletePurchaseRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}
