package response

import (
	"time"

	"arc-web/internal/data/entity"
)

type LinkCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LinkValidateResponse is parsed by the plugin, which ignores the HTTP status.
type LinkValidateResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

type LinkStatusResponse struct {
	Linked   bool       `json:"linked"`
	AuthUUID string     `json:"authUUID,omitempty"`
	Username string     `json:"username,omitempty"`
	LinkedAt *time.Time `json:"linkedAt,omitempty"`
}

type PendingPurchaseResponse struct {
	OrderID  string           `json:"orderId"`
	ItemID   string           `json:"itemId"`
	ItemName string           `json:"itemName"`
	Duration *entity.Duration `json:"duration"`
	Quantity int              `json:"quantity"`
	AuthUUID string           `json:"authUUID"`
}

type PendingPurchasesResponse struct {
	Purchases []PendingPurchaseResponse `json:"purchases"`
}

type CompletePurchaseResponse struct {
	Success          bool `json:"success"`
	AlreadyDelivered bool `json:"alreadyDelivered,omitempty"`
}

func PendingToResponse(p *entity.PendingPurchase) PendingPurchaseResponse {
	return PendingPurchaseResponse{
		OrderID:  p.OrderID.String(),
		ItemID:   p.ItemID.String(),
		ItemName: p.ItemName,
		Duration: p.Duration,
		Quantity: p.Quantity,
		AuthUUID: p.AuthUUID,
	}
}
