package response

import (
	"time"

	"arc-web/internal/data/entity"
)

type CartItemResponse struct {
	ProductID string             `json:"productId"`
	Name      string             `json:"name"`
	Type      entity.ProductType `json:"type"`
	UnitPrice float64            `json:"unitPrice"`
	Quantity  int                `json:"quantity"`
	Duration  *entity.Duration   `json:"duration,omitempty"`
	Subtotal  float64            `json:"subtotal"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

type OrderItemResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	ItemName  string           `json:"itemName"`
	Duration  *entity.Duration `json:"duration,omitempty"`
	Quantity  int              `json:"quantity"`
	UnitPrice float64          `json:"unitPrice"`
	Subtotal  float64          `json:"subtotal"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	OrderNumber string              `json:"orderNumber"`
	Status      entity.OrderStatus  `json:"status"`
	TotalPrice  float64             `json:"totalPrice"`
	PaidAt      *time.Time          `json:"paidAt,omitempty"`
	DeliveredAt *time.Time          `json:"deliveredAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	Items       []OrderItemResponse `json:"items"`
}

func OrderToResponse(order *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalPrice:  order.TotalPrice,
		PaidAt:      order.PaidAt,
		DeliveredAt: order.DeliveredAt,
		CreatedAt:   order.CreatedAt,
		Items:       make([]OrderItemResponse, 0, len(order.Items)),
	}

	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID,
			ItemName:  item.ItemName,
			Duration:  item.Duration,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}

	return resp
}
