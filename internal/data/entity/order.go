package entity

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusUnpaid    OrderStatus = "unpaid"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDelivered OrderStatus = "delivered"
)

type Order struct {
	BaseNoDelete
	OrderNumber string      `db:"order_number"`
	UserID      uuid.UUID   `db:"user_id"`
	Status      OrderStatus `db:"status"`
	TotalPrice  float64     `db:"total_price"`
	PaidAt      *time.Time  `db:"paid_at"`
	DeliveredAt *time.Time  `db:"delivered_at"`
	Items       []*OrderItem
}

type OrderItem struct {
	BaseSimple
	OrderID   uuid.UUID `db:"order_id"`
	Position  int       `db:"position"`
	ProductID string    `db:"product_id"`
	ItemName  string    `db:"item_name"`
	Duration  *Duration `db:"duration"`
	Quantity  int       `db:"quantity"`
	UnitPrice float64   `db:"unit_price"`
	Subtotal  float64   `db:"subtotal"`
}

// PendingPurchase is one paid, undelivered order item whose buyer has a linked game account.
type PendingPurchase struct {
	OrderID  uuid.UUID
	ItemID   uuid.UUID
	ItemName string
	Duration *Duration
	Quantity int
	AuthUUID string
}
