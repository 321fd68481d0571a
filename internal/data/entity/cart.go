package entity

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is the persisted form of one cart line, keyed by (user, product).
type CartItem struct {
	UserID    uuid.UUID `db:"user_id"`
	ProductID string    `db:"product_id"`
	Position  int       `db:"position"`
	Quantity  int       `db:"quantity"`
	Duration  *Duration `db:"duration"`
	UpdatedAt time.Time `db:"updated_at"`
}
