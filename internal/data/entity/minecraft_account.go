package entity

import (
	"time"

	"github.com/google/uuid"
)

// MinecraftAccount binds a game identity to the web user that last redeemed a link code for it.
type MinecraftAccount struct {
	AuthUUID string    `db:"auth_uuid"`
	Username string    `db:"username"`
	UserID   uuid.UUID `db:"user_id"`
	LinkedAt time.Time `db:"linked_at"`
}
