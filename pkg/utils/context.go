package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	RoleKey      contextKey = "role"
	SessionIDKey contextKey = "session_id"
)

// Identity is the authenticated caller attached to a request by the session middleware.
type Identity struct {
	UserID    uuid.UUID
	Role      string
	SessionID uuid.UUID
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// GetSessionIDFromContext returns the session (JWT jti) of the current request
func GetSessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(uuid.UUID)
	return sessionID, ok
}

func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return Identity{}, false
	}
	role, _ := GetRoleFromContext(ctx)
	sessionID, _ := GetSessionIDFromContext(ctx)
	return Identity{UserID: userID, Role: role, SessionID: sessionID}, true
}

func SetIdentityContext(ctx context.Context, identity Identity) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, identity.UserID)
	ctx = context.WithValue(ctx, RoleKey, identity.Role)
	ctx = context.WithValue(ctx, SessionIDKey, identity.SessionID)
	return ctx
}
