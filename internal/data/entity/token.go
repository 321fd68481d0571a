package entity

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind separates the three time-boxed credential families sharing the auth_tokens table.
type TokenKind string

const (
	TokenKindEmailVerification TokenKind = "email_verification"
	TokenKindPasswordReset     TokenKind = "password_reset"
	TokenKindLinkCode          TokenKind = "link_code"
)

type Token struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	Kind      TokenKind  `db:"kind"`
	Value     string     `db:"value"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	// FailedAttempts counts wrong guesses against the owner's live token.
	FailedAttempts int `db:"failed_attempts"`
}

// Usable reports whether the token can still be consumed at now.
func (t *Token) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
