// Package token issues and redeems the time-boxed credentials the site hands out:
// email verification codes, password reset tokens and account link codes.
package token

import (
	"strings"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"
	"arc-web/pkg/utils"
)

// Policy describes one credential family.
type Policy struct {
	Kind     entity.TokenKind
	Lifetime time.Duration
	Generate func() (string, error)
	// OnConsume decides whether a redeemed token is deleted or kept as used.
	OnConsume repository.ConsumeMode
	// Normalize canonicalizes user input before lookup.
	Normalize func(string) string
	// MaxAttempts revokes the owner's live token after that many wrong guesses
	// through ConsumeFor. Zero means unlimited.
	MaxAttempts int
}

const (
	DefaultVerificationLifetime = 15 * time.Minute
	DefaultResetLifetime        = time.Hour
	DefaultLinkCodeLifetime     = 10 * time.Minute

	// MaxVerificationAttempts keeps a 6-digit code out of brute-force reach.
	MaxVerificationAttempts = 5
)

// EmailVerification is a 6-digit code redeemed together with the owner's email.
func EmailVerification(lifetime time.Duration) Policy {
	return Policy{
		Kind:        entity.TokenKindEmailVerification,
		Lifetime:    orDefault(lifetime, DefaultVerificationLifetime),
		Generate:    func() (string, error) { return utils.GenerateNumericCode(6) },
		OnConsume:   repository.ConsumeDelete,
		Normalize:   strings.TrimSpace,
		MaxAttempts: MaxVerificationAttempts,
	}
}

// PasswordReset is a 64-char lowercase hex token sent by email as a link.
func PasswordReset(lifetime time.Duration) Policy {
	return Policy{
		Kind:      entity.TokenKindPasswordReset,
		Lifetime:  orDefault(lifetime, DefaultResetLifetime),
		Generate:  func() (string, error) { return utils.GenerateHexToken(32) },
		OnConsume: repository.ConsumeDelete,
		Normalize: strings.TrimSpace,
	}
}

// LinkCode is a 6-char uppercase hex code typed in-game by the player.
func LinkCode(lifetime time.Duration) Policy {
	return Policy{
		Kind:     entity.TokenKindLinkCode,
		Lifetime: orDefault(lifetime, DefaultLinkCodeLifetime),
		Generate: func() (string, error) {
			code, err := utils.GenerateHexToken(3)
			return strings.ToUpper(code), err
		},
		OnConsume: repository.ConsumeMarkUsed,
		Normalize: func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) },
	}
}

func (p Policy) normalize(value string) string {
	if p.Normalize == nil {
		return value
	}
	return p.Normalize(value)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
