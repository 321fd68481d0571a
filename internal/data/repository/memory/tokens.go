package memory

import (
	"context"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"

	"github.com/google/uuid"
)

type tokenRepository struct {
	a access
}

func (r *tokenRepository) Create(_ context.Context, token *entity.Token) error {
	return r.a.do(func(s *store) error {
		if token.UsedAt == nil {
			for _, t := range s.tokens {
				if t.UsedAt != nil || t.Kind != token.Kind || t.Value != token.Value {
					continue
				}
				// Verification codes only collide within one owner.
				if token.Kind != entity.TokenKindEmailVerification || t.UserID == token.UserID {
					return repository.ErrDuplicate
				}
			}
		}
		s.tokens[token.ID] = *token
		return nil
	})
}

func (r *tokenRepository) FindActive(_ context.Context, kind entity.TokenKind, value string, now time.Time) (*entity.Token, error) {
	var found *entity.Token
	err := r.a.do(func(s *store) error {
		for _, t := range s.tokens {
			if t.Kind != kind || t.Value != value || !t.Usable(now) {
				continue
			}
			if found == nil || t.CreatedAt.After(found.CreatedAt) {
				match := t
				found = &match
			}
		}
		return nil
	})
	return found, err
}

func (r *tokenRepository) Consume(_ context.Context, kind entity.TokenKind, value string, ownerID uuid.UUID, now time.Time, mode repository.ConsumeMode) (*entity.Token, error) {
	var consumed *entity.Token
	err := r.a.do(func(s *store) error {
		for id, t := range s.tokens {
			if t.Kind != kind || t.Value != value || !t.Usable(now) {
				continue
			}
			if ownerID != uuid.Nil && t.UserID != ownerID {
				continue
			}

			switch mode {
			case repository.ConsumeMarkUsed:
				used := now
				t.UsedAt = &used
				s.tokens[id] = t
			default:
				delete(s.tokens, id)
			}
			consumed = &t
			return nil
		}
		return nil
	})
	return consumed, err
}

func (r *tokenRepository) DeleteUnusedByOwner(_ context.Context, kind entity.TokenKind, ownerID uuid.UUID) error {
	return r.a.do(func(s *store) error {
		for id, t := range s.tokens {
			if t.Kind == kind && t.UserID == ownerID && t.UsedAt == nil {
				delete(s.tokens, id)
			}
		}
		return nil
	})
}

// LockOwner has nothing to do: transactions already run one at a time.
func (r *tokenRepository) LockOwner(_ context.Context, _ entity.TokenKind, _ uuid.UUID) error {
	return nil
}

func (r *tokenRepository) RecordMiss(_ context.Context, kind entity.TokenKind, ownerID uuid.UUID, now time.Time) (int, error) {
	attempts := 0
	err := r.a.do(func(s *store) error {
		for id, t := range s.tokens {
			if t.Kind != kind || t.UserID != ownerID || !t.Usable(now) {
				continue
			}
			t.FailedAttempts++
			s.tokens[id] = t
			attempts = max(attempts, t.FailedAttempts)
		}
		return nil
	})
	return attempts, err
}

func (r *tokenRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.a.do(func(s *store) error {
		for id, t := range s.tokens {
			if t.UsedAt == nil && t.ExpiresAt.Before(before) {
				delete(s.tokens, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

type minecraftAccountRepository struct {
	a access
}

func (r *minecraftAccountRepository) Upsert(_ context.Context, account *entity.MinecraftAccount) error {
	return r.a.do(func(s *store) error {
		s.accounts[account.AuthUUID] = *account
		return nil
	})
}

func (r *minecraftAccountRepository) FindByAuthUUID(_ context.Context, authUUID string) (*entity.MinecraftAccount, error) {
	var found *entity.MinecraftAccount
	err := r.a.do(func(s *store) error {
		if acc, ok := s.accounts[authUUID]; ok {
			found = &acc
		}
		return nil
	})
	return found, err
}

func (r *minecraftAccountRepository) FindLatestByUserID(_ context.Context, userID uuid.UUID) (*entity.MinecraftAccount, error) {
	var found *entity.MinecraftAccount
	err := r.a.do(func(s *store) error {
		found = latestAccount(s, userID)
		return nil
	})
	return found, err
}

func latestAccount(s *store, userID uuid.UUID) *entity.MinecraftAccount {
	var latest *entity.MinecraftAccount
	for _, acc := range s.accounts {
		if acc.UserID != userID {
			continue
		}
		if latest == nil || acc.LinkedAt.After(latest.LinkedAt) {
			match := acc
			latest = &match
		}
	}
	return latest
}
