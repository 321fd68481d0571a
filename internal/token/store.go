package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"
	"arc-web/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidOrExpired covers unknown, expired and already consumed tokens alike.
var ErrInvalidOrExpired = errors.New("invalid or expired token")

const maxIssueAttempts = 3

// Effect runs inside the consuming transaction. Returning an error undoes the consumption.
type Effect func(tx *repository.Repository, token *entity.Token) error

type Store struct {
	repo   *repository.Repository
	policy Policy
	now    func() time.Time
	log    *zap.Logger
}

type Option func(*Store)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(repo *repository.Repository, policy Policy, log *zap.Logger, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		policy: policy,
		now:    time.Now,
		log:    log.With(zap.String("token_store", string(policy.Kind))),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Kind() entity.TokenKind {
	return s.policy.Kind
}

func (s *Store) Lifetime() time.Duration {
	return s.policy.Lifetime
}

// Issue supersedes the owner's unconsumed tokens of this kind and stores a fresh one.
func (s *Store) Issue(ctx context.Context, ownerID uuid.UUID) (*entity.Token, error) {
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		value, err := s.policy.Generate()
		if err != nil {
			return nil, err
		}

		now := s.now()
		token := &entity.Token{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			UserID:    ownerID,
			Kind:      s.policy.Kind,
			Value:     value,
			ExpiresAt: now.Add(s.policy.Lifetime),
		}

		// A failed insert aborts the surrounding transaction, so each attempt gets its own.
		err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
			if err := tx.Token.LockOwner(ctx, s.policy.Kind, ownerID); err != nil {
				return err
			}
			if err := tx.Token.DeleteUnusedByOwner(ctx, s.policy.Kind, ownerID); err != nil {
				return err
			}
			return tx.Token.Create(ctx, token)
		})
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.Warn("Token collision, regenerating", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		metrics.TokensIssuedTotal.WithLabelValues(string(s.policy.Kind)).Inc()
		return token, nil
	}

	return nil, fmt.Errorf("issue %s token: %d collisions in a row", s.policy.Kind, maxIssueAttempts)
}

// Consume redeems value whoever owns it.
func (s *Store) Consume(ctx context.Context, value string, effect Effect) (*entity.Token, error) {
	return s.consume(ctx, uuid.Nil, value, effect)
}

// ConsumeFor redeems value only if it belongs to ownerID.
func (s *Store) ConsumeFor(ctx context.Context, ownerID uuid.UUID, value string, effect Effect) (*entity.Token, error) {
	if ownerID == uuid.Nil {
		return nil, ErrInvalidOrExpired
	}
	return s.consume(ctx, ownerID, value, effect)
}

func (s *Store) consume(ctx context.Context, ownerID uuid.UUID, value string, effect Effect) (*entity.Token, error) {
	value = s.policy.normalize(value)
	if value == "" {
		return nil, ErrInvalidOrExpired
	}

	var consumed *entity.Token
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		token, err := tx.Token.Consume(ctx, s.policy.Kind, value, ownerID, s.now(), s.policy.OnConsume)
		if err != nil {
			return err
		}
		if token == nil {
			return ErrInvalidOrExpired
		}

		if effect != nil {
			if err := effect(tx, token); err != nil {
				return err
			}
		}

		consumed = token
		return nil
	})

	result := "ok"
	switch {
	case errors.Is(err, ErrInvalidOrExpired):
		result = "invalid"
	case err != nil:
		result = "error"
	}
	metrics.TokensConsumedTotal.WithLabelValues(string(s.policy.Kind), result).Inc()

	if err != nil {
		if result == "invalid" && ownerID != uuid.Nil {
			s.recordMiss(ctx, ownerID)
		}
		return nil, err
	}

	return consumed, nil
}

// recordMiss counts a wrong guess against the owner's live token and burns it once
// the policy's attempt budget is spent.
func (s *Store) recordMiss(ctx context.Context, ownerID uuid.UUID) {
	if s.policy.MaxAttempts <= 0 {
		return
	}

	var attempts int
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		attempts, err = tx.Token.RecordMiss(ctx, s.policy.Kind, ownerID, s.now())
		if err != nil || attempts < s.policy.MaxAttempts {
			return err
		}
		return tx.Token.DeleteUnusedByOwner(ctx, s.policy.Kind, ownerID)
	})
	if err != nil {
		s.log.Warn("Failed to record wrong guess", zap.Error(err), zap.String("user_id", ownerID.String()))
		return
	}

	if attempts >= s.policy.MaxAttempts {
		s.log.Warn("Too many wrong guesses, token revoked",
			zap.String("user_id", ownerID.String()),
			zap.Int("attempts", attempts),
		)
	}
}

// Peek reports whether value could be consumed right now, without consuming it.
func (s *Store) Peek(ctx context.Context, value string) (*entity.Token, error) {
	value = s.policy.normalize(value)
	if value == "" {
		return nil, ErrInvalidOrExpired
	}

	token, err := s.repo.Token.FindActive(ctx, s.policy.Kind, value, s.now())
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrInvalidOrExpired
	}

	return token, nil
}

// InvalidateAllFor drops every unconsumed token of this kind owned by ownerID.
func (s *Store) InvalidateAllFor(ctx context.Context, ownerID uuid.UUID) error {
	return s.repo.Token.DeleteUnusedByOwner(ctx, s.policy.Kind, ownerID)
}
