package repository

import (
	"context"
	"fmt"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ConsumeMode decides what happens to a token row when it is redeemed.
type ConsumeMode int

const (
	// ConsumeDelete removes the row.
	ConsumeDelete ConsumeMode = iota
	// ConsumeMarkUsed keeps the row and stamps used_at.
	ConsumeMarkUsed
)

type TokenRepository interface {
	Create(ctx context.Context, token *entity.Token) error
	FindActive(ctx context.Context, kind entity.TokenKind, value string, now time.Time) (*entity.Token, error)

	// Consume atomically redeems an unconsumed, unexpired token. A zero ownerID matches any owner.
	// It returns nil, nil when nothing matched.
	Consume(ctx context.Context, kind entity.TokenKind, value string, ownerID uuid.UUID, now time.Time, mode ConsumeMode) (*entity.Token, error)

	DeleteUnusedByOwner(ctx context.Context, kind entity.TokenKind, ownerID uuid.UUID) error

	// LockOwner serializes issuing for one owner and kind until the transaction ends.
	LockOwner(ctx context.Context, kind entity.TokenKind, ownerID uuid.UUID) error
	// RecordMiss bumps the failed-attempt counter of the owner's live tokens and
	// returns the new count, or 0 when the owner has none.
	RecordMiss(ctx context.Context, kind entity.TokenKind, ownerID uuid.UUID, now time.Time) (int, error)

	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type tokenRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewTokenRepository(db database.Querier, log *zap.Logger) TokenRepository {
	return &tokenRepository{
		db:  db,
		log: log.With(zap.String("repository", "token")),
	}
}

const tokenColumns = `id, user_id, kind, value, expires_at, used_at, created_at, failed_attempts`

func (r *tokenRepository) Create(ctx context.Context, token *entity.Token) error {
	query := `
		INSERT INTO auth_tokens (id, user_id, kind, value, expires_at, used_at, created_at, failed_attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		string(token.Kind),
		token.Value,
		token.ExpiresAt,
		token.UsedAt,
		token.CreatedAt,
		token.FailedAttempts,
	)

	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		r.log.Error("Failed to create token",
			zap.Error(err),
			zap.String("user_id", token.UserID.String()),
			zap.String("kind", string(token.Kind)),
		)
		return fmt.Errorf("create %s token for user %s: %w", token.Kind, token.UserID.String(), err)
	}

	return nil
}

func (r *tokenRepository) FindActive(ctx context.Context, kind entity.TokenKind, value string, now time.Time) (*entity.Token, error) {
	query := `SELECT ` + tokenColumns + `
		FROM auth_tokens
		WHERE kind = $1
		  AND value = $2
		  AND used_at IS NULL
		  AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	token, err := scanToken(r.db.QueryRow(ctx, query, string(kind), value, now))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active token",
			zap.Error(err),
			zap.String("kind", string(kind)),
		)
		return nil, fmt.Errorf("find active %s token: %w", kind, err)
	}

	return token, nil
}

func (r *tokenRepository) Consume(ctx context.Context, kind entity.TokenKind, value string, ownerID uuid.UUID, now time.Time, mode ConsumeMode) (*entity.Token, error) {
	// One conditional statement: concurrent redemptions of the same row serialize on the
	// row lock and only the first one sees it still matching.
	where := `kind = $1 AND value = $2 AND used_at IS NULL AND expires_at > $3`
	args := []any{string(kind), value, now}
	if ownerID != uuid.Nil {
		where += ` AND user_id = $4`
		args = append(args, ownerID)
	}

	var query string
	switch mode {
	case ConsumeMarkUsed:
		query = `UPDATE auth_tokens SET used_at = $3 WHERE ` + where + ` RETURNING ` + tokenColumns
	default:
		query = `DELETE FROM auth_tokens WHERE ` + where + ` RETURNING ` + tokenColumns
	}

	token, err := scanToken(r.db.QueryRow(ctx, query, args...))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to consume token",
			zap.Error(err),
			zap.String("kind", string(kind)),
		)
		return nil, fmt.Errorf("consume %s token: %w", kind, err)
	}

	return token, nil
}

func (r *tokenRepository) DeleteUnusedByOwner(ctx context.Context, kind entity.TokenKind, ownerID uuid.UUID) error {
	query := `DELETE FROM auth_tokens WHERE kind = $1 AND user_id = $2 AND used_at IS NULL`

	_, err := r.db.Exec(ctx, query, string(kind), ownerID)
	if err != nil {
		r.log.Error("Failed to delete unused tokens",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("user_id", ownerID.String()),
		)
		return fmt.Errorf("delete %s tokens of user %s: %w", kind, ownerID.String(), err)
	}

	return nil
}

func (r *tokenRepository) LockOwner(ctx context.Context, kind entity.TokenKind, ownerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(kind)+":"+ownerID.String())
	if err != nil {
		r.log.Error("Failed to lock token owner",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("user_id", ownerID.String()),
		)
		return fmt.Errorf("lock %s tokens of user %s: %w", kind, ownerID.String(), err)
	}

	return nil
}

func (r *tokenRepository) RecordMiss(ctx context.Context, kind entity.TokenKind, ownerID uuid.UUID, now time.Time) (int, error) {
	query := `
		UPDATE auth_tokens
		SET failed_attempts = failed_attempts + 1
		WHERE kind = $1 AND user_id = $2 AND used_at IS NULL AND expires_at > $3
		RETURNING failed_attempts
	`

	rows, err := r.db.Query(ctx, query, string(kind), ownerID, now)
	if err != nil {
		r.log.Error("Failed to record token miss", zap.Error(err), zap.String("user_id", ownerID.String()))
		return 0, fmt.Errorf("record %s miss for user %s: %w", kind, ownerID.String(), err)
	}
	defer rows.Close()

	attempts := 0
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scan %s miss count: %w", kind, err)
		}
		attempts = max(attempts, n)
	}

	return attempts, rows.Err()
}

// DeleteExpired drops unconsumed tokens that expired before the cutoff.
// Used link codes are kept as a record of who linked what.
func (r *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM auth_tokens WHERE used_at IS NULL AND expires_at < $1`

	result, err := r.db.Exec(ctx, query, before)
	if err != nil {
		r.log.Error("Failed to delete expired tokens", zap.Error(err))
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanToken(row pgx.Row) (*entity.Token, error) {
	var (
		token entity.Token
		kind  string
	)
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&kind,
		&token.Value,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
		&token.FailedAttempts,
	)
	if err != nil {
		return nil, err
	}
	token.Kind = entity.TokenKind(kind)
	return &token, nil
}
