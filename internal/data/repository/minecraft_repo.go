package repository

import (
	"context"
	"fmt"

	"arc-web/internal/data/entity"
	"arc-web/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type MinecraftAccountRepository interface {
	// Upsert creates the binding or reassigns an existing auth UUID to a new owner.
	Upsert(ctx context.Context, account *entity.MinecraftAccount) error
	FindByAuthUUID(ctx context.Context, authUUID string) (*entity.MinecraftAccount, error)
	// FindLatestByUserID returns the most recently linked account of the user.
	FindLatestByUserID(ctx context.Context, userID uuid.UUID) (*entity.MinecraftAccount, error)
}

type minecraftAccountRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewMinecraftAccountRepository(db database.Querier, log *zap.Logger) MinecraftAccountRepository {
	return &minecraftAccountRepository{
		db:  db,
		log: log.With(zap.String("repository", "minecraft_account")),
	}
}

func (r *minecraftAccountRepository) Upsert(ctx context.Context, account *entity.MinecraftAccount) error {
	query := `
		INSERT INTO minecraft_accounts (auth_uuid, username, user_id, linked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth_uuid) DO UPDATE
		SET username = EXCLUDED.username,
		    user_id = EXCLUDED.user_id,
		    linked_at = EXCLUDED.linked_at
	`

	_, err := r.db.Exec(ctx, query,
		account.AuthUUID,
		account.Username,
		account.UserID,
		account.LinkedAt,
	)
	if err != nil {
		r.log.Error("Failed to upsert minecraft account",
			zap.Error(err),
			zap.String("auth_uuid", account.AuthUUID),
			zap.String("user_id", account.UserID.String()),
		)
		return fmt.Errorf("upsert minecraft account %s: %w", account.AuthUUID, err)
	}

	return nil
}

func (r *minecraftAccountRepository) FindByAuthUUID(ctx context.Context, authUUID string) (*entity.MinecraftAccount, error) {
	query := `
		SELECT auth_uuid, username, user_id, linked_at
		FROM minecraft_accounts
		WHERE auth_uuid = $1
	`

	var account entity.MinecraftAccount
	err := r.db.QueryRow(ctx, query, authUUID).Scan(
		&account.AuthUUID,
		&account.Username,
		&account.UserID,
		&account.LinkedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find minecraft account",
			zap.Error(err),
			zap.String("auth_uuid", authUUID),
		)
		return nil, fmt.Errorf("find minecraft account %s: %w", authUUID, err)
	}

	return &account, nil
}

func (r *minecraftAccountRepository) FindLatestByUserID(ctx context.Context, userID uuid.UUID) (*entity.MinecraftAccount, error) {
	query := `
		SELECT auth_uuid, username, user_id, linked_at
		FROM minecraft_accounts
		WHERE user_id = $1
		ORDER BY linked_at DESC
		LIMIT 1
	`

	var account entity.MinecraftAccount
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&account.AuthUUID,
		&account.Username,
		&account.UserID,
		&account.LinkedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find minecraft account by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find minecraft account of user %s: %w", userID.String(), err)
	}

	return &account, nil
}
