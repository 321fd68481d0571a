package repository

import (
	"context"
	"fmt"

	"arc-web/internal/data/entity"
	"arc-web/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.CartItem, error)
	// Replace swaps the stored cart of the user for items. An empty slice clears it.
	Replace(ctx context.Context, userID uuid.UUID, items []*entity.CartItem) error
}

type cartRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewCartRepository(db database.Querier, log *zap.Logger) CartRepository {
	return &cartRepository{
		db:  db,
		log: log.With(zap.String("repository", "cart")),
	}
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.CartItem, error) {
	query := `
		SELECT user_id, product_id, position, quantity, duration, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to load cart",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("load cart of user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var items []*entity.CartItem
	for rows.Next() {
		var (
			item     entity.CartItem
			duration *string
		)
		err := rows.Scan(
			&item.UserID,
			&item.ProductID,
			&item.Position,
			&item.Quantity,
			&duration,
			&item.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan cart item", zap.Error(err))
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Duration = durationValue(duration)
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *cartRepository) Replace(ctx context.Context, userID uuid.UUID, items []*entity.CartItem) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.log.Error("Failed to clear cart",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("clear cart of user %s: %w", userID.String(), err)
	}

	query := `
		INSERT INTO cart_items (user_id, product_id, position, quantity, duration, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, item := range items {
		_, err := r.db.Exec(ctx, query,
			userID,
			item.ProductID,
			item.Position,
			item.Quantity,
			durationParam(item.Duration),
			item.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to store cart item",
				zap.Error(err),
				zap.String("user_id", userID.String()),
				zap.String("product_id", item.ProductID),
			)
			return fmt.Errorf("store cart item %s: %w", item.ProductID, err)
		}
	}

	return nil
}
