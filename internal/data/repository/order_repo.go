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

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// LockByID loads the order header under a row lock. Items are not loaded.
	LockByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Order, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)
	// UpdateStatus moves the order to status and stamps paid_at or delivered_at accordingly.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus, at time.Time) error
	FindPendingPurchases(ctx context.Context) ([]*entity.PendingPurchase, error)
}

type orderRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewOrderRepository(db database.Querier, log *zap.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log.With(zap.String("repository", "order")),
	}
}

const orderColumns = `id, order_number, user_id, status, total_price,
		       paid_at, delivered_at, created_at, updated_at`

// Create inserts the order and its items. Callers run it inside WithTx.
func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (id, order_number, user_id, status, total_price,
		                    paid_at, delivered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		string(order.Status),
		order.TotalPrice,
		order.PaidAt,
		order.DeliveredAt,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		r.log.Error("Failed to create order",
			zap.Error(err),
			zap.String("user_id", order.UserID.String()),
		)
		return fmt.Errorf("create order for user %s: %w", order.UserID.String(), err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, position, product_id, item_name,
		                         duration, quantity, unit_price, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, item := range order.Items {
		_, err := r.db.Exec(ctx, itemQuery,
			item.ID,
			order.ID,
			item.Position,
			item.ProductID,
			item.ItemName,
			durationParam(item.Duration),
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
			item.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create order item",
				zap.Error(err),
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", item.ProductID),
			)
			return fmt.Errorf("create item %s of order %s: %w", item.ProductID, order.ID.String(), err)
		}
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find order by ID",
			zap.Error(err),
			zap.String("order_id", id.String()),
		)
		return nil, fmt.Errorf("find order %s: %w", id.String(), err)
	}

	if err := r.loadItems(ctx, []*entity.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock order",
			zap.Error(err),
			zap.String("order_id", id.String()),
		)
		return nil, fmt.Errorf("lock order %s: %w", id.String(), err)
	}

	return order, nil
}

func (r *orderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to list orders",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("list orders of user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.log.Error("Failed to scan order", zap.Error(err))
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM orders WHERE user_id = $1`

	var total int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		r.log.Error("Failed to count orders",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count orders of user %s: %w", userID.String(), err)
	}

	return total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus, at time.Time) error {
	query := `
		UPDATE orders
		SET status = $2,
		    paid_at = CASE WHEN $2 = 'paid' THEN $3 ELSE paid_at END,
		    delivered_at = CASE WHEN $2 = 'delivered' THEN $3 ELSE delivered_at END,
		    updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, string(status), at)
	if err != nil {
		r.log.Error("Failed to update order status",
			zap.Error(err),
			zap.String("order_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update order %s to %s: %w", id.String(), status, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", id.String())
	}

	return nil
}

// FindPendingPurchases flattens paid orders into one row per item, joined to the
// buyer's most recently linked game account. Buyers without one are left out.
func (r *orderRepository) FindPendingPurchases(ctx context.Context) ([]*entity.PendingPurchase, error) {
	query := `
		SELECT o.id, oi.id, oi.item_name, oi.duration, oi.quantity, ma.auth_uuid
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN LATERAL (
			SELECT m.auth_uuid
			FROM minecraft_accounts m
			WHERE m.user_id = o.user_id
			ORDER BY m.linked_at DESC
			LIMIT 1
		) ma ON true
		WHERE o.status = 'paid'
		ORDER BY o.paid_at, o.id, oi.position
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to query pending purchases", zap.Error(err))
		return nil, fmt.Errorf("query pending purchases: %w", err)
	}
	defer rows.Close()

	purchases := []*entity.PendingPurchase{}
	for rows.Next() {
		var (
			p        entity.PendingPurchase
			duration *string
		)
		if err := rows.Scan(&p.OrderID, &p.ItemID, &p.ItemName, &duration, &p.Quantity, &p.AuthUUID); err != nil {
			r.log.Error("Failed to scan pending purchase", zap.Error(err))
			return nil, fmt.Errorf("scan pending purchase: %w", err)
		}
		p.Duration = durationValue(duration)
		purchases = append(purchases, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending purchases: %w", err)
	}

	return purchases, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[uuid.UUID]*entity.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID.String())
		byID[o.ID] = o
		o.Items = []*entity.OrderItem{}
	}

	query := `
		SELECT id, order_id, position, product_id, item_name,
		       duration, quantity, unit_price, subtotal, created_at
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to load order items", zap.Error(err))
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item     entity.OrderItem
			duration *string
		)
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Position,
			&item.ProductID,
			&item.ItemName,
			&duration,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan order item", zap.Error(err))
			return fmt.Errorf("scan order item: %w", err)
		}
		item.Duration = durationValue(duration)
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, &item)
		}
	}

	return rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		order  entity.Order
		status string
	)
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&status,
		&order.TotalPrice,
		&order.PaidAt,
		&order.DeliveredAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = entity.OrderStatus(status)
	return &order, nil
}

func durationParam(d *entity.Duration) *string {
	if d == nil {
		return nil
	}
	s := string(*d)
	return &s
}

func durationValue(s *string) *entity.Duration {
	if s == nil {
		return nil
	}
	d := entity.Duration(*s)
	return &d
}
