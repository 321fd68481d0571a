package usecase

import (
	"context"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"
	"arc-web/internal/dto/request"
	"arc-web/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderService interface {
	ListByUser(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.OrderResponse], error)
	// MarkPaid records the external payment step. Only unpaid orders move.
	MarkPaid(ctx context.Context, orderID string) (*response.OrderResponse, error)
}

type orderService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewOrderService(repo *repository.Repository, log *zap.Logger) OrderService {
	return &orderService{
		repo: repo,
		log:  log.With(zap.String("service", "order")),
	}
}

func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.OrderResponse], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 {
		req.PerPage = 10
	}
	if req.PerPage > 100 {
		req.PerPage = 100
	}

	orders, err := s.repo.Order.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list orders", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}

	total, err := s.repo.Order.CountByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count orders", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}

	data := make([]response.OrderResponse, 0, len(orders))
	for _, order := range orders {
		data = append(data, response.OrderToResponse(order))
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, int64(total)), nil
}

func (s *orderService) MarkPaid(ctx context.Context, orderID string) (*response.OrderResponse, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, fieldError("id", "Must be a valid UUID")
	}

	var order *entity.Order
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		locked, err := tx.Order.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		if locked.Status != entity.OrderStatusUnpaid {
			return ErrOrderNotUnpaid
		}

		if err := tx.Order.UpdateStatus(ctx, id, entity.OrderStatusPaid, time.Now()); err != nil {
			return err
		}

		order, err = tx.Order.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Order marked paid", zap.String("order_id", id.String()))

	resp := response.OrderToResponse(order)
	return &resp, nil
}
