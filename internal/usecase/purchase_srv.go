package usecase

import (
	"context"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"
	"arc-web/internal/dto/request"
	"arc-web/internal/dto/response"
	"arc-web/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseService is the fulfillment queue polled by the game-server plugin.
type PurchaseService interface {
	Pending(ctx context.Context) (*response.PendingPurchasesResponse, error)
	Complete(ctx context.Context, req *request.CompletePurchaseRequest) (*response.CompletePurchaseResponse, error)
}

type purchaseService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPurchaseService(repo *repository.Repository, log *zap.Logger) PurchaseService {
	return &purchaseService{
		repo: repo,
		log:  log.With(zap.String("service", "purchase")),
	}
}

func (s *purchaseService) Pending(ctx context.Context) (*response.PendingPurchasesResponse, error) {
	pending, err := s.repo.Order.FindPendingPurchases(ctx)
	if err != nil {
		s.log.Error("Failed to list pending purchases", zap.Error(err))
		return nil, err
	}

	resp := &response.PendingPurchasesResponse{
		Purchases: make([]response.PendingPurchaseResponse, 0, len(pending)),
	}
	for _, p := range pending {
		resp.Purchases = append(resp.Purchases, response.PendingToResponse(p))
	}

	return resp, nil
}

// Complete marks a paid order delivered. Repeating it on a delivered order is a no-op.
func (s *purchaseService) Complete(ctx context.Context, req *request.CompletePurchaseRequest) (*response.CompletePurchaseResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, fieldError("orderId", "Must be a valid UUID")
	}

	resp := &response.CompletePurchaseResponse{Success: true}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		order, err := tx.Order.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		switch order.Status {
		case entity.OrderStatusUnpaid:
			return ErrOrderNotPaid
		case entity.OrderStatusDelivered:
			resp.AlreadyDelivered = true
			return nil
		}

		return tx.Order.UpdateStatus(ctx, orderID, entity.OrderStatusDelivered, time.Now())
	})

	switch {
	case err != nil:
		metrics.PurchasesCompletedTotal.WithLabelValues("rejected").Inc()
		s.log.Warn("Purchase completion rejected", zap.Error(err), zap.String("order_id", orderID.String()))
		return nil, err
	case resp.AlreadyDelivered:
		metrics.PurchasesCompletedTotal.WithLabelValues("already_delivered").Inc()
	default:
		metrics.PurchasesCompletedTotal.WithLabelValues("delivered").Inc()
		s.log.Info("Purchase delivered", zap.String("order_id", orderID.String()))
	}

	return resp, nil
}
