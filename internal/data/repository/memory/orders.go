package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"

	"github.com/google/uuid"
)

type orderRepository struct {
	a access
}

func (r *orderRepository) Create(_ context.Context, order *entity.Order) error {
	return r.a.do(func(s *store) error {
		for _, o := range s.orders {
			if o.OrderNumber == order.OrderNumber {
				return repository.ErrDuplicate
			}
		}

		header := *order
		header.Items = nil
		s.orders[order.ID] = header

		items := make([]entity.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			copied := *item
			copied.OrderID = order.ID
			items = append(items, copied)
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
		s.items[order.ID] = items
		return nil
	})
}

func (r *orderRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	var found *entity.Order
	err := r.a.do(func(s *store) error {
		if _, ok := s.orders[id]; ok {
			found = withItems(s, id)
		}
		return nil
	})
	return found, err
}

// LockByID needs no lock here: transactions already hold the backend mutex.
func (r *orderRepository) LockByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	var found *entity.Order
	err := r.a.do(func(s *store) error {
		if o, ok := s.orders[id]; ok {
			found = &o
		}
		return nil
	})
	return found, err
}

func (r *orderRepository) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Order, error) {
	var orders []*entity.Order
	err := r.a.do(func(s *store) error {
		var all []*entity.Order
		for id, o := range s.orders {
			if o.UserID == userID {
				all = append(all, withItems(s, id))
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

		if offset >= len(all) {
			return nil
		}
		end := len(all)
		if limit > 0 && offset+limit < end {
			end = offset + limit
		}
		orders = all[offset:end]
		return nil
	})
	return orders, err
}

func (r *orderRepository) CountByUserID(_ context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.a.do(func(s *store) error {
		for _, o := range s.orders {
			if o.UserID == userID {
				total++
			}
		}
		return nil
	})
	return total, err
}

func (r *orderRepository) UpdateStatus(_ context.Context, id uuid.UUID, status entity.OrderStatus, at time.Time) error {
	return r.a.do(func(s *store) error {
		o, ok := s.orders[id]
		if !ok {
			return fmt.Errorf("order %s not found", id.String())
		}
		o.Status = status
		o.UpdatedAt = at
		switch status {
		case entity.OrderStatusPaid:
			o.PaidAt = &at
		case entity.OrderStatusDelivered:
			o.DeliveredAt = &at
		}
		s.orders[id] = o
		return nil
	})
}

func (r *orderRepository) FindPendingPurchases(_ context.Context) ([]*entity.PendingPurchase, error) {
	purchases := []*entity.PendingPurchase{}
	err := r.a.do(func(s *store) error {
		var paid []entity.Order
		for _, o := range s.orders {
			if o.Status == entity.OrderStatusPaid {
				paid = append(paid, o)
			}
		}
		sort.Slice(paid, func(i, j int) bool {
			pi, pj := paidAt(paid[i]), paidAt(paid[j])
			if !pi.Equal(pj) {
				return pi.Before(pj)
			}
			return paid[i].ID.String() < paid[j].ID.String()
		})

		for _, o := range paid {
			acc := latestAccount(s, o.UserID)
			if acc == nil {
				continue
			}
			for _, item := range s.items[o.ID] {
				purchases = append(purchases, &entity.PendingPurchase{
					OrderID:  o.ID,
					ItemID:   item.ID,
					ItemName: item.ItemName,
					Duration: item.Duration,
					Quantity: item.Quantity,
					AuthUUID: acc.AuthUUID,
				})
			}
		}
		return nil
	})
	return purchases, err
}

func paidAt(o entity.Order) time.Time {
	if o.PaidAt == nil {
		return time.Time{}
	}
	return *o.PaidAt
}

func withItems(s *store, id uuid.UUID) *entity.Order {
	o := s.orders[id]
	o.Items = make([]*entity.OrderItem, 0, len(s.items[id]))
	for _, item := range s.items[id] {
		copied := item
		o.Items = append(o.Items, &copied)
	}
	return &o
}

type cartRepository struct {
	a access
}

func (r *cartRepository) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.CartItem, error) {
	var items []*entity.CartItem
	err := r.a.do(func(s *store) error {
		for _, item := range s.carts[userID] {
			copied := item
			items = append(items, &copied)
		}
		return nil
	})
	return items, err
}

func (r *cartRepository) Replace(_ context.Context, userID uuid.UUID, items []*entity.CartItem) error {
	return r.a.do(func(s *store) error {
		if len(items) == 0 {
			delete(s.carts, userID)
			return nil
		}
		stored := make([]entity.CartItem, 0, len(items))
		for _, item := range items {
			copied := *item
			copied.UserID = userID
			stored = append(stored, copied)
		}
		sort.SliceStable(stored, func(i, j int) bool { return stored[i].Position < stored[j].Position })
		s.carts[userID] = stored
		return nil
	})
}
