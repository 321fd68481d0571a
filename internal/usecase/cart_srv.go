package usecase

import (
	"context"
	"errors"
	"time"

	"arc-web/internal/cart"
	"arc-web/internal/catalog"
	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository"
	"arc-web/internal/dto/request"
	"arc-web/internal/dto/response"
	"arc-web/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*response.CartResponse, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *request.AddCartItemRequest) (*response.CartResponse, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, productID string, req *request.UpdateCartItemRequest) (*response.CartResponse, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*response.CartResponse, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	// Checkout turns the cart into an unpaid order and empties it.
	Checkout(ctx context.Context, userID uuid.UUID) (*response.OrderResponse, error)
}

type cartService struct {
	repo    *repository.Repository
	catalog *catalog.Catalog
	log     *zap.Logger
}

func NewCartService(repo *repository.Repository, products *catalog.Catalog, log *zap.Logger) CartService {
	return &cartService{
		repo:    repo,
		catalog: products,
		log:     log.With(zap.String("service", "cart")),
	}
}

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*response.CartResponse, error) {
	c, err := s.load(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return cartToResponse(c), nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *request.AddCartItemRequest) (*response.CartResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	product, ok := s.catalog.Find(req.ProductID)
	if !ok {
		return nil, ErrProductNotFound
	}

	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		return c.AddItem(product, req.Quantity)
	})
}

func (s *cartService) UpdateItem(ctx context.Context, userID uuid.UUID, productID string, req *request.UpdateCartItemRequest) (*response.CartResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Quantity == nil && req.Duration == nil {
		return nil, fieldError("quantity", "Provide a quantity or a duration")
	}

	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		if req.Duration != nil {
			if err := c.UpdateDuration(productID, entity.Duration(*req.Duration)); err != nil {
				return err
			}
		}
		if req.Quantity != nil {
			return c.UpdateQuantity(productID, *req.Quantity)
		}
		return nil
	})
}

func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*response.CartResponse, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := s.mutate(ctx, userID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	return err
}

func (s *cartService) Checkout(ctx context.Context, userID uuid.UUID) (*response.OrderResponse, error) {
	var order *entity.Order

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		c, err := s.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		if c.Len() == 0 {
			return ErrCartEmpty
		}

		now := time.Now()
		number, err := utils.GenerateOrderNumber(now)
		if err != nil {
			return err
		}

		order = &entity.Order{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			OrderNumber: number,
			UserID:      userID,
			Status:      entity.OrderStatusUnpaid,
			TotalPrice:  c.Total(),
		}

		for i, item := range c.Items() {
			order.Items = append(order.Items, &entity.OrderItem{
				BaseSimple: entity.BaseSimple{
					ID:        uuid.New(),
					CreatedAt: now,
				},
				OrderID:   order.ID,
				Position:  i,
				ProductID: item.Product.ID,
				ItemName:  item.Product.Name,
				Duration:  item.Duration,
				Quantity:  item.Quantity,
				UnitPrice: item.Product.Price,
				Subtotal:  item.Subtotal(),
			})
		}

		if err := tx.Order.Create(ctx, order); err != nil {
			return err
		}
		return tx.Cart.Replace(ctx, userID, nil)
	})
	if err != nil {
		if !errors.Is(err, ErrCartEmpty) {
			s.log.Error("Checkout failed", zap.Error(err), zap.String("user_id", userID.String()))
		}
		return nil, err
	}

	s.log.Info("Order created",
		zap.String("user_id", userID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.TotalPrice),
	)

	resp := response.OrderToResponse(order)
	return &resp, nil
}

// mutate loads the stored cart, applies fn and writes the result back atomically.
func (s *cartService) mutate(ctx context.Context, userID uuid.UUID, fn func(c *cart.Cart) error) (*response.CartResponse, error) {
	var result *cart.Cart

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		c, err := s.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		if err := s.save(ctx, tx, userID, c); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cartToResponse(result), nil
}

func (s *cartService) load(ctx context.Context, repo *repository.Repository, userID uuid.UUID) (*cart.Cart, error) {
	stored, err := repo.Cart.FindByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load cart", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}

	items := make([]cart.Item, 0, len(stored))
	for _, row := range stored {
		product, ok := s.catalog.Find(row.ProductID)
		if !ok {
			// Product was withdrawn from the catalog since it was added.
			continue
		}
		items = append(items, cart.Item{
			Product:  product,
			Quantity: row.Quantity,
			Duration: row.Duration,
		})
	}

	return cart.New(items...), nil
}

func (s *cartService) save(ctx context.Context, repo *repository.Repository, userID uuid.UUID, c *cart.Cart) error {
	now := time.Now()
	items := c.Items()
	rows := make([]*entity.CartItem, 0, len(items))
	for i, item := range items {
		rows = append(rows, &entity.CartItem{
			UserID:    userID,
			ProductID: item.Product.ID,
			Position:  i,
			Quantity:  item.Quantity,
			Duration:  item.Duration,
			UpdatedAt: now,
		})
	}

	return repo.Cart.Replace(ctx, userID, rows)
}

func cartToResponse(c *cart.Cart) *response.CartResponse {
	items := c.Items()
	resp := &response.CartResponse{
		Items: make([]response.CartItemResponse, 0, len(items)),
		Total: c.Total(),
	}

	for _, item := range items {
		resp.Items = append(resp.Items, response.CartItemResponse{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Type:      item.Product.Type,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			Duration:  item.Duration,
			Subtotal:  item.Subtotal(),
		})
	}

	return resp
}
