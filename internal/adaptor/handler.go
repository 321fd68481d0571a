package adaptor

import (
	"arc-web/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Link     *LinkHandler
	Purchase *PurchaseHandler
	Product  *ProductHandler
	Cart     *CartHandler
	Order    *OrderHandler
	User     *UserHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, service.Verification, log),
		Link:     NewLinkHandler(service.Link, log),
		Purchase: NewPurchaseHandler(service.Purchase, log),
		Product:  NewProductHandler(service.Product),
		Cart:     NewCartHandler(service.Cart, log),
		Order:    NewOrderHandler(service.Order, log),
		User:     NewUserHandler(service.User, log),
	}
}
