package wire

import (
	"arc-web/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireShop(r chi.Router, productHandler *adaptor.ProductHandler, cartHandler *adaptor.CartHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/products", productHandler.List)

	// ==================== PROTECTED ROUTES ====================
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(g.session)

		r.Get("/", cartHandler.Get)
		r.Delete("/", cartHandler.Clear)
		r.Post("/items", cartHandler.AddItem)
		r.Patch("/items/{productId}", cartHandler.UpdateItem)
		r.Delete("/items/{productId}", cartHandler.RemoveItem)
		r.Post("/checkout", cartHandler.Checkout)
	})
}
