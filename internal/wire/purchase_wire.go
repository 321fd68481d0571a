package wire

import (
	"arc-web/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wirePurchase exposes the fulfillment queue to the game-server plugin only.
func wirePurchase(r chi.Router, purchaseHandler *adaptor.PurchaseHandler, g guards) {
	r.Route("/api/purchases", func(r chi.Router) {
		r.Use(g.plugin)

		r.Get("/pending", purchaseHandler.Pending)
		r.Post("/complete", purchaseHandler.Complete)
	})
}
