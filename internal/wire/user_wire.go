package wire

import (
	"arc-web/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures the signed-in user's pages and the admin order actions
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, orderHandler *adaptor.OrderHandler, g guards) {
	// ==================== PROTECTED USER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.session)

		r.Get("/api/user/profile", userHandler.GetProfile)
		r.Get("/api/user/orders", orderHandler.ListMine) // ?page=1&per_page=10
	})

	// ==================== ADMIN ROUTES ====================
	// Requires both a valid session AND the admin role
	r.With(g.session, g.admin).Route("/api/admin/orders", func(r chi.Router) {
		r.Post("/{id}/paid", orderHandler.MarkPaid)
	})
}
