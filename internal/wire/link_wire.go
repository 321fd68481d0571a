package wire

import (
	"arc-web/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireLink(r chi.Router, linkHandler *adaptor.LinkHandler, g guards) {
	r.Route("/api/link", func(r chi.Router) {
		// Website side, signed-in user
		r.With(g.session).Post("/generate", linkHandler.GenerateCode)
		r.With(g.session).Get("/status", linkHandler.Status)

		// Game-server plugin side
		r.With(g.plugin).Post("/validate", linkHandler.ValidateCode)
	})
}
