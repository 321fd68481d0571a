package wire

import (
	"net/http"
	"time"

	"arc-web/internal/adaptor"
	"arc-web/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g guards, config *utils.Config) {
	r.Route("/api/auth", func(r chi.Router) {
		// ==================== RATE LIMITED ====================
		// Endpoints that mint credentials, send mail or take secrets
		r.Group(func(r chi.Router) {
			r.Use(authLimiter(config.HTTP.AuthRateLimit))

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/resend-code", authHandler.ResendCode)
			r.Post("/reset-password", authHandler.ResetPassword)
			// Guessable secrets are submitted here
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/update-password", authHandler.UpdatePassword)
		})

		// ==================== PUBLIC ====================
		r.Get("/validate-reset-token", authHandler.ValidateResetToken)

		// ==================== PROTECTED ====================
		r.With(g.session).Post("/logout", authHandler.Logout)
	})
}

// authLimiter allows perMinute requests per client IP; zero disables limiting.
func authLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.ResponseJSON(w, http.StatusTooManyRequests, false, "Too many requests, please slow down", nil, nil)
		}),
	)
}
