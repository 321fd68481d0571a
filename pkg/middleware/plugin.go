package middleware

import (
	"crypto/subtle"
	"net/http"

	"arc-web/pkg/utils"

	"go.uber.org/zap"
)

const PluginSecretHeader = "x-plugin-secret"

// PluginSecret guards the game-server plugin endpoints. It runs before the body is
// read, and an unset secret locks the endpoints entirely.
func PluginSecret(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	expected := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := []byte(r.Header.Get(PluginSecretHeader))

			if len(expected) == 0 || subtle.ConstantTimeCompare(given, expected) != 1 {
				logger.Warn("Rejected plugin request",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr),
				)
				utils.ResponseForbidden(w, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
