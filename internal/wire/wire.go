package wire

import (
	"net/http"

	"arc-web/internal/adaptor"
	"arc-web/internal/catalog"
	"arc-web/internal/data/repository"
	"arc-web/internal/usecase"
	"arc-web/pkg/jwt"
	"arc-web/pkg/mail"
	"arc-web/pkg/middleware"
	"arc-web/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the wired HTTP surface
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// guards are the per-route access checks shared by the route groups.
type guards struct {
	session func(http.Handler) http.Handler
	admin   func(http.Handler) http.Handler
	plugin  func(http.Handler) http.Handler
}

// Wiring builds services, handlers and the router
func Wiring(
	repo *repository.Repository,
	products *catalog.Catalog,
	mailer mail.Sender,
	tokens *jwt.Service,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, products, mailer, tokens, config, logger)
	handler := adaptor.NewHandler(service, logger)

	g := guards{
		session: middleware.AuthSession(tokens, repo.Session, logger),
		admin:   middleware.Admin(repo.User, logger),
		plugin:  middleware.PluginSecret(config.Plugin.Secret, logger),
	}

	return &App{
		Router:  setupRouter(handler, g, config, logger),
		Service: service,
	}
}

func setupRouter(handler *adaptor.Handler, g guards, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(config.HTTP.AllowedOrigins))

	wireAuth(r, handler.Auth, g, config)
	wireLink(r, handler.Link, g)
	wirePurchase(r, handler.Purchase, g)
	wireShop(r, handler.Product, handler.Cart, g)
	wireUser(r, handler.User, handler.Order, g)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
