package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"arc-web/cmd"
	"arc-web/internal/catalog"
	"arc-web/internal/data/repository"
	"arc-web/internal/data/repository/memory"
	"arc-web/internal/wire"
	"arc-web/pkg/database"
	"arc-web/pkg/jwt"
	"arc-web/pkg/mail"
	"arc-web/pkg/metrics"
	"arc-web/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// `arc-web mailer` runs the queue consumer instead of the API
	if len(os.Args) > 1 && os.Args[1] == "mailer" {
		if err := cmd.Mailer(ctx, config, logger); err != nil {
			logger.Fatal("Mailer stopped", zap.Error(err))
		}
		return
	}

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("db_driver", config.Database.Driver),
		zap.String("mail_transport", config.Email.Transport),
	)

	if config.App.ExposeDevSecrets {
		logger.Warn("EXPOSE_DEV_SECRETS is on: verification codes are returned in responses")
	}
	if config.Plugin.Secret == "" {
		logger.Warn("PLUGIN_SECRET is empty: plugin endpoints reject every request")
	}

	metrics.MustRegister()

	repos, closeDB := openRepository(ctx, config, logger)
	defer closeDB()

	products, err := catalog.Load(config.App.CatalogPath)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err), zap.String("path", config.App.CatalogPath))
	}
	logger.Info("Catalog loaded", zap.Int("products", len(products.List())))

	mailer, closeMailer, err := mail.NewSender(config.Email, logger)
	if err != nil {
		logger.Fatal("Failed to set up mail transport", zap.Error(err))
	}
	defer closeMailer.Close()

	tokens := jwt.NewService(config.JWT, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, products, mailer, tokens, config, logger)

	go cmd.NewJanitor(repos, config.App.JanitorInterval, logger).Run(ctx)

	if err := cmd.APIServer(ctx, app.Router, config, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
}

// openRepository selects the storage backend. The memory backend is for local
// development only and loses everything on restart.
func openRepository(ctx context.Context, config *utils.Config, logger *zap.Logger) (*repository.Repository, func()) {
	if config.Database.Driver == "memory" {
		logger.Warn("Using in-memory storage")
		return memory.NewRepository(logger), func() {}
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}

	return repository.NewRepository(db, logger), db.Close
}
