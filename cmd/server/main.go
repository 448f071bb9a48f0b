// Command server runs the Xen AI backend API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/xenai/xenai-server/internal/appconfigs"
	"github.com/xenai/xenai-server/internal/auth"
	"github.com/xenai/xenai-server/internal/bootstrap"
	"github.com/xenai/xenai-server/internal/config"
	"github.com/xenai/xenai-server/internal/database"
	"github.com/xenai/xenai-server/internal/generate"
	"github.com/xenai/xenai-server/internal/history"
	"github.com/xenai/xenai-server/internal/images"
	"github.com/xenai/xenai-server/internal/middleware"
	"github.com/xenai/xenai-server/internal/modelconfigs"
	"github.com/xenai/xenai-server/internal/routes"
	"github.com/xenai/xenai-server/internal/server"
	"github.com/xenai/xenai-server/internal/storage"
	"github.com/xenai/xenai-server/pkg/handlers"
	"github.com/xenai/xenai-server/pkg/logging"
	"github.com/xenai/xenai-server/pkg/secrets"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("finalize config: %w", err)
	}

	logger := logging.New(&cfg.Logging)
	logger.Info("starting xenai-server", "environment", cfg.Environment)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db, logger); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	cipher := secrets.New(cfg.Security.EncryptionKey)
	if cfg.Security.StrictKeys {
		cipher, err = secrets.NewStrict(cfg.Security.EncryptionKey)
		if err != nil {
			return fmt.Errorf("encryption key: %w", err)
		}
	}

	modelStore := modelconfigs.NewStore(db)
	modelSys := modelconfigs.NewSystem(modelStore, cipher, logger)

	appSys := appconfigs.NewSystem(appconfigs.NewStore(db), cipher, logger)

	bootstrap.Run(context.Background(), modelStore, appSys, cipher, &cfg.Providers, logger)

	blobs, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	historySys, err := history.New(&cfg.Redis, appSys, logger)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	genClient := generate.NewClient(&cfg.Providers, cfg.CORS.FrontendURL(), logger)
	genSys := generate.NewSystem(modelSys, genClient, historySys, &cfg.Providers, logger)

	imageSys := images.NewSystem(
		images.NewClient(&cfg.Providers, cfg.Storage.MaxImageSizeBytes(), logger),
		images.NewStore(db),
		blobs,
		logger,
	)

	mw := auth.NewMiddleware(cfg.Security.JWTSecret, cfg.Security.InternalToken, logger)

	modelHandler := modelconfigs.NewHandler(modelSys, cfg.Pagination, logger)
	appHandler := appconfigs.NewHandler(appSys, logger)
	genHandler := generate.NewHandler(genSys, cfg.IsProduction(), logger)
	imageHandler := images.NewHandler(imageSys, blobs, logger)
	historyHandler := history.NewHandler(historySys, logger)

	r := routes.New()
	r.RegisterRoute(routes.Route{
		Method:  http.MethodGet,
		Pattern: "/health",
		Handler: healthHandler(cfg),
	})
	r.RegisterRoute(imageHandler.StaticRoute())
	r.RegisterGroup(modelHandler.Routes(mw))
	r.RegisterGroup(appHandler.Routes(mw))
	r.RegisterGroup(genHandler.Routes(mw))
	r.RegisterGroup(imageHandler.Routes(mw))
	r.RegisterGroup(historyHandler.Routes(mw))

	handler := middleware.CORS(&cfg.CORS)(middleware.Logger(logger)(r.Build()))

	return server.Serve(&cfg.Server, handler, logger)
}

func healthHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondData(w, http.StatusOK, map[string]string{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	}
}
