package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mohammadpnp/content-inventory/internal/application/importer"
	"github.com/mohammadpnp/content-inventory/internal/config"
	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
	"github.com/mohammadpnp/content-inventory/internal/infrastructure/repository"
	"github.com/mohammadpnp/content-inventory/internal/infrastructure/webpage"
	httpecho "github.com/mohammadpnp/content-inventory/internal/interfaces/http/echo"
)

func NewHTTPServer(cfg *config.Config, db *gorm.DB, pool *pgxpool.Pool, sessions domain.SessionStore, logger *zap.Logger) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit(cfg.BodyLimit))

	contentRepo := repository.NewContentRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	indexQueue := repository.NewIndexJobBulkRepository(pool, logger)
	indexJobRepo := repository.NewIndexJobRepository(db)
	userRepo := repository.NewUserRepository(db)
	fetcher := webpage.NewTitleFetcher(cfg.FetchTimeout)

	processor := importer.NewProcessor(fetcher, contentRepo, campaignRepo, indexQueue, logger, importer.Config{
		FetchConcurrency: cfg.FetchConcurrency,
	})

	importHandler := httpecho.NewImportHandler(sessions, processor, logger)
	streamHandler := httpecho.NewStreamHandler(sessions, processor, httpecho.DefaultKeepAliveInterval, logger)
	indexingHandler := httpecho.NewIndexingHandler(indexJobRepo, logger)

	httpecho.RegisterRoutes(server, httpecho.Auth(userRepo), importHandler, streamHandler, indexingHandler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	return server
}
