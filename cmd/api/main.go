package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mohammadpnp/content-inventory/internal/application/indexer"
	"github.com/mohammadpnp/content-inventory/internal/bootstrap"
	"github.com/mohammadpnp/content-inventory/internal/config"
	domain "github.com/mohammadpnp/content-inventory/internal/domain/content"
	"github.com/mohammadpnp/content-inventory/internal/infrastructure/repository"
	"github.com/mohammadpnp/content-inventory/internal/infrastructure/session"
	"github.com/mohammadpnp/content-inventory/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to create pgx pool", zap.Error(err))
	}
	defer pool.Close()

	backgroundCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	sessions := newSessionStore(backgroundCtx, cfg, logger)

	indexJobRepo := repository.NewIndexJobRepository(db)
	indexMarker := repository.NewContentIndexMarker(db)
	worker := indexer.NewWorker(indexJobRepo, indexMarker, logger, indexer.WorkerConfig{
		Workers:       cfg.IndexWorkers,
		PollInterval:  cfg.IndexPollInterval,
		LeaseDuration: cfg.IndexJobLease,
	})
	worker.Start(backgroundCtx)

	server := bootstrap.NewHTTPServer(cfg, db, pool, sessions, logger)

	go func() {
		if err := server.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("graceful shutdown failed", zap.Error(err))
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) domain.SessionStore {
	if cfg.SessionBackend == "redis" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		logger.Info("using redis session store")
		return session.NewRedisStore(redis.NewClient(opts), cfg.SessionTTL)
	}

	store := session.NewMemoryStore(cfg.SessionTTL)
	store.StartJanitor(ctx, time.Minute)
	logger.Info("using in-memory session store")
	return store
}
