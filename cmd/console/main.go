package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"elretiro/console/internal/backend"
	"elretiro/console/internal/cache"
	"elretiro/console/internal/config"
	"elretiro/console/internal/database"
	"elretiro/console/internal/events"
	"elretiro/console/internal/handlers"
	"elretiro/console/internal/jobs"
	"elretiro/console/internal/log"
	"elretiro/console/internal/repository"
	"elretiro/console/internal/server"
	"elretiro/console/internal/service"
	"elretiro/console/internal/session"
	"elretiro/console/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()
	checks := map[string]handlers.HealthCheck{}

	backendClient, err := backend.NewClient(cfg.Backend, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init backend client")
	}
	checks["backend"] = backendClient.Ping

	redisClient, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	var (
		store     session.Store
		publisher events.Publisher
	)
	if redisClient != nil {
		store = session.NewRedisStore(redisClient)
		publisher = events.NewStreamPublisher(redisClient, cfg.Redis.Stream)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		logger.Warn().Msg("redis disabled, sessions are kept in memory")
		store = session.NewMemoryStore()
		publisher = events.NopPublisher{}
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	var stats service.StatsSource
	if dbPool != nil {
		statsRepo := repository.NewStatsRepository(dbPool)
		stats = statsRepo
		checks["database"] = statsRepo.Ping
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if objectStore != nil {
		if err := objectStore.CheckBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("asset bucket check failed")
		}
	}

	sessions := session.NewManager(store, cfg.Session)
	authService := service.NewAuthService(backendClient, sessions, publisher, cfg, logger)
	userService := service.NewUserService(backendClient, sessions, publisher, logger)
	dashboardService := service.NewDashboardService(stats, redisClient, cfg.Dashboard.CacheTTL, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Dependencies{
		Auth:      authService,
		Users:     userService,
		Dashboard: dashboardService,
		Sessions:  sessions,
		Assets:    storage.NewAssetResolver(objectStore, cfg.Assets, logger),
		Checks:    checks,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(dashboardService, cfg.Dashboard.RefreshSpec, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
