package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kalind02/food-ordering-api/internal/app"
	"github.com/Kalind02/food-ordering-api/internal/auth"
	"github.com/Kalind02/food-ordering-api/internal/cache"
	"github.com/Kalind02/food-ordering-api/internal/clock"
	"github.com/Kalind02/food-ordering-api/internal/config"
	"github.com/Kalind02/food-ordering-api/internal/events"
	"github.com/Kalind02/food-ordering-api/internal/storage/postgres"
	transporthttp "github.com/Kalind02/food-ordering-api/internal/transport/http"
	"github.com/Kalind02/food-ordering-api/migrations"
	"github.com/Kalind02/food-ordering-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// The .env file must be loaded before the logger reads APP_ENV and
	// LOG_LEVEL, or .env-supplied log settings never take effect.
	config.LoadEnvFile(nil)

	log := logger.New(logger.Options{
		Service: "food-ordering-api",
		Env:     os.Getenv("APP_ENV"),
		Level:   os.Getenv("LOG_LEVEL"),
	})

	cfg := config.Load(log)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Error("connect to db failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Error("db ping failed", "error", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Error("apply migrations failed", "error", err)
		os.Exit(1)
	}

	orderOpts := []app.OrderServiceOption{app.WithLogger(log)}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		orderOpts = append(orderOpts, app.WithPublisher(publisher))
		log.Info("order events enabled", "topic", cfg.KafkaTopic)
	}
	orderSvc := app.NewOrderService(postgres.NewOrderRepository(pool), clock.NewSystem(), orderOpts...)

	catalogOpts := []app.CatalogServiceOption{app.WithCatalogLogger(log)}
	if cfg.RedisAddr != "" {
		catalogOpts = append(catalogOpts, app.WithCache(cache.NewRedisCache(cfg.RedisAddr, "food-ordering-api"), 0))
		log.Info("catalog cache enabled", "addr", cfg.RedisAddr)
	}
	catalogSvc := app.NewCatalogService(postgres.NewCatalogRepository(pool), catalogOpts...)

	contactSvc := app.NewContactService(postgres.NewContactRepository(pool), clock.NewSystem())

	handler := transporthttp.NewRouter(transporthttp.RouterConfig{
		Orders:       orderSvc,
		Catalog:      catalogSvc,
		Contact:      contactSvc,
		Verifier:     auth.NewVerifier(cfg.JWTSecret),
		CORSOrigins:  cfg.CORSOrigins,
		CORSSuffixes: cfg.CORSSuffixes,
		Logger:       log,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Info("api listening", "port", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server shutdown error", "error", err)
	}
	log.Info("server stopped")
}
