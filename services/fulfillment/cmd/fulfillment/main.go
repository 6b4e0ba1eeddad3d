package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	pkgdb "github.com/Skotchmaster/bakery_shop/pkg/db"
	"github.com/Skotchmaster/bakery_shop/pkg/events"
	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/pkg/metrics"
	loggingmw "github.com/Skotchmaster/bakery_shop/pkg/middleware/logging"

	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/cache"
	fulfillmentcfg "github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/config"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/httpserver"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/repo"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/service"
)

func main() {
	if err := godotenv.Load("services/fulfillment/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := fulfillmentcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}

	r := repo.New(db, cfg.TxTimeout)
	if err := r.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

	var deliveryCache service.DeliveryCache
	var redisCache *cache.RedisCache
	if cfg.RedisAddr != "" {
		redisCache, err = cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			logger.Warn("delivery_cache_disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			deliveryCache = redisCache
		}
	}
	cancel()

	publisher, err := events.New(cfg.EventsBroker, cfg.KafkaBrokers, cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Fatalf("events: %v", err)
	}

	policy, err := domain.ParseTransitionPolicy(cfg.TransitionPolicy)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	runner := service.Runner{Repo: r, MaxAttempts: cfg.TxMaxRetries}
	inventorySvc := &service.InventoryService{Repo: r, Runner: runner, Events: publisher}
	orderSvc := &service.OrderService{
		Repo:        r,
		Inventory:   inventorySvc,
		Runner:      runner,
		Events:      publisher,
		PricingMode: cfg.PricingMode,
	}
	deliverySvc := &service.DeliveryService{
		Repo:   r,
		Runner: runner,
		Events: publisher,
		Cache:  deliveryCache,
		Policy: policy,
	}
	riderSvc := &service.RiderService{Repo: r, Runner: runner, Events: publisher, Cache: deliveryCache}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		OrderHandler:     &httpserver.OrderHTTP{Svc: orderSvc},
		InventoryHandler: &httpserver.InventoryHTTP{Svc: inventorySvc},
		DeliveryHandler:  &httpserver.DeliveryHTTP{Svc: deliverySvc},
		RiderHandler:     &httpserver.RiderHTTP{Svc: riderSvc},
		JWTSecret:        cfg.JWTAccessSecret,
		DB:               r,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("fulfillment listening", "addr", srv.Addr, "events", cfg.EventsBroker, "transitions", policy, "pricing", cfg.PricingMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if err := publisher.Close(); err != nil {
		logger.Warn("events_close_failed", "error", err)
	}
	if redisCache != nil {
		_ = redisCache.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("fulfillment stopped")
}
