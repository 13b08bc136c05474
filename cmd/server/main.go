// Command server runs the courier tracking aggregation service: the REST
// shell, the scheduled batch refresh, and the notification worker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/parceltrax/tracking-system/internal/api"
	"github.com/parceltrax/tracking-system/internal/core/ports"
	"github.com/parceltrax/tracking-system/internal/core/service"
	mongoinfra "github.com/parceltrax/tracking-system/internal/infrastructure/db/mongo"
	redisinfra "github.com/parceltrax/tracking-system/internal/infrastructure/db/redis"
	"github.com/parceltrax/tracking-system/internal/infrastructure/notify"
	"github.com/parceltrax/tracking-system/internal/infrastructure/scheduler"
	"github.com/parceltrax/tracking-system/internal/pkg/config"
	"github.com/parceltrax/tracking-system/internal/tracker"
	"github.com/parceltrax/tracking-system/internal/tracker/courier"
	"github.com/parceltrax/tracking-system/pkg/logger"
)

// @title           Parceltrax Tracking API
// @version         1.0
// @description     Multi-courier shipment tracking aggregation service.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	packageRepo := mongoinfra.NewPackageRepository(db)
	eventRepo := mongoinfra.NewEventRepository(db)
	if err := packageRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("package index creation failed")
	}
	if err := eventRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("event index creation failed")
	}

	rdb, err := redisinfra.Connect(ctx, redisinfra.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Courier sources ---
	lightweight := []ports.Adapter{
		courier.NewBluedart(cfg.Tracker.AdapterTimeout, log),
		courier.NewDTDC(cfg.Tracker.AdapterTimeout, log),
		courier.NewEcomExpress(cfg.Tracker.AdapterTimeout, log),
	}
	heavyweight := []ports.Adapter{
		courier.NewDTDCBrowser(cfg.Tracker.ChromeBin, cfg.Tracker.AdapterTimeout, log),
	}
	cache := redisinfra.NewResultCache(rdb, cfg.Tracker.ResultCacheTTL, log)
	aggregator := tracker.NewAggregator(lightweight, heavyweight, cache, log)

	// --- Notifications ---
	telegram, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram setup failed")
	}
	var sink ports.Notifier
	if telegram != nil {
		sink = telegram
	}
	notifier := notify.NewAsyncNotifier(sink, log)
	notifier.Start(ctx)

	// --- Core services ---
	refreshService := service.NewRefreshService(packageRepo, eventRepo, aggregator, notifier, log)
	packageService := service.NewPackageService(packageRepo, eventRepo, refreshService, log)

	// --- Scheduled batch refresh ---
	sched, err := scheduler.New(cfg.Tracker.PollInterval, refreshService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler setup failed")
	}
	sched.Start()
	defer sched.Stop()

	// --- HTTP ---
	e := api.NewRouter(db, rdb, packageService, refreshService, cfg.JWTSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
