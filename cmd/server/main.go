package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/availability"
	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/dashboard"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/datasource"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/logger"
	"github.com/iliyamo/table-reservation/internal/metrics"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/router"
	"github.com/iliyamo/table-reservation/internal/store"
)

func main() {
	cfg := config.Load() // Load environment config

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	db, err := database.Open(database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		lg.Fatal("database open failed", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig(), lg)
	if rdb != nil {
		defer rdb.Close()
	}

	shifts, err := metrics.ParseShifts(cfg.Shifts)
	if err != nil {
		lg.Warn("invalid SHIFTS, using defaults", zap.String("shifts", cfg.Shifts), zap.Error(err))
		shifts = metrics.DefaultShifts()
	}

	reservations := repository.NewReservationRepo(db, cfg.DefaultDuration)
	tables := repository.NewTableRepo(db)
	users := repository.NewUserRepo(db)

	src := datasource.New(reservations, tables,
		queue.NewPublisher(cfg.RabbitURL, lg),
		queue.NewSubscriber(cfg.RabbitURL, lg),
		lg)
	src.QueryTimeout = cfg.QueryTimeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := dashboard.NewController(store.New(src, lg), src, shifts, dashboard.Today(time.Now(), cfg.Location()), lg)
	if err := ctrl.Start(ctx); err != nil {
		lg.Warn("live updates unavailable, serving on-demand loads only", zap.Error(err))
		if err := ctrl.SetScopeDate(ctx, ctrl.Date()); err != nil {
			lg.Error("initial dashboard load failed", zap.Error(err))
		}
	}
	defer ctrl.Close()

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, lg)
	ctrl.OnChange(func(dashboard.Snapshot) {
		go func() {
			pctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := cache.Purge(pctx); err != nil {
				lg.Debug("availability cache purge failed", zap.Error(err))
			}
		}()
	})
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, lg)
	resolver := datasource.NewIdentityResolver(cfg.JWTSecret, users, cfg.LocalAdmin, lg)
	if cfg.LocalAdmin {
		lg.Warn("LOCAL_ADMIN is enabled: every request is treated as admin")
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(lg))

	reservationHandler := handler.NewReservationHandler(src, reservations, src, ctrl, lg)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg.JWTSecret, cfg.AccessTTLMin, users, resolver, lg), limit)
	router.RegisterAvailability(e, handler.NewAvailabilityHandler(availability.NewService(db), lg), limit, cache.Middleware())
	router.RegisterAdmin(e, handler.NewDashboardHandler(ctrl, lg), reservationHandler, resolver, lg)
	router.RegisterCustomer(e, reservationHandler, resolver, lg)

	addr := ":" + cfg.Port
	lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown failed", zap.Error(err))
	}
}
