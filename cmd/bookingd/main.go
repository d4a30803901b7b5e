package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"

	"github.com/example/workplace-booking/internal/application"
	"github.com/example/workplace-booking/internal/config"
	httptransport "github.com/example/workplace-booking/internal/http"
	"github.com/example/workplace-booking/internal/logging"
	"github.com/example/workplace-booking/internal/persistence"
	"github.com/example/workplace-booking/internal/persistence/memory"
	"github.com/example/workplace-booking/internal/persistence/sqlite"
	"github.com/example/workplace-booking/internal/retention"
)

// storage is the full persistence surface the daemon wires into services.
// Both the SQLite store and the in-memory store satisfy it.
type storage interface {
	persistence.UserRepository
	persistence.FloorMapRepository
	persistence.ResourceRepository
	persistence.BookingRepository
	Migrate(ctx context.Context) error
	Close() error
}

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage
	switch cfg.Store {
	case config.StoreMemory:
		store = memory.NewStore()
	default:
		sqliteStore, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			logger.Error("failed to open storage", "error", err)
			os.Exit(1)
		}
		store = sqliteStore
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	bookingService := application.NewBookingServiceWithLogger(store, store, store, idGenerator, now, logger)
	resourceService := application.NewResourceServiceWithLogger(store, store, idGenerator, now, logger)
	floorMapService := application.NewFloorMapServiceWithLogger(store, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(store, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings:     httptransport.NewBookingHandler(bookingService, logger),
		Availability: httptransport.NewAvailabilityHandler(bookingService, logger),
		Resources:    httptransport.NewResourceHandler(resourceService, logger),
		FloorMaps:    httptransport.NewFloorMapHandler(floorMapService, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequirePrincipal(logger),
		},
	})

	var handler http.Handler = router
	if len(cfg.AllowedOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(cfg.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
			handlers.AllowedHeaders([]string{"Content-Type", httptransport.HeaderPrincipalID, httptransport.HeaderPrincipalAdmin}),
		)(handler)
	}

	sweeper := retention.NewSweeper(store, cfg.RetentionDays, now, logger)
	stopSweeper, err := sweeper.Schedule(cfg.RetentionSchedule)
	if err != nil {
		logger.Error("failed to schedule retention sweep", "error", err)
		os.Exit(1)
	}
	defer stopSweeper()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr, "store", cfg.Store)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
