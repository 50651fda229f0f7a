package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtline/internal/api"
	"courtline/internal/config"
	"courtline/internal/database"
	"courtline/internal/domain"
	"courtline/internal/events"
	"courtline/internal/export"
	"courtline/internal/logging"
	"courtline/internal/metrics"
	"courtline/internal/repository"
	"courtline/internal/service"
	"courtline/internal/tenant"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	metrics.Register()

	var roleCache domain.RoleCache = repository.NewMemoryRoleCache(cfg.Booking.RoleCacheTTL())
	if cfg.Redis.Enabled {
		client := repository.NewRedisClient(cfg.Redis)
		defer func() { _ = repository.Close(client) }()
		roleCache = initRedisRoleCache(cfg, client, roleCache, &logger)
	}
	resolver := tenant.NewResolver(tenant.NewStoreRoleResolver(db), roleCache, &logger)

	bus := events.NewEventBus()
	bus.Subscribe(events.EventAvailabilityOverride, func(ev *events.Event) error {
		logger.Warn().RawJSON("payload", ev.Payload).Msg("availability override")
		return nil
	})

	availability := service.NewAvailability(db, &logger)
	bookings := service.NewBookings(db, availability, bus, cfg.Booking.MaxBookingDays, cfg.Booking.TxRetries, &logger)
	tracker := service.NewTracker(db, bus, &logger)
	profiles := service.NewProfiles(db, roleCache, &logger)
	exporter := export.NewScheduleExporter(db, cfg.Exports.Path, &logger)

	server := api.NewServer(cfg.API, resolver, bookings, availability, tracker, profiles, exporter, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("api server stopped")
	return nil
}

// initRedisRoleCache wraps the redis cache with the in-memory fallback
// behind the failover wrapper.
func initRedisRoleCache(cfg *config.Config, client *redis.Client, fallback domain.RoleCache, logger *zerolog.Logger) domain.RoleCache {
	primary := repository.NewRedisRoleCache(client, cfg.Booking.RoleCacheTTL())
	if err := repository.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable at startup, failover starts degraded")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return repository.NewFailoverRoleCache(primary, fallback, logger)
}
