package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/seathold/internal/adapter/audit"
	"github.com/srgjo27/seathold/internal/adapter/cache"
	"github.com/srgjo27/seathold/internal/adapter/handler"
	"github.com/srgjo27/seathold/internal/adapter/lock"
	"github.com/srgjo27/seathold/internal/adapter/repository/memory"
	"github.com/srgjo27/seathold/internal/adapter/repository/postgres"
	"github.com/srgjo27/seathold/internal/config"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
	"github.com/srgjo27/seathold/internal/core/services"
	"github.com/srgjo27/seathold/internal/platform/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "seathold",
		Level:      hclog.LevelFromString(cfg.LogLevel),
		JSONFormat: cfg.LogJSON,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server exiting")
}

func run(cfg config.Config, logger hclog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	if _, err := metrics.NewGlobal(metrics.DefaultConfig("seathold"), inm); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("failed to close resource", "error", err)
			}
		}
	}()

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		logger.Info("connecting to redis", "addr", cfg.RedisAddr)
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, redisClient)
		logger.Info("redis connected")
	}

	store, catalog, err := openStore(ctx, cfg, logger, &closers)
	if err != nil {
		return err
	}

	if cfg.CatalogCacheSize > 0 {
		cached, err := cache.NewCatalog(catalog, cfg.CatalogCacheSize, cfg.CatalogCacheTTL)
		if err != nil {
			return err
		}
		catalog = cached
	}

	var locker ports.Locker = lock.NewTable()
	if cfg.LockDriver == "redis" {
		locker = lock.NewRedisLocker(redisClient, cfg.LockLease, cfg.LockRetry)
	}

	var seatCache ports.SeatCache
	if cfg.SeatCacheEnabled {
		seatCache = cache.NewSeatCache(redisClient)
	}

	sink, err := openAuditSink(cfg, logger, &closers)
	if err != nil {
		return err
	}
	var auditSink ports.AuditSink
	var dispatcher *audit.Dispatcher
	if sink != nil {
		dispatcher = audit.NewDispatcher(sink, cfg.AuditBuffer, logger)
		auditSink = dispatcher
	}

	coord := services.NewCoordinator(store, locker, catalog, auditSink, seatCache, cfg.Holds, logger)

	// background workers stop on workerCtx, after the HTTP server has drained
	workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
	workersDone := make(chan struct{}, 2)
	workers := 1
	go func() {
		coord.Sweeper().Run(workerCtx)
		workersDone <- struct{}{}
	}()
	if dispatcher != nil {
		workers++
		go func() {
			dispatcher.Run(workerCtx)
			workersDone <- struct{}{}
		}()
	}

	h := handler.NewHoldHandler(coord, cfg.ConfirmRole, logger)
	e := handler.NewRouter(h, handler.RouterConfig{
		JWTSecret:   cfg.JWTSecret,
		ConfirmRole: cfg.ConfirmRole,
		Metrics:     inm,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver,
			"lock", cfg.LockDriver, "audit", cfg.AuditDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-serveErr:
		if err != nil {
			cancelWorkers()
			return fmt.Errorf("server startup failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	cancelWorkers()
	for i := 0; i < workers; i++ {
		<-workersDone
	}

	logger.Info("sweeper summary", "expired", coord.Sweeper().Expired(), "failures", coord.Sweeper().Failures())
	if dispatcher != nil {
		logger.Info("audit summary", "delivered", dispatcher.Delivered(),
			"dropped", dispatcher.Dropped(), "failed", dispatcher.Failed())
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger hclog.Logger, closers *[]io.Closer) (ports.Store, ports.Catalog, error) {
	if cfg.StoreDriver == "postgres" {
		db, err := database.NewPostgresDB(ctx, cfg.DB, logger.Named("database"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to db after retries: %w", err)
		}
		*closers = append(*closers, db)

		if err := postgres.Migrate(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		return postgres.NewStore(db), postgres.NewCatalog(db), nil
	}

	seed, err := config.ParseSeed(cfg.SeedScreenings)
	if err != nil {
		return nil, nil, err
	}

	store := memory.NewStore()
	catalog := memory.NewCatalog()
	for id, seats := range seed {
		store.AddScreening(id, seats)
		catalog.Add(domain.Screening{ID: id, SeatIDs: seats, Status: domain.ScreeningScheduled})
	}
	logger.Info("using in-memory store", "screenings", len(seed))

	return store, catalog, nil
}

func openAuditSink(cfg config.Config, logger hclog.Logger, closers *[]io.Closer) (ports.AuditSink, error) {
	switch cfg.AuditDriver {
	case "amqp":
		s, err := audit.NewAMQPSink(cfg.RabbitMQURL, cfg.AuditQueue)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, s)
		return s, nil
	case "kafka":
		s := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		*closers = append(*closers, s)
		return s, nil
	case "none":
		return nil, nil
	default:
		return audit.NewLogSink(logger), nil
	}
}
