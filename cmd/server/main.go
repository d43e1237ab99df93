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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/guildledger/internal/adapter/http"
	"github.com/iho/guildledger/internal/adapter/http/handler"
	"github.com/iho/guildledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/guildledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/guildledger/internal/adapter/repository/redis"
	"github.com/iho/guildledger/internal/infrastructure/config"
	"github.com/iho/guildledger/internal/infrastructure/eventpublisher"
	"github.com/iho/guildledger/internal/infrastructure/logger"
	"github.com/iho/guildledger/internal/infrastructure/metrics"
	"github.com/iho/guildledger/internal/infrastructure/postgres"
	"github.com/iho/guildledger/internal/infrastructure/redis"
	"github.com/iho/guildledger/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterIdleTimeout     = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(
		postgresRepo.WithMaxRetries(cfg.TxMaxRetries),
		postgresRepo.WithRetryLogger(log),
		postgresRepo.WithRetryMetrics(m),
	)
	balanceRepo := postgresRepo.NewBalanceRepository()
	memberRepo := postgresRepo.NewMemberRepository()
	outboxRepo := newOutboxRepository(cfg.OutboxEnabled, pool)
	idGen := postgresRepo.NewULIDGenerator()
	audit := usecase.NewAuditRecorder(postgresRepo.NewAuditRepository(pool), idGen, m, log)

	// Initialize use cases
	distributionUC := usecase.NewDistributionUseCase(usecase.DistributionDeps{
		TxManager:   txManager,
		Retrier:     retrier,
		BalanceRepo: balanceRepo,
		MemberRepo:  memberRepo,
		BatchRepo:   postgresRepo.NewDistributionRepository(pool),
		OutboxRepo:  outboxRepo,
		Cache:       redisRepo.NewBatchCache(redisClient, cfg.BatchCacheTTL, m),
		Audit:       audit,
		IDGen:       idGen,
		RefGen:      postgresRepo.NewReferenceGenerator(cfg.ReferencePrefix),
		Metrics:     m,
		Logger:      log,
	})
	lootUC := usecase.NewLootUseCase(usecase.LootDeps{
		TxManager:  txManager,
		Retrier:    retrier,
		LootRepo:   postgresRepo.NewLootRepository(pool),
		MemberRepo: memberRepo,
		EntryRepo:  postgresRepo.NewLedgerEntryRepository(pool),
		OutboxRepo: outboxRepo,
		Audit:      audit,
		IDGen:      idGen,
		Metrics:    m,
		Logger:     log,
	})
	balanceUC := usecase.NewBalanceUseCase(txManager, retrier, balanceRepo)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		DistributionHandler: handler.NewDistributionHandler(distributionUC, log),
		LootHandler:         handler.NewLootHandler(lootUC, log),
		BalanceHandler:      handler.NewBalanceHandler(balanceUC, log),
		HealthHandler: handler.NewHealthHandler(
			handler.PingFunc(pool.Ping),
			handler.PingFunc(func(ctx context.Context) error { return redis.Ping(ctx, redisClient) }),
		),
		IdempotencyStore: redisRepo.NewIdempotencyStore(redisClient),
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.OutboxEnabled {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  eventpublisher.NewLogPublisher(log),
			Metrics:    m,
			Logger:     &log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
		})
		g.Go(func() error {
			if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		cleanupLimiters(gctx, rateLimiter, limiterCleanupInterval, limiterIdleTimeout)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newOutboxRepository returns the postgres outbox, or a no-op one when the
// outbox is disabled.
func newOutboxRepository(enabled bool, pool *pgxpool.Pool) usecase.OutboxRepository {
	if !enabled {
		return postgresRepo.NewNullOutboxRepository()
	}
	return postgresRepo.NewOutboxRepository(pool)
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(idle)
		}
	}
}
