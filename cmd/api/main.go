package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pitchside/prediction-api/internal/config"
	"github.com/pitchside/prediction-api/internal/handlers"
	"github.com/pitchside/prediction-api/internal/logic"
	"github.com/pitchside/prediction-api/internal/modelconfig"
	"github.com/pitchside/prediction-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("Failed to create Postgres pool", "error", err)
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		sugar.Fatalw("Failed to ping Postgres", "error", err)
	}
	sugar.Infow("Connected to Postgres")

	// ClickHouse
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		sugar.Fatalw("Failed to parse ClickHouse URL", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("Failed to connect to ClickHouse", "error", err)
	}
	defer ch.Close()
	if err := ch.Ping(ctx); err != nil {
		sugar.Fatalw("Failed to ping ClickHouse", "error", err)
	}
	sugar.Infow("Connected to ClickHouse")

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("Failed to parse Redis URL", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		sugar.Fatalw("Failed to ping Redis", "error", err)
	}
	sugar.Infow("Connected to Redis")

	// Model configuration store
	configs, err := modelconfig.New(cfg.ModelConfigPath, logger)
	if err != nil {
		sugar.Fatalw("Failed to open model configuration store", "error", err)
	}

	// Services
	teamStats := logic.NewTeamStatsService(ch, pg)
	prediction := logic.NewPredictionService(logic.PredictionConfig{
		Stats:        teamStats,
		Configs:      configs,
		Cache:        rdb,
		CacheTTL:     cfg.ForecastCacheTTL,
		MaxGoals:     cfg.MaxGoals,
		LastN:        cfg.StatsLastN,
		BaselineDays: cfg.BaselineDays,
		Logger:       logger,
	})

	// Ingest worker pool
	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		ClickHouse:    ch,
		Invalidator:   prediction,
		Logger:        logger,
	})
	// The pool gets its own lifetime: Stop drains the queue after the HTTP
	// server has finished, so the signal context must not kill the workers.
	pool.Start(context.Background())

	// HTTP server
	h := handlers.New(handlers.Config{
		WorkerPool: pool,
		Postgres:   pg,
		ClickHouse: ch,
		Redis:      rdb,
		Logger:     logger,
		TeamStats:  teamStats,
		Prediction: prediction,
		Configs:    configs,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(cfg.AllowedOrigins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Server shutdown error", "error", err)
	}

	// Drain the ingest queue before closing connections
	pool.Stop()
	sugar.Infow("Shutdown complete")
}
